package pkg

import (
	"net"
	"net/http"
	"strings"
)

// ReadUserIP returns the client address, preferring the headers set by the reverse proxy.
func ReadUserIP(r *http.Request) string {
	if ipAddr := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ipAddr != "" {
		return ipAddr
	}

	// X-Forwarded-For: client, proxy1, proxy2
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ipAddr := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ipAddr != "" {
			return ipAddr
		}
	}

	return RemoteIP(r)
}

// RemoteIP returns the address of the peer connection, ignoring forwarding headers.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP reads the forwarding headers only when they are set by a trusted reverse proxy.
func ClientIP(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		return ReadUserIP(r)
	}
	return RemoteIP(r)
}

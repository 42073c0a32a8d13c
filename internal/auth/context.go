package auth

import "context"

type sessionContextKey struct{}

func ContextWithSession(ctx context.Context, session *SessionPayload) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session the request gate attached, or nil.
func SessionFromContext(ctx context.Context) *SessionPayload {
	session, _ := ctx.Value(sessionContextKey{}).(*SessionPayload)
	return session
}

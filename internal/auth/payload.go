package auth

import "time"

const (
	ShortWindow = 12 * time.Hour
	LongWindow  = 30 * 24 * time.Hour
)

// SessionPayload is the claim set carried by the session cookie. Times are Unix seconds.
type SessionPayload struct {
	Identity   string `json:"identity"`
	RememberMe bool   `json:"rememberMe"`
	IssuedAt   int64  `json:"issuedAt"`
	ExpiresAt  int64  `json:"expiresAt"`
}

// Window returns the validity duration for the remember-me choice.
func Window(rememberMe bool) time.Duration {
	if rememberMe {
		return LongWindow
	}
	return ShortWindow
}

// NewSessionPayload is the only constructor of payloads; it guarantees ExpiresAt > IssuedAt.
func NewSessionPayload(identity string, now time.Time, rememberMe bool) SessionPayload {
	issuedAt := now.Unix()
	return SessionPayload{
		Identity:   identity,
		RememberMe: rememberMe,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt + int64(Window(rememberMe)/time.Second),
	}
}

func (p SessionPayload) ExpiresAtTime() time.Time {
	return time.Unix(p.ExpiresAt, 0).UTC()
}

func (p SessionPayload) Expired(now time.Time) bool {
	return now.Unix() > p.ExpiresAt
}

// hasLegalWindow reports whether the payload spans exactly one of the two allowed windows.
func (p SessionPayload) hasLegalWindow() bool {
	if p.ExpiresAt <= p.IssuedAt {
		return false
	}
	span := time.Duration(p.ExpiresAt-p.IssuedAt) * time.Second
	return span == Window(p.RememberMe)
}

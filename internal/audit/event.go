package audit

import (
	"context"
	"time"
)

type Kind string

const (
	KindLoginSuccess Kind = "login_success"
	KindLoginFailure Kind = "login_failure"
	KindLogout       Kind = "logout"
	KindExtract      Kind = "extract"
	KindInsert       Kind = "insert"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Event struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Identity  string    `json:"identity,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps audit events, newest first on List.
type Store interface {
	Add(ctx context.Context, event *Event) error
	List(ctx context.Context, limit int) ([]Event, error)
}

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

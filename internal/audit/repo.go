package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*Repo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS audit_event (
	id SERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	identity TEXT NOT NULL DEFAULT '',
	client_ip TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (r *Repo) Add(ctx context.Context, event *Event) error {
	if event.Kind == "" || event.CreatedAt.IsZero() {
		return errors.New("audit event kind or timestamp empty")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO audit_event (kind, identity, client_ip, detail, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		string(event.Kind), event.Identity, event.ClientIP, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	event.ID = id
	return nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, kind, identity, client_ip, detail, created_at FROM audit_event ORDER BY id DESC LIMIT $1;`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var id int
		var kind, identity, clientIP, detail string
		var createdAt time.Time
		if err := rows.Scan(&id, &kind, &identity, &clientIP, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		events = append(events, Event{
			ID:        id,
			Kind:      Kind(kind),
			Identity:  identity,
			ClientIP:  clientIP,
			Detail:    detail,
			CreatedAt: createdAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_event;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

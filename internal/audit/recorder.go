package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/mongoextract/pkg"

	log "github.com/sirupsen/logrus"
)

// Recorder writes audit events without ever failing the request that caused them.
type Recorder struct {
	store Store
	// Now can be replaced in tests
	Now func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		Now:   time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, req *http.Request, kind Kind, identity, detail string) {
	if r == nil || r.store == nil {
		return
	}

	event := &Event{
		Kind:      kind,
		Identity:  identity,
		ClientIP:  pkg.ReadUserIP(req),
		Detail:    detail,
		CreatedAt: r.Now().UTC(),
	}
	if err := r.store.Add(ctx, event); err != nil {
		log.Errorf("record audit event [%s]: %s", kind, err)
	}
}

func (r *Recorder) List(ctx context.Context, limit int) ([]Event, error) {
	return r.store.List(ctx, limit)
}

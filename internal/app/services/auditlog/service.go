// Package auditlog records state-changing domain actions.
package auditlog

import (
	"context"
	"strings"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Recorder appends action log entries. A nil Recorder is safe to call; it
// drops entries, so services never have to guard their audit writes.
type Recorder struct {
	store storage.AuditLogStore
	log   *logger.Logger
}

// NewRecorder constructs a Recorder over store.
func NewRecorder(store storage.AuditLogStore, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.NewDefault("auditlog")
	}
	return &Recorder{store: store, log: log}
}

// Record appends one entry. Failures are logged, not propagated; auditing
// must not fail the action it describes.
func (r *Recorder) Record(ctx context.Context, action string, actorType auditlog.ActorType, actorID, accommodationID, details string) {
	if r == nil || r.store == nil {
		return
	}
	entry := auditlog.Entry{
		Action:          strings.TrimSpace(action),
		ActorType:       actorType,
		ActorID:         strings.TrimSpace(actorID),
		AccommodationID: strings.TrimSpace(accommodationID),
		Details:         strings.TrimSpace(details),
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := r.store.AppendAuditEntry(ctx, entry); err != nil {
		r.log.WithError(err).WithField("action", entry.Action).Warn("action log append failed")
	}
}

// List returns the most recent entries, newest first, capped at limit.
func (r *Recorder) List(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	return r.store.ListAuditEntries(ctx, limit)
}

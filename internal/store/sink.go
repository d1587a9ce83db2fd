package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/runlog/internal/model"
)

const sinkTimeout = 5 * time.Second

// Sink mirrors telemetry rows into the history database under one session id.
type Sink struct {
	store     *Store
	sessionID string
	now       func() time.Time
}

// NewSink returns a Sink with a fresh random session id.
func NewSink(st *Store) *Sink {
	return &Sink{store: st, sessionID: uuid.NewString(), now: time.Now}
}

// SessionID returns the id rows are stored under.
func (s *Sink) SessionID() string {
	return s.sessionID
}

// Append stores row as a completion stamped with the current time.
func (s *Sink) Append(row model.TelemetryRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	_, err := s.store.InsertCompletion(ctx, model.Completion{
		SessionID:   s.sessionID,
		CompletedAt: s.now(),
		Row:         row,
	})
	if err != nil {
		return fmt.Errorf("store: insert completion: %w", err)
	}
	return nil
}

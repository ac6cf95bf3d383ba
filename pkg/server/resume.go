package server

import (
	"context"
	"time"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/internal/errors"
	"github.com/vango-dev/contactform/pkg/session"
)

// resume restores f from the state saved for id. It reports whether a
// state was found.
func (s *Server) resume(ctx context.Context, id string, f *contact.Form) bool {
	data, err := s.store.Load(ctx, id)
	if err != nil {
		s.logger.Error("session load failed", "session_id", id, "error", err)
		return false
	}
	if data == nil {
		return false
	}

	snap, err := session.Decode[contact.State](data)
	if err != nil {
		s.logger.Warn("discarding session", "session_id", id, "error", errors.New("CF020").Wrap(err))
		_ = s.store.Delete(ctx, id)
		return false
	}
	f.Restore(snap.State)
	return true
}

// saveState stores f's state under id for the resume window.
func (s *Server) saveState(ctx context.Context, id string, createdAt time.Time, f *contact.Form) {
	data, err := session.Encode(id, createdAt, f.State())
	if err != nil {
		s.logger.Error("session encode failed", "session_id", id, "error", err)
		return
	}
	if err := s.store.Save(ctx, id, data, s.expiry()); err != nil {
		s.logger.Error("session save failed", "session_id", id, "error", err)
	}
}

package redis

import (
	"context"

	"github.com/kailas-cloud/frontdesk/internal/db"
)

// Publish sends a payload to a pub/sub channel. Zero subscribers is
// not an error; delivery past the command succeeding is best-effort.
func (s *Store) Publish(ctx context.Context, channel string, payload []byte) error {
	cmd := s.b().Publish().Channel(channel).Message(string(payload)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPublish, Err: err}
	}
	return nil
}

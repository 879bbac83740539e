// Package notify publishes mutation events to the outbound channel the
// gateway fans out to dashboard websockets. Publishing is a best-effort
// side channel: callers emit after the mutation committed and swallow
// failures.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/frontdesk/internal/db"
	"github.com/kailas-cloud/frontdesk/internal/domain/event"
	"github.com/kailas-cloud/frontdesk/internal/metrics"
)

// Publisher sends event envelopes to a pub/sub channel.
type Publisher struct {
	pub     db.Publisher
	channel string
	logger  *zap.Logger
}

// New creates a Publisher for the given channel.
func New(pub db.Publisher, channel string, logger *zap.Logger) *Publisher {
	return &Publisher{pub: pub, channel: channel, logger: logger}
}

// Publish marshals the event envelope and sends it. It never blocks
// past the publish command itself; delivery to consumers is
// at-least-once from their point of view and duplicates are theirs to
// handle.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	data, err := event.Marshal(e)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(e.EventType()), "error").Inc()
		return fmt.Errorf("marshal event %s: %w", e.EventType(), err)
	}

	if err := p.pub.Publish(ctx, p.channel, data); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(e.EventType()), "error").Inc()
		return fmt.Errorf("publish %s: %w", e.EventType(), err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(e.EventType()), "ok").Inc()
	p.logger.Debug("event published",
		zap.String("type", string(e.EventType())),
		zap.String("channel", p.channel),
	)
	return nil
}

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"certflow/metrics"
)

// Message names understood by the certification process definition.
const (
	MsgChargerFil = "charger-fil"
	MsgDebutDwell = "debut-dwell"
	MsgFinDwell   = "fin-dwell"
)

// DefaultTTL bounds how long an undelivered signal may wait for its instance.
const DefaultTTL = 10 * time.Second

// Gateway publishes visitor signals into the engine. The correlation key is
// always the visitor identifier, so the engine can route each signal to the
// instance currently serving that visitor.
type Gateway struct {
	publisher Publisher
	ttl       time.Duration
	logger    zerolog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTTL overrides the default message time-to-live.
func WithTTL(ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithLogger attaches a logger to the gateway.
func WithLogger(logger zerolog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

func NewGateway(publisher Publisher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		publisher: publisher,
		ttl:       DefaultTTL,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Publish sends a named signal correlated to the given visitor. It is
// fire-and-forget: a nil return means the engine acknowledged the send, not
// that the signal was delivered to an instance.
func (g *Gateway) Publish(ctx context.Context, name, correlationKey string, vars Variables) error {
	if name == "" {
		return fmt.Errorf("engine: missing message name")
	}
	if correlationKey == "" {
		return fmt.Errorf("engine: missing correlation key")
	}

	msg := Message{
		Name:           name,
		CorrelationKey: correlationKey,
		TimeToLive:     g.ttl,
		Variables:      vars,
	}
	if err := g.publisher.PublishMessage(ctx, msg); err != nil {
		return fmt.Errorf("engine: publish %s: %w", name, err)
	}

	metrics.MessagesPublished.WithLabelValues(name).Inc()
	g.logger.Debug().
		Str("message", name).
		Str("correlation_key", correlationKey).
		Msg("signal published")
	return nil
}

// PublishChargerFil signals the engine that the visitor loaded a feed batch.
func (g *Gateway) PublishChargerFil(ctx context.Context, visiteurID, afterCursor string, batchSize int) error {
	return g.Publish(ctx, MsgChargerFil, visiteurID, Variables{
		"afterCursor": afterCursor,
		"batchSize":   batchSize,
	})
}

// PublishDebutDwell signals the engine that the visitor focused an item.
func (g *Gateway) PublishDebutDwell(ctx context.Context, visiteurID, itemID string) error {
	return g.Publish(ctx, MsgDebutDwell, visiteurID, Variables{
		"itemId": itemID,
	})
}

// PublishFinDwell signals the engine that the visitor left an item after
// dwelling on it for the given duration.
func (g *Gateway) PublishFinDwell(ctx context.Context, visiteurID, itemID string, dureeDwellMs int64) error {
	return g.Publish(ctx, MsgFinDwell, visiteurID, Variables{
		"itemId":       itemID,
		"dureeDwellMs": dureeDwellMs,
	})
}

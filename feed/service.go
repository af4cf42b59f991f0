package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Source provides the ordered collection of published experts backing the
// feed. Ownership of the profiles is an external collaborator's concern.
type Source interface {
	PublishedExperts(ctx context.Context) ([]Item, error)
}

// StaticSource is a fixed, pre-ordered Source for tests and the scenario
// driver.
type StaticSource []Item

func (s StaticSource) PublishedExperts(context.Context) ([]Item, error) {
	return s, nil
}

// SignalGateway publishes the feed-load signal for a visitor.
type SignalGateway interface {
	PublishChargerFil(ctx context.Context, visiteurID, afterCursor string, batchSize int) error
}

// Service answers visitor scroll requests and signals the engine about them.
type Service struct {
	source  Source
	gateway SignalGateway
	now     func() time.Time
	logger  zerolog.Logger
}

func NewService(source Source, gateway SignalGateway) *Service {
	return &Service{
		source:  source,
		gateway: gateway,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(logger zerolog.Logger) *Service {
	s.logger = logger
	return s
}

// ScrollParams is the visitor-facing scroll request.
type ScrollParams struct {
	VisiteurID  string
	AfterCursor string
	BatchSize   int
}

// ScrollResult is the visitor-facing scroll response.
type ScrollResult struct {
	PileContenu         []Item
	NextCursor          string
	ContexteDerniereMAJ time.Time
}

// Scroll returns the next feed batch and signals the engine that the visitor
// loaded it. The signal is best-effort: a publish failure is logged and never
// fails the scroll, since the feed is a UI-adjacent path.
func (s *Service) Scroll(ctx context.Context, params ScrollParams) (ScrollResult, error) {
	if params.VisiteurID == "" {
		return ScrollResult{}, fmt.Errorf("feed: missing visiteur id")
	}

	items, err := s.source.PublishedExperts(ctx)
	if err != nil {
		return ScrollResult{}, fmt.Errorf("feed: load published experts: %w", err)
	}

	batch := Paginate(items, params.AfterCursor, params.BatchSize)

	if s.gateway != nil {
		size := params.BatchSize
		if size <= 0 {
			size = DefaultBatchSize
		}
		if err := s.gateway.PublishChargerFil(ctx, params.VisiteurID, params.AfterCursor, size); err != nil {
			s.logger.Error().Err(err).
				Str("visiteur_id", params.VisiteurID).
				Msg("feed-load signal dropped")
		}
	}

	return ScrollResult{
		PileContenu:         batch.Items,
		NextCursor:          batch.NextCursor,
		ContexteDerniereMAJ: s.now(),
	}, nil
}

package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Event is the engagement record computed for one dwell signal. It is
// ephemeral: emitted per call, persisted (if at all) by an external
// collaborator.
type Event struct {
	VisiteurID      string
	ItemID          string
	EventType       EventType
	DureeDwellMs    *int64
	ScoreEngagement float64
	Timestamp       time.Time
}

// SignalGateway publishes dwell signals for a visitor.
type SignalGateway interface {
	PublishDebutDwell(ctx context.Context, visiteurID, itemID string) error
	PublishFinDwell(ctx context.Context, visiteurID, itemID string, dureeDwellMs int64) error
}

// Service scores dwell events and signals the engine about them.
type Service struct {
	gateway SignalGateway
	now     func() time.Time
	logger  zerolog.Logger
}

func NewService(gateway SignalGateway) *Service {
	return &Service{
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

// DwellParams is the visitor-facing dwell request.
type DwellParams struct {
	VisiteurID   string
	ItemID       string
	EventType    EventType
	DureeDwellMs *int64
}

// DwellResult is the visitor-facing dwell response.
type DwellResult struct {
	OK         bool
	Engagement Event
}

// Dwell computes the engagement score for the event and signals the engine.
// Like the feed-load path, the signal is best-effort; a publish failure is
// logged and the scored event is still returned.
func (s *Service) Dwell(ctx context.Context, params DwellParams) (DwellResult, error) {
	if params.VisiteurID == "" || params.ItemID == "" {
		return DwellResult{}, fmt.Errorf("engagement: visiteur id and item id required")
	}
	if params.EventType == DwellStop && params.DureeDwellMs == nil {
		return DwellResult{}, fmt.Errorf("engagement: dureeDwellMs required for %s", DwellStop)
	}

	var duree int64
	if params.DureeDwellMs != nil {
		duree = *params.DureeDwellMs
	}
	score := Score(params.EventType, duree)

	if s.gateway != nil {
		var err error
		switch params.EventType {
		case DwellStart:
			err = s.gateway.PublishDebutDwell(ctx, params.VisiteurID, params.ItemID)
		case DwellStop:
			err = s.gateway.PublishFinDwell(ctx, params.VisiteurID, params.ItemID, duree)
		}
		if err != nil {
			s.logger.Error().Err(err).
				Str("visiteur_id", params.VisiteurID).
				Str("item_id", params.ItemID).
				Msg("dwell signal dropped")
		}
	}

	return DwellResult{
		OK: true,
		Engagement: Event{
			VisiteurID:      params.VisiteurID,
			ItemID:          params.ItemID,
			EventType:       params.EventType,
			DureeDwellMs:    params.DureeDwellMs,
			ScoreEngagement: score,
			Timestamp:       s.now(),
		},
	}, nil
}

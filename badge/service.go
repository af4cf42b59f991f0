package badge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"certflow/demande"
	"certflow/metrics"
)

// Evaluator derives the certification level from the competence evidence an
// external collaborator holds for the demande. The level is fixed at issuance
// and never recalculated.
type Evaluator interface {
	Evaluer(ctx context.Context, d demande.Demande) (Niveau, error)
}

// PreuveSource exposes the evidence count per competence. Owned by an
// external collaborator.
type PreuveSource interface {
	NombrePreuves(ctx context.Context, competenceID string) (int, error)
}

// PreuveEvaluator maps evidence counts to levels.
type PreuveEvaluator struct {
	source PreuveSource
}

func NewPreuveEvaluator(source PreuveSource) *PreuveEvaluator {
	return &PreuveEvaluator{source: source}
}

func (e *PreuveEvaluator) Evaluer(ctx context.Context, d demande.Demande) (Niveau, error) {
	n, err := e.source.NombrePreuves(ctx, d.CompetenceID)
	if err != nil {
		return 0, fmt.Errorf("badge: count preuves: %w", err)
	}
	switch {
	case n >= 8:
		return NiveauExpert, nil
	case n >= 5:
		return NiveauOr, nil
	case n >= 3:
		return NiveauArgent, nil
	default:
		return NiveauBronze, nil
	}
}

// StaticPreuves is a fixed PreuveSource for tests and the scenario driver.
type StaticPreuves map[string]int

func (s StaticPreuves) NombrePreuves(_ context.Context, competenceID string) (int, error) {
	return s[competenceID], nil
}

// Service issues badges idempotently.
type Service struct {
	repo  Repository
	eval  Evaluator
	idGen func() string
	now   func() time.Time
}

func NewService(repo Repository, eval Evaluator) *Service {
	return &Service{
		repo:  repo,
		eval:  eval,
		idGen: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// WithIDGenerator overrides identifier generation for tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue creates the badge for an approved demande, or returns the existing
// one unchanged. The check-then-create sequence plus the ledger's unique
// demande_id constraint make issuance exactly-once-effective under
// at-least-once job delivery: a racing duplicate insert surfaces as
// ErrAlreadyExists and is answered with the winner's badge.
func (s *Service) Issue(ctx context.Context, d demande.Demande) (Badge, error) {
	if d.Statut != demande.StatutApprouvee {
		return Badge{}, fmt.Errorf("badge: demande %s is %s, not %s", d.ID, d.Statut, demande.StatutApprouvee)
	}

	existing, err := s.repo.FindByDemandeID(ctx, d.ID)
	if err == nil {
		metrics.BadgeDuplicates.Inc()
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Badge{}, err
	}

	niveau, err := s.eval.Evaluer(ctx, d)
	if err != nil {
		return Badge{}, err
	}

	created, err := s.repo.Insert(ctx, Badge{
		ID:              s.idGen(),
		DemandeID:       d.ID,
		ExpertID:        d.ExpertID,
		Niveau:          niveau,
		DateAttribution: s.now(),
		Actif:           true,
	})
	if errors.Is(err, ErrAlreadyExists) {
		// Lost the race to a concurrent activation; the stored badge wins.
		metrics.BadgeDuplicates.Inc()
		return s.repo.FindByDemandeID(ctx, d.ID)
	}
	if err != nil {
		return Badge{}, err
	}
	return created, nil
}

// FindByDemandeID returns the badge for the demande or ErrNotFound.
func (s *Service) FindByDemandeID(ctx context.Context, demandeID string) (Badge, error) {
	return s.repo.FindByDemandeID(ctx, demandeID)
}

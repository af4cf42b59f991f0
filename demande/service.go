package demande

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service exposes the demande state machine. All mutations go through the
// repository's atomic Transition; the service only validates inputs and
// shapes parameters.
type Service struct {
	repo  Repository
	idGen func() string
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
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

// SoumissionParams enumerates what an expert submits.
type SoumissionParams struct {
	ExpertID     string
	CompetenceID string
}

// Soumettre creates a demande in EN_ATTENTE.
func (s *Service) Soumettre(ctx context.Context, params SoumissionParams) (Demande, error) {
	if params.ExpertID == "" {
		return Demande{}, fmt.Errorf("demande: missing expert id")
	}
	if params.CompetenceID == "" {
		return Demande{}, fmt.Errorf("demande: missing competence id")
	}

	return s.repo.Create(ctx, Demande{
		ID:           s.idGen(),
		ExpertID:     params.ExpertID,
		CompetenceID: params.CompetenceID,
		Statut:       StatutEnAttente,
		DateCreation: s.now(),
	})
}

// FindByID returns the demande or ErrNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (Demande, error) {
	return s.repo.FindByID(ctx, id)
}

// Approuver transitions EN_ATTENTE -> APPROUVEE. Badge creation is triggered
// by the engine's creer-badge job, not here.
func (s *Service) Approuver(ctx context.Context, id string) (Demande, error) {
	return s.repo.Transition(ctx, TransitionParams{DemandeID: id, Vers: StatutApprouvee})
}

// Rejeter transitions EN_ATTENTE -> REJETEE with a mandatory motif.
func (s *Service) Rejeter(ctx context.Context, id, motif string) (Demande, error) {
	motif = strings.TrimSpace(motif)
	if motif == "" {
		return Demande{}, fmt.Errorf("demande: motif de rejet required")
	}
	return s.repo.Transition(ctx, TransitionParams{
		DemandeID:  id,
		Vers:       StatutRejetee,
		MotifRejet: &motif,
	})
}

// DemanderComplement transitions EN_ATTENTE -> COMPLEMENT_REQUIS with a
// mandatory manager comment.
func (s *Service) DemanderComplement(ctx context.Context, id, commentaire string) (Demande, error) {
	commentaire = strings.TrimSpace(commentaire)
	if commentaire == "" {
		return Demande{}, fmt.Errorf("demande: commentaire required")
	}
	return s.repo.Transition(ctx, TransitionParams{
		DemandeID:          id,
		Vers:               StatutComplementRequis,
		CommentaireManager: &commentaire,
	})
}

// Resoumettre transitions COMPLEMENT_REQUIS -> EN_ATTENTE after the expert
// provided the requested information. The resubmission content itself is the
// expert collaborator's concern; this core only accepts the resulting state.
func (s *Service) Resoumettre(ctx context.Context, id string) (Demande, error) {
	return s.repo.Transition(ctx, TransitionParams{DemandeID: id, Vers: StatutEnAttente})
}

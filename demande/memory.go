package demande

import (
	"context"
	"fmt"
	"sync"
	"time"
)

func nowPtr() *time.Time {
	t := time.Now()
	return &t
}

// MemRepository implements Repository in memory with the same atomicity
// guarantees the PostgreSQL implementation gets from row locks. Used by the
// scenario driver and by tests that exercise the pipeline without a database.
type MemRepository struct {
	mu       sync.Mutex
	demandes map[string]Demande
}

func NewMemRepository() *MemRepository {
	return &MemRepository{demandes: make(map[string]Demande)}
}

func (r *MemRepository) Create(_ context.Context, d Demande) (Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.demandes[d.ID]; exists {
		return Demande{}, fmt.Errorf("demande: insert: duplicate id %s", d.ID)
	}
	r.demandes[d.ID] = d
	return d, nil
}

func (r *MemRepository) FindByID(_ context.Context, id string) (Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.demandes[id]
	if !ok {
		return Demande{}, ErrNotFound
	}
	return d, nil
}

func (r *MemRepository) Transition(_ context.Context, params TransitionParams) (Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.demandes[params.DemandeID]
	if !ok {
		return Demande{}, ErrNotFound
	}
	if !CanTransition(d.Statut, params.Vers) {
		return Demande{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Statut, params.Vers)
	}

	d.Statut = params.Vers
	switch params.Vers {
	case StatutComplementRequis:
		d.CommentaireManager = params.CommentaireManager
		d.DateDecision = nowPtr()
	case StatutRejetee:
		d.MotifRejet = params.MotifRejet
		d.DateDecision = nowPtr()
	case StatutApprouvee:
		d.DateDecision = nowPtr()
	case StatutEnAttente:
		d.MotifRejet = nil
		d.DateDecision = nil
	}
	r.demandes[params.DemandeID] = d
	return d, nil
}

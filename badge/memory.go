package badge

import (
	"context"
	"sync"
)

// MemRepository implements Repository in memory with the same unique
// demande_id discipline the PostgreSQL implementation gets from its
// constraint. Used by the scenario driver and pipeline tests.
type MemRepository struct {
	mu        sync.Mutex
	byDemande map[string]Badge
}

func NewMemRepository() *MemRepository {
	return &MemRepository{byDemande: make(map[string]Badge)}
}

func (r *MemRepository) Insert(_ context.Context, b Badge) (Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byDemande[b.DemandeID]; exists {
		return Badge{}, ErrAlreadyExists
	}
	r.byDemande[b.DemandeID] = b
	return b, nil
}

func (r *MemRepository) FindByDemandeID(_ context.Context, demandeID string) (Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byDemande[demandeID]
	if !ok {
		return Badge{}, ErrNotFound
	}
	return b, nil
}

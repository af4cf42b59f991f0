package demande

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the storage contract for demandes. Transition must be atomic
// per demande: concurrent decisions on the same demande from distinct engine
// workers must serialize at the storage layer, not via in-process locks.
type Repository interface {
	Create(ctx context.Context, d Demande) (Demande, error)
	FindByID(ctx context.Context, id string) (Demande, error)
	Transition(ctx context.Context, params TransitionParams) (Demande, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const demandeColumns = `id, expert_id, competence_id, statut, commentaire_manager, motif_rejet, date_creation, date_decision`

func scanDemande(row pgx.Row) (Demande, error) {
	var d Demande
	err := row.Scan(&d.ID, &d.ExpertID, &d.CompetenceID, &d.Statut,
		&d.CommentaireManager, &d.MotifRejet, &d.DateCreation, &d.DateDecision)
	return d, err
}

func (r *PGRepository) Create(ctx context.Context, d Demande) (Demande, error) {
	const insertSQL = `
INSERT INTO demandes (id, expert_id, competence_id, statut, date_creation)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + demandeColumns

	created, err := scanDemande(r.pool.QueryRow(ctx, insertSQL,
		d.ID, d.ExpertID, d.CompetenceID, d.Statut, d.DateCreation))
	if err != nil {
		return Demande{}, fmt.Errorf("demande: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (Demande, error) {
	const query = `SELECT ` + demandeColumns + ` FROM demandes WHERE id = $1`

	d, err := scanDemande(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Demande{}, ErrNotFound
		}
		return Demande{}, fmt.Errorf("demande: find: %w", err)
	}
	return d, nil
}

// Transition applies the state change inside a transaction holding the row
// lock, so a racing decision from another engine worker waits and then fails
// the CanTransition check instead of interleaving.
func (r *PGRepository) Transition(ctx context.Context, params TransitionParams) (Demande, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Demande{}, fmt.Errorf("demande: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Statut
	if err := tx.QueryRow(ctx, `SELECT statut FROM demandes WHERE id = $1 FOR UPDATE`, params.DemandeID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Demande{}, ErrNotFound
		}
		return Demande{}, fmt.Errorf("demande: lock for transition: %w", err)
	}

	if !CanTransition(current, params.Vers) {
		return Demande{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, params.Vers)
	}

	// A decision stamps date_decision; a resubmission clears the decision
	// fields so the demande reads as freshly pending.
	const updateSQL = `
UPDATE demandes
SET statut = $2,
    commentaire_manager = CASE WHEN $2 = 'COMPLEMENT_REQUIS' THEN $3 ELSE commentaire_manager END,
    motif_rejet = CASE WHEN $2 = 'REJETEE' THEN $4 WHEN $2 = 'EN_ATTENTE' THEN NULL ELSE motif_rejet END,
    date_decision = CASE WHEN $2 = 'EN_ATTENTE' THEN NULL ELSE now() END
WHERE id = $1
RETURNING ` + demandeColumns

	updated, err := scanDemande(tx.QueryRow(ctx, updateSQL,
		params.DemandeID, params.Vers, params.CommentaireManager, params.MotifRejet))
	if err != nil {
		return Demande{}, fmt.Errorf("demande: update statut: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Demande{}, fmt.Errorf("demande: commit transition: %w", err)
	}
	return updated, nil
}

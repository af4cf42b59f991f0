package badge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the ledger's storage contract. Insert must fail with
// ErrAlreadyExists when a badge for the demande already exists, so a racing
// duplicate creation is detected instead of corrupting state.
type Repository interface {
	Insert(ctx context.Context, b Badge) (Badge, error)
	FindByDemandeID(ctx context.Context, demandeID string) (Badge, error)
}

// PGRepository implements Repository on PostgreSQL, relying on the unique
// constraint on badges.demande_id.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const badgeColumns = `id, demande_id, expert_id, niveau_certification, date_attribution, actif`

func scanBadge(row pgx.Row) (Badge, error) {
	var b Badge
	err := row.Scan(&b.ID, &b.DemandeID, &b.ExpertID, &b.Niveau, &b.DateAttribution, &b.Actif)
	return b, err
}

func (r *PGRepository) Insert(ctx context.Context, b Badge) (Badge, error) {
	const insertSQL = `
INSERT INTO badges (id, demande_id, expert_id, niveau_certification, date_attribution, actif)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + badgeColumns

	created, err := scanBadge(r.pool.QueryRow(ctx, insertSQL,
		b.ID, b.DemandeID, b.ExpertID, b.Niveau, b.DateAttribution, b.Actif))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Badge{}, ErrAlreadyExists
		}
		return Badge{}, fmt.Errorf("badge: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) FindByDemandeID(ctx context.Context, demandeID string) (Badge, error) {
	const query = `SELECT ` + badgeColumns + ` FROM badges WHERE demande_id = $1`

	b, err := scanBadge(r.pool.QueryRow(ctx, query, demandeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Badge{}, ErrNotFound
		}
		return Badge{}, fmt.Errorf("badge: find by demande: %w", err)
	}
	return b, nil
}

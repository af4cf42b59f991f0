package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// An Oracle is an invariant query: any returned row is a violation.
type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_one_badge_per_demande",
			SQL: `SELECT demande_id, COUNT(*) FROM badges
                  GROUP BY demande_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_badge_requires_approval",
			SQL: `SELECT b.id, d.statut FROM badges b
                  JOIN demandes d ON d.id = b.demande_id
                  WHERE d.statut <> 'APPROUVEE'`,
		},
		{
			Name: "O3_decision_stamped_on_terminal",
			SQL: `SELECT id, statut FROM demandes
                  WHERE statut IN ('APPROUVEE','REJETEE') AND date_decision IS NULL`,
		},
		{
			Name: "O4_rejection_carries_motif",
			SQL: `SELECT id FROM demandes
                  WHERE statut = 'REJETEE' AND (motif_rejet IS NULL OR motif_rejet = '')`,
		},
		{
			Name: "O5_pending_never_decided",
			SQL: `SELECT id, statut FROM demandes
                  WHERE statut = 'EN_ATTENTE' AND date_decision IS NOT NULL`,
		},
		{
			Name: "O6_complement_carries_commentaire",
			SQL: `SELECT id FROM demandes
                  WHERE statut = 'COMPLEMENT_REQUIS'
                    AND (commentaire_manager IS NULL OR commentaire_manager = '')`,
		},
		{
			Name: "O7_badge_expert_matches_demande",
			SQL: `SELECT b.id FROM badges b
                  JOIN demandes d ON d.id = b.demande_id
                  WHERE b.expert_id <> d.expert_id`,
		},
		{
			Name: "O8_badge_never_predates_demande",
			SQL: `SELECT b.id FROM badges b
                  JOIN demandes d ON d.id = b.demande_id
                  WHERE b.date_attribution < d.date_creation - interval '1 minute'`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and a sample
// row) or an empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}

package badge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"certflow/demande"
)

func approvedDemande() demande.Demande {
	return demande.Demande{
		ID:           "demande-1",
		ExpertID:     "expert-1",
		CompetenceID: "competence-go",
		Statut:       demande.StatutApprouvee,
	}
}

func newTestService(repo Repository) *Service {
	issued := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	n := 0
	return NewService(repo, NewPreuveEvaluator(StaticPreuves{"competence-go": 6})).
		WithClock(func() time.Time { return issued }).
		WithIDGenerator(func() string {
			n++
			return "badge-" + string(rune('0'+n))
		})
}

func TestIssue_CreatesBadgeOnce(t *testing.T) {
	svc := newTestService(NewMemRepository())
	ctx := context.Background()

	first, err := svc.Issue(ctx, approvedDemande())
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if first.Niveau != NiveauOr {
		t.Fatalf("expected niveau OR for 6 preuves, got %s", first.Niveau)
	}
	if !first.Actif {
		t.Fatal("expected badge active at issuance")
	}

	second, err := svc.Issue(ctx, approvedDemande())
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("idempotence violated: %s != %s", second.ID, first.ID)
	}
}

func TestIssue_RejectsUnapprovedDemande(t *testing.T) {
	svc := newTestService(NewMemRepository())

	d := approvedDemande()
	d.Statut = demande.StatutEnAttente
	if _, err := svc.Issue(context.Background(), d); err == nil {
		t.Fatal("expected error for unapproved demande")
	}
}

// raceRepo simulates losing the insert race to a concurrent activation from
// another engine worker: the existence check misses, the insert collides.
type raceRepo struct {
	winner  Badge
	checked bool
}

func (r *raceRepo) Insert(context.Context, Badge) (Badge, error) {
	return Badge{}, ErrAlreadyExists
}

func (r *raceRepo) FindByDemandeID(_ context.Context, demandeID string) (Badge, error) {
	if !r.checked {
		r.checked = true
		return Badge{}, ErrNotFound
	}
	return r.winner, nil
}

func TestIssue_LostRaceReturnsWinner(t *testing.T) {
	winner := Badge{ID: "badge-winner", DemandeID: "demande-1", Niveau: NiveauArgent, Actif: true}
	svc := newTestService(&raceRepo{winner: winner})

	got, err := svc.Issue(context.Background(), approvedDemande())
	if err != nil {
		t.Fatalf("expected race to resolve as success, got %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected winner's badge, got %+v", got)
	}
}

func TestIssue_ConcurrentCallersAgree(t *testing.T) {
	repo := NewMemRepository()
	eval := NewPreuveEvaluator(StaticPreuves{"competence-go": 2})
	svc := NewService(repo, eval)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b, err := svc.Issue(ctx, approvedDemande())
			if err != nil {
				t.Errorf("caller %d: %v", n, err)
				return
			}
			ids[n] = b.ID
		}(i)
	}
	wg.Wait()

	stored, err := repo.FindByDemandeID(ctx, "demande-1")
	if err != nil {
		t.Fatalf("find stored badge: %v", err)
	}
	for i, id := range ids {
		if id != stored.ID {
			t.Fatalf("caller %d observed badge %s, stored is %s", i, id, stored.ID)
		}
	}
}

func TestFindByDemandeID_NotFound(t *testing.T) {
	svc := newTestService(NewMemRepository())
	if _, err := svc.FindByDemandeID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreuveEvaluator_Thresholds(t *testing.T) {
	cases := []struct {
		preuves int
		want    Niveau
	}{
		{0, NiveauBronze},
		{2, NiveauBronze},
		{3, NiveauArgent},
		{4, NiveauArgent},
		{5, NiveauOr},
		{7, NiveauOr},
		{8, NiveauExpert},
		{20, NiveauExpert},
	}
	for _, tc := range cases {
		eval := NewPreuveEvaluator(StaticPreuves{"c": tc.preuves})
		d := demande.Demande{ID: "d", CompetenceID: "c", Statut: demande.StatutApprouvee}
		niveau, err := eval.Evaluer(context.Background(), d)
		if err != nil {
			t.Fatalf("preuves %d: %v", tc.preuves, err)
		}
		if niveau != tc.want {
			t.Errorf("preuves %d: expected %s, got %s", tc.preuves, tc.want, niveau)
		}
	}
}

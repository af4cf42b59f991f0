package demande

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(repo Repository) *Service {
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return NewService(repo).
		WithIDGenerator(func() string { return "demande-1" }).
		WithClock(func() time.Time { return created })
}

func soumise(t *testing.T, svc *Service) Demande {
	t.Helper()
	d, err := svc.Soumettre(context.Background(), SoumissionParams{
		ExpertID: "expert-1", CompetenceID: "competence-go",
	})
	if err != nil {
		t.Fatalf("soumettre: %v", err)
	}
	return d
}

func TestSoumettre_CreatesEnAttente(t *testing.T) {
	svc := newTestService(NewMemRepository())

	d := soumise(t, svc)
	if d.Statut != StatutEnAttente {
		t.Fatalf("expected %s, got %s", StatutEnAttente, d.Statut)
	}
	if d.ID != "demande-1" || d.ExpertID != "expert-1" {
		t.Fatalf("unexpected demande: %+v", d)
	}
	if d.DateDecision != nil {
		t.Error("expected no decision date on submission")
	}
}

func TestSoumettre_Validation(t *testing.T) {
	svc := newTestService(NewMemRepository())

	if _, err := svc.Soumettre(context.Background(), SoumissionParams{CompetenceID: "c"}); err == nil {
		t.Fatal("expected error for missing expert id")
	}
	if _, err := svc.Soumettre(context.Background(), SoumissionParams{ExpertID: "e"}); err == nil {
		t.Fatal("expected error for missing competence id")
	}
}

func TestApprouver_FromEnAttente(t *testing.T) {
	svc := newTestService(NewMemRepository())
	d := soumise(t, svc)

	approved, err := svc.Approuver(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("approuver: %v", err)
	}
	if approved.Statut != StatutApprouvee {
		t.Fatalf("expected %s, got %s", StatutApprouvee, approved.Statut)
	}
	if approved.DateDecision == nil {
		t.Error("expected decision date to be stamped")
	}
}

func TestRejeter_RequiresMotif(t *testing.T) {
	svc := newTestService(NewMemRepository())
	d := soumise(t, svc)

	if _, err := svc.Rejeter(context.Background(), d.ID, "   "); err == nil {
		t.Fatal("expected error for blank motif")
	}

	rejected, err := svc.Rejeter(context.Background(), d.ID, "preuves insuffisantes")
	if err != nil {
		t.Fatalf("rejeter: %v", err)
	}
	if rejected.Statut != StatutRejetee || rejected.MotifRejet == nil || *rejected.MotifRejet != "preuves insuffisantes" {
		t.Fatalf("unexpected demande: %+v", rejected)
	}
}

func TestComplementPuisResoumission(t *testing.T) {
	svc := newTestService(NewMemRepository())
	d := soumise(t, svc)

	withComment, err := svc.DemanderComplement(context.Background(), d.ID, "ajouter un portfolio")
	if err != nil {
		t.Fatalf("demander complement: %v", err)
	}
	if withComment.Statut != StatutComplementRequis {
		t.Fatalf("expected %s, got %s", StatutComplementRequis, withComment.Statut)
	}

	resubmitted, err := svc.Resoumettre(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("resoumettre: %v", err)
	}
	if resubmitted.Statut != StatutEnAttente {
		t.Fatalf("expected %s after resubmission, got %s", StatutEnAttente, resubmitted.Statut)
	}
	if resubmitted.DateDecision != nil {
		t.Error("expected decision date cleared on resubmission")
	}
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	ctx := context.Background()

	for _, terminal := range []struct {
		name   string
		decide func(svc *Service, id string) error
	}{
		{"approuvee", func(svc *Service, id string) error {
			_, err := svc.Approuver(ctx, id)
			return err
		}},
		{"rejetee", func(svc *Service, id string) error {
			_, err := svc.Rejeter(ctx, id, "non conforme")
			return err
		}},
	} {
		t.Run(terminal.name, func(t *testing.T) {
			svc := newTestService(NewMemRepository())
			d := soumise(t, svc)
			if err := terminal.decide(svc, d.ID); err != nil {
				t.Fatalf("decide: %v", err)
			}
			before, err := svc.FindByID(ctx, d.ID)
			if err != nil {
				t.Fatalf("find: %v", err)
			}

			if _, err := svc.Approuver(ctx, d.ID); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if _, err := svc.Resoumettre(ctx, d.ID); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}

			after, err := svc.FindByID(ctx, d.ID)
			if err != nil {
				t.Fatalf("find after: %v", err)
			}
			if after.Statut != before.Statut {
				t.Fatalf("terminal statut mutated: %s -> %s", before.Statut, after.Statut)
			}
		})
	}
}

func TestFindByID_NotFound(t *testing.T) {
	svc := newTestService(NewMemRepository())
	if _, err := svc.FindByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanTransition_Edges(t *testing.T) {
	allowed := []struct{ from, to Statut }{
		{StatutEnAttente, StatutApprouvee},
		{StatutEnAttente, StatutRejetee},
		{StatutEnAttente, StatutComplementRequis},
		{StatutComplementRequis, StatutEnAttente},
	}
	for _, e := range allowed {
		if !CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be allowed", e.from, e.to)
		}
	}

	forbidden := []struct{ from, to Statut }{
		{StatutApprouvee, StatutRejetee},
		{StatutApprouvee, StatutEnAttente},
		{StatutRejetee, StatutApprouvee},
		{StatutComplementRequis, StatutApprouvee},
		{StatutEnAttente, StatutEnAttente},
	}
	for _, e := range forbidden {
		if CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be forbidden", e.from, e.to)
		}
	}
}

package actors

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"certflow/badge"
	"certflow/demande"
)

// The actors drive the real services against a shared database while chaos
// kills backends underneath them. Contention outcomes (ErrInvalidTransition,
// ErrAlreadyExists) are expected; transport errors are retried on the next
// loop iteration rather than failing the run.

func expected(err error) bool {
	return err == nil ||
		errors.Is(err, demande.ErrInvalidTransition) ||
		errors.Is(err, demande.ErrNotFound) ||
		errors.Is(err, badge.ErrAlreadyExists) ||
		errors.Is(err, badge.ErrNotFound)
}

// Approver hammers Approuver on the shared demande. At most one decider wins;
// everyone else gets ErrInvalidTransition once the demande is terminal.
func Approver(ctx context.Context, svc *demande.Service, demandeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = svc.Approuver(ctx, demandeID)
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Rejecter races the approvers with a rejection on the same demande.
func Rejecter(ctx context.Context, svc *demande.Service, demandeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = svc.Rejeter(ctx, demandeID, "preuves insuffisantes")
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Issuer simulates duplicate creer-badge activations: it keeps loading the
// shared demande and, once approved, calls Issue over and over. The ledger
// must end up with exactly one badge no matter how many issuers run.
func Issuer(ctx context.Context, demandes *demande.Service, badges *badge.Service, demandeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		d, err := demandes.FindByID(ctx, demandeID)
		if err == nil && d.Statut == demande.StatutApprouvee {
			_, _ = badges.Issue(ctx, d)
		}
		time.Sleep(time.Duration(15+rand.Intn(30)) * time.Millisecond)
	}
}

// Submitter churns fresh demandes and decides them at random, exercising the
// full transition graph alongside the contended shared demande.
func Submitter(ctx context.Context, demandes *demande.Service, badges *badge.Service, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		d, err := demandes.Soumettre(ctx, demande.SoumissionParams{
			ExpertID:     "expert-stress",
			CompetenceID: "competence-stress",
		})
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		switch rand.Intn(3) {
		case 0:
			if approved, err := demandes.Approuver(ctx, d.ID); err == nil {
				_, _ = badges.Issue(ctx, approved)
			}
		case 1:
			_, _ = demandes.Rejeter(ctx, d.ID, "portfolio incomplet")
		default:
			if _, err := demandes.DemanderComplement(ctx, d.ID, "ajouter des preuves"); err == nil {
				_, _ = demandes.Resoumettre(ctx, d.ID)
			}
		}
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// RawIssuer bypasses the service and inserts duplicate badge rows directly, so
// the unique constraint itself is exercised, not only the existence check.
func RawIssuer(ctx context.Context, pool *pgxpool.Pool, repo badge.Repository, demandeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		var statut string
		if err := pool.QueryRow(ctx, `SELECT statut FROM demandes WHERE id=$1`, demandeID).Scan(&statut); err == nil && statut == string(demande.StatutApprouvee) {
			_, err := repo.Insert(ctx, badge.Badge{
				ID:              uuid.NewString(),
				DemandeID:       demandeID,
				ExpertID:        "expert-stress",
				Niveau:          badge.NiveauBronze,
				DateAttribution: time.Now().UTC(),
				Actif:           true,
			})
			if !expected(err) {
				// transport error, retry next loop
				time.Sleep(50 * time.Millisecond)
			}
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}

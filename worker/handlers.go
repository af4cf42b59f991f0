package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"certflow/badge"
	"certflow/demande"
	"certflow/engine"
	"certflow/metrics"
	"certflow/notification"
)

// Job types the certification process delegates to this core.
const (
	JobCreerBadge          = "creer-badge"
	JobNotifierApprobation = "notifier-approbation"
	JobNotifierRejet       = "notifier-rejet"
	JobNotifierComplement  = "notifier-complement"
)

// Variable names of the job contract.
const (
	VarDemandeID   = "demandeId"
	VarExpertID    = "expertId"
	VarBadgeID     = "badgeId"
	VarBadgeCree   = "badgeCree"
	VarNiveau      = "niveauCertification"
	VarMotifRejet  = "motifRejet"
	VarCommentaire = "commentaireManager"
)

// DemandeReader loads the demande a job refers to.
type DemandeReader interface {
	FindByID(ctx context.Context, id string) (demande.Demande, error)
}

// BadgeIssuer creates (or returns the existing) badge for an approved demande.
type BadgeIssuer interface {
	Issue(ctx context.Context, d demande.Demande) (badge.Badge, error)
}

// Handlers implements the four job types of the certification process.
//
// Failure semantics are deliberately asymmetric: creer-badge changes state,
// so its errors propagate and the engine retries or escalates; the notifier
// jobs are best-effort side effects, so their errors are logged and absorbed
// and the job still completes. Do not unify the two policies.
type Handlers struct {
	demandes DemandeReader
	badges   BadgeIssuer
	notifier notification.Notifier
	logger   zerolog.Logger
}

func NewHandlers(demandes DemandeReader, badges BadgeIssuer, notifier notification.Notifier, logger zerolog.Logger) *Handlers {
	return &Handlers{
		demandes: demandes,
		badges:   badges,
		notifier: notifier,
		logger:   logger,
	}
}

// Types lists the job types this core serves.
func (h *Handlers) Types() []string {
	return []string{JobCreerBadge, JobNotifierApprobation, JobNotifierRejet, JobNotifierComplement}
}

// RegisterAll wires the four handlers into the dispatcher.
func (h *Handlers) RegisterAll(d *Dispatcher) {
	d.Handle(JobCreerBadge, h.CreerBadge)
	d.Handle(JobNotifierApprobation, h.NotifierApprobation)
	d.Handle(JobNotifierRejet, h.NotifierRejet)
	d.Handle(JobNotifierComplement, h.NotifierComplement)
}

// CreerBadge issues the badge for an approved demande. Any internal error
// fails the job loudly so the engine can retry; issuance never silently
// reports success on partial failure. Duplicate activations are resolved by
// the ledger's idempotency and complete with the existing badge.
func (h *Handlers) CreerBadge(ctx context.Context, job engine.Job) (engine.Variables, error) {
	demandeID, ok := engine.StringVar(job.Variables, VarDemandeID)
	if !ok {
		return nil, fmt.Errorf("worker: %s: missing %s", JobCreerBadge, VarDemandeID)
	}
	if _, ok := engine.StringVar(job.Variables, VarExpertID); !ok {
		return nil, fmt.Errorf("worker: %s: missing %s", JobCreerBadge, VarExpertID)
	}

	d, err := h.demandes.FindByID(ctx, demandeID)
	if err != nil {
		return nil, fmt.Errorf("worker: %s: %w", JobCreerBadge, err)
	}

	b, err := h.badges.Issue(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("worker: %s: %w", JobCreerBadge, err)
	}

	return engine.Variables{
		VarBadgeID:   b.ID,
		VarBadgeCree: true,
		VarNiveau:    b.Niveau.String(),
	}, nil
}

// NotifierApprobation notifies the expert of the approval. Best-effort: a
// delivery failure is logged and absorbed; the job completes regardless so it
// can never block an already-committed approval.
func (h *Handlers) NotifierApprobation(ctx context.Context, job engine.Job) (engine.Variables, error) {
	n := notification.Approbation{}
	n.DemandeID, _ = engine.StringVar(job.Variables, VarDemandeID)
	n.ExpertID, _ = engine.StringVar(job.Variables, VarExpertID)
	n.BadgeID, _ = engine.StringVar(job.Variables, VarBadgeID)

	if err := h.notifier.Approbation(ctx, n); err != nil {
		h.absorb(JobNotifierApprobation, n.DemandeID, err)
	}
	return nil, nil
}

// NotifierRejet notifies the expert of the rejection. Same non-blocking
// failure policy as NotifierApprobation.
func (h *Handlers) NotifierRejet(ctx context.Context, job engine.Job) (engine.Variables, error) {
	n := notification.Rejet{}
	n.DemandeID, _ = engine.StringVar(job.Variables, VarDemandeID)
	n.ExpertID, _ = engine.StringVar(job.Variables, VarExpertID)
	n.Motif, _ = engine.StringVar(job.Variables, VarMotifRejet)

	if err := h.notifier.Rejet(ctx, n); err != nil {
		h.absorb(JobNotifierRejet, n.DemandeID, err)
	}
	return nil, nil
}

// NotifierComplement notifies the expert that more information is needed.
// Same non-blocking failure policy as NotifierApprobation.
func (h *Handlers) NotifierComplement(ctx context.Context, job engine.Job) (engine.Variables, error) {
	n := notification.Complement{}
	n.DemandeID, _ = engine.StringVar(job.Variables, VarDemandeID)
	n.ExpertID, _ = engine.StringVar(job.Variables, VarExpertID)
	n.Commentaire, _ = engine.StringVar(job.Variables, VarCommentaire)

	if err := h.notifier.Complement(ctx, n); err != nil {
		h.absorb(JobNotifierComplement, n.DemandeID, err)
	}
	return nil, nil
}

func (h *Handlers) absorb(jobType, demandeID string, err error) {
	metrics.NotificationsDropped.WithLabelValues(jobType).Inc()
	h.logger.Error().Err(err).
		Str("job_type", jobType).
		Str("demande_id", demandeID).
		Msg("notification failed, absorbed")
}

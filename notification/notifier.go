// Package notification defines the decision-notification contract. Real
// delivery (email/SMS) is an external collaborator's concern; the logging
// implementation stands in for it.
package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Approbation notifies the expert their demande was approved and a badge issued.
type Approbation struct {
	DemandeID string
	ExpertID  string
	BadgeID   string
}

// Rejet notifies the expert their demande was rejected.
type Rejet struct {
	DemandeID string
	ExpertID  string
	Motif     string
}

// Complement notifies the expert the manager needs more information.
type Complement struct {
	DemandeID   string
	ExpertID    string
	Commentaire string
}

// Notifier delivers decision notifications. Implementations may fail; callers
// on the approval pipeline absorb those failures rather than propagate them.
type Notifier interface {
	Approbation(ctx context.Context, n Approbation) error
	Rejet(ctx context.Context, n Rejet) error
	Complement(ctx context.Context, n Complement) error
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Approbation(_ context.Context, n Approbation) error {
	l.logger.Info().
		Str("demande_id", n.DemandeID).
		Str("expert_id", n.ExpertID).
		Str("badge_id", n.BadgeID).
		Msg("notification: demande approuvee")
	return nil
}

func (l *LogNotifier) Rejet(_ context.Context, n Rejet) error {
	l.logger.Info().
		Str("demande_id", n.DemandeID).
		Str("expert_id", n.ExpertID).
		Str("motif", n.Motif).
		Msg("notification: demande rejetee")
	return nil
}

func (l *LogNotifier) Complement(_ context.Context, n Complement) error {
	l.logger.Info().
		Str("demande_id", n.DemandeID).
		Str("expert_id", n.ExpertID).
		Str("commentaire", n.Commentaire).
		Msg("notification: complement requis")
	return nil
}

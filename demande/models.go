// Package demande governs the lifecycle of competence-recognition requests:
// an expert submits, a manager decides, and terminal states feed badge
// issuance. Demandes are never deleted, only transitioned.
package demande

import (
	"errors"
	"time"
)

// Statut is the lifecycle state of a demande.
type Statut string

const (
	StatutEnAttente        Statut = "EN_ATTENTE"
	StatutComplementRequis Statut = "COMPLEMENT_REQUIS"
	StatutApprouvee        Statut = "APPROUVEE"
	StatutRejetee          Statut = "REJETEE"
)

var (
	// ErrNotFound is returned when no demande exists for the identifier.
	ErrNotFound = errors.New("demande: not found")
	// ErrInvalidTransition signals a transition attempted from a state that
	// does not allow it; the demande is left untouched.
	ErrInvalidTransition = errors.New("demande: invalid transition")
)

// Terminal reports whether the state admits no further transitions.
func (s Statut) Terminal() bool {
	return s == StatutApprouvee || s == StatutRejetee
}

// CanTransition reports whether the edge from -> to exists in the lifecycle.
func CanTransition(from, to Statut) bool {
	switch from {
	case StatutEnAttente:
		return to == StatutApprouvee || to == StatutRejetee || to == StatutComplementRequis
	case StatutComplementRequis:
		return to == StatutEnAttente
	default:
		return false
	}
}

// Demande is a competence-recognition request submitted by an expert.
type Demande struct {
	ID                 string
	ExpertID           string
	CompetenceID       string
	Statut             Statut
	CommentaireManager *string
	MotifRejet         *string
	DateCreation       time.Time
	DateDecision       *time.Time
}

// TransitionParams enumerates a single state transition applied atomically at
// the storage layer.
type TransitionParams struct {
	DemandeID string
	Vers      Statut
	// CommentaireManager accompanies a COMPLEMENT_REQUIS decision.
	CommentaireManager *string
	// MotifRejet accompanies a REJETEE decision.
	MotifRejet *string
}

// Package badge is the issuance ledger for certification badges. Issuance is
// idempotent and exactly-once-effective: one badge per approved demande, with
// the uniqueness enforced by the storage layer so duplicate job activations
// from the engine resolve to the existing badge.
package badge

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no badge exists for the lookup key.
	ErrNotFound = errors.New("badge: not found")
	// ErrAlreadyExists signals the unique demande_id guardrail fired; callers
	// treat it as success-equivalent and fetch the existing badge.
	ErrAlreadyExists = errors.New("badge: already issued for demande")
)

// Niveau is the ordinal certification level, fixed at issuance time.
type Niveau int

const (
	NiveauBronze Niveau = iota + 1
	NiveauArgent
	NiveauOr
	NiveauExpert
)

func (n Niveau) String() string {
	switch n {
	case NiveauBronze:
		return "BRONZE"
	case NiveauArgent:
		return "ARGENT"
	case NiveauOr:
		return "OR"
	case NiveauExpert:
		return "EXPERT"
	default:
		return fmt.Sprintf("NIVEAU(%d)", int(n))
	}
}

// Badge is an issued certification record for an approved demande. It is
// deactivated only by an external expiration process, never by this core.
type Badge struct {
	ID              string
	DemandeID       string
	ExpertID        string
	Niveau          Niveau
	DateAttribution time.Time
	Actif           bool
}

// Package engine defines the contract this core expects from the external
// business-process engine: correlated message publication and job
// activation/completion. The engine itself is an external collaborator; only
// its narrow surface is modeled here so a real client or the in-memory Stub
// can be substituted.
package engine

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEngineUnavailable signals a transport failure reaching the engine.
	ErrEngineUnavailable = errors.New("engine: unavailable")
	// ErrEngineRejected signals the engine refused the published message.
	ErrEngineRejected = errors.New("engine: message rejected")
)

// Variables carries named values between this core and the engine, both as
// message payloads and as job inputs/outputs.
type Variables map[string]any

// Message is a named, correlation-keyed signal. The engine routes it to the
// process instance waiting on CorrelationKey and discards it after TimeToLive
// if undelivered.
type Message struct {
	Name           string
	CorrelationKey string
	TimeToLive     time.Duration
	Variables      Variables
}

// Job is a unit of work the engine delegates to this core at a specific point
// in its flow. Activation is at-least-once; handlers must tolerate duplicates.
type Job struct {
	Key       int64
	Type      string
	Variables Variables
	Retries   int32
}

// Publisher accepts messages for correlation against waiting instances.
// Publish is one-way; the engine acknowledges the send but tracks nothing
// beyond it.
type Publisher interface {
	PublishMessage(ctx context.Context, msg Message) error
}

// Completer reports job outcomes back to the engine so it can resume the
// instance (on complete) or retry/escalate (on fail).
type Completer interface {
	CompleteJob(ctx context.Context, jobKey int64, vars Variables) error
	FailJob(ctx context.Context, jobKey int64, reason string) error
}

// StringVar extracts a required string variable from job inputs.
func StringVar(vars Variables, name string) (string, bool) {
	v, ok := vars[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

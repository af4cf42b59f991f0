package engine

import (
	"context"
	"sync"
	"time"
)

// Stub is an in-memory engine standing in for the external process engine in
// tests and the reference scenario driver. It records published messages per
// correlation key, hands out instance keys, and lets the caller inject job
// activations and observe completions and failures.
type Stub struct {
	mu          sync.Mutex
	published   []Message
	completions map[int64]Variables
	failures    map[int64]string
	instances   map[string]int64
	jobs        chan Job
	nextKey     int64
	unavailable bool
	rejected    map[string]bool
}

func NewStub() *Stub {
	return &Stub{
		completions: make(map[int64]Variables),
		failures:    make(map[int64]string),
		instances:   make(map[string]int64),
		rejected:    make(map[string]bool),
		jobs:        make(chan Job, 64),
	}
}

// SetUnavailable makes subsequent publishes fail with ErrEngineUnavailable.
func (s *Stub) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

// RejectMessage makes publishes of the named message fail with
// ErrEngineRejected, simulating engine-side validation.
func (s *Stub) RejectMessage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[name] = true
}

// PublishMessage records the message. Implements Publisher.
func (s *Stub) PublishMessage(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return ErrEngineUnavailable
	}
	if s.rejected[msg.Name] {
		return ErrEngineRejected
	}
	s.published = append(s.published, msg)
	return nil
}

// Published returns recorded messages with the given name, all of them when
// name is empty.
func (s *Stub) Published(name string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0, len(s.published))
	for _, m := range s.published {
		if name == "" || m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// StartInstance allocates a process instance for the correlation key and
// returns its instance key, as the real engine would on process start.
func (s *Stub) StartInstance(correlationKey string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextKey++
	s.instances[correlationKey] = s.nextKey
	return s.nextKey
}

// Activate injects a job activation as if the engine reached a service task.
// Calling it twice with the same variables simulates at-least-once redelivery.
func (s *Stub) Activate(jobType string, vars Variables) Job {
	s.mu.Lock()
	s.nextKey++
	job := Job{Key: s.nextKey, Type: jobType, Variables: vars, Retries: 3}
	s.mu.Unlock()
	s.jobs <- job
	return job
}

// Jobs is the activation stream a dispatcher consumes.
func (s *Stub) Jobs() <-chan Job {
	return s.jobs
}

// Close ends the activation stream.
func (s *Stub) Close() {
	close(s.jobs)
}

// CompleteJob records a completion. Implements Completer.
func (s *Stub) CompleteJob(_ context.Context, jobKey int64, vars Variables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[jobKey] = vars
	return nil
}

// FailJob records a failure. Implements Completer.
func (s *Stub) FailJob(_ context.Context, jobKey int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[jobKey] = reason
	return nil
}

// Completion reports whether the job completed and with which variables.
func (s *Stub) Completion(jobKey int64) (Variables, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars, ok := s.completions[jobKey]
	return vars, ok
}

// Failure reports whether the job failed and with which reason.
func (s *Stub) Failure(jobKey int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.failures[jobKey]
	return reason, ok
}

// WaitOutcome polls until the job has either completed or failed, or the
// timeout elapses. Test helper for asynchronous dispatch.
func (s *Stub) WaitOutcome(jobKey int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		_, done := s.completions[jobKey]
		if !done {
			_, done = s.failures[jobKey]
		}
		s.mu.Unlock()
		if done {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

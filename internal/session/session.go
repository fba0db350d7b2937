// Package session manages long-running background device operations
// (screen recordings, log monitors) behind a uniform state machine.
// Sessions are owned by a Registry; nothing outside the registry
// mutates them.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Kind identifies what a session runs.
type Kind string

const (
	KindRecording  Kind = "recording"
	KindLogMonitor Kind = "log_monitor"
)

// State is a session's position in its lifecycle.
//
//	starting -> running -> stopping -> completed
//	starting -> failed
//	running  -> failed | timed_out
type State string

const (
	StateStarting  State = "starting"
	StateRunning   State = "running"
	StateStopping  State = "stopping"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// Operation is the underlying long-running work a session wraps. The
// registry drives it: Start receives the assigned session id (for
// artifact naming) and must return quickly once the work is spawned;
// Wait blocks until it ends; Stop requests cooperative
// termination; Kill forces it. Finalize runs after termination while
// the session is still stopping (pull artifacts, flush sinks) and must
// release every resource the operation holds.
type Operation interface {
	Start(ctx context.Context, id string) error
	Wait() error
	Stop() error
	Kill() error
	Finalize(ctx context.Context, res *Result)
	Progress() Progress
}

// Progress is a lightweight live metric for listings.
type Progress struct {
	Entries  int    `yaml:"entries,omitempty"  json:"entries,omitempty"`
	Artifact string `yaml:"artifact,omitempty" json:"artifact,omitempty"`
}

// Config fixes a session's parameters at start time.
type Config struct {
	// TimeLimit is the registry-enforced absolute bound. It fires even
	// if the underlying process ignores its own limit. Zero means no
	// registry bound.
	TimeLimit time.Duration

	// ConflictKey names an exclusive underlying resource. Two live
	// sessions with the same non-empty key cannot coexist.
	ConflictKey string

	// Detail is kind-specific configuration echoed back in Get output.
	Detail interface{}
}

// Result is the terminal outcome of a session.
type Result struct {
	ID       string        `yaml:"id"                  json:"id"`
	Kind     Kind          `yaml:"kind"                json:"kind"`
	State    State         `yaml:"state"               json:"state"`
	Error    string        `yaml:"error,omitempty"     json:"error,omitempty"`
	Forced   bool          `yaml:"forced,omitempty"    json:"forced,omitempty"`
	Started  time.Time     `yaml:"started"             json:"started"`
	Ended    time.Time     `yaml:"ended"               json:"ended"`
	Duration time.Duration `yaml:"duration"            json:"duration"`
	Artifact string        `yaml:"artifact,omitempty"  json:"artifact,omitempty"`
	Entries  int           `yaml:"entries,omitempty"   json:"entries,omitempty"`
}

// Summary is one row of a List call.
type Summary struct {
	ID       string        `yaml:"id"                  json:"id"`
	Kind     Kind          `yaml:"kind"                json:"kind"`
	State    State         `yaml:"state"               json:"state"`
	Elapsed  time.Duration `yaml:"elapsed"             json:"elapsed"`
	Entries  int           `yaml:"entries,omitempty"   json:"entries,omitempty"`
	Artifact string        `yaml:"artifact,omitempty"  json:"artifact,omitempty"`
}

// Detail is the full Get view of a session.
type Detail struct {
	Summary `yaml:",inline" json:",inline"`

	CreatedAt time.Time   `yaml:"created_at"        json:"created_at"`
	Config    interface{} `yaml:"config,omitempty"  json:"config,omitempty"`
	Result    *Result     `yaml:"result,omitempty"  json:"result,omitempty"`
}

// Session is one registry-owned background operation. All state
// transitions happen under mu and are therefore totally ordered per
// session.
type Session struct {
	id        string
	kind      Kind
	createdAt time.Time
	config    Config
	op        Operation

	mu     sync.Mutex
	state  State
	result *Result
	acked  bool
	ackAt  time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// ID returns the session's unique identifier. Ids are never reused,
// even after the session is removed from its registry.
func (s *Session) ID() string { return s.id }

// Kind returns what the session runs.
func (s *Session) Kind() Kind { return s.kind }

// Op exposes the underlying operation, for kind-specific access such
// as a log monitor's entry buffer.
func (s *Session) Op() Operation { return s.op }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

// finish records the terminal result and state, then releases waiters.
func (s *Session) finish(state State, res *Result) {
	res.State = state
	s.mu.Lock()
	s.state = state
	s.result = res
	s.mu.Unlock()
	close(s.done)
}

// requestStop asks the session to terminate; safe to call repeatedly.
func (s *Session) requestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Session) summary(now time.Time) Summary {
	s.mu.Lock()
	state := s.state
	res := s.result
	s.mu.Unlock()

	sum := Summary{ID: s.id, Kind: s.kind, State: state}
	if res != nil {
		sum.Elapsed = res.Duration
		sum.Entries = res.Entries
		sum.Artifact = res.Artifact
	} else {
		sum.Elapsed = now.Sub(s.createdAt).Round(time.Millisecond)
		p := s.op.Progress()
		sum.Entries = p.Entries
		sum.Artifact = p.Artifact
	}
	return sum
}

func (s *Session) detail(now time.Time) Detail {
	d := Detail{
		Summary:   s.summary(now),
		CreatedAt: s.createdAt,
		Config:    s.config.Detail,
	}
	s.mu.Lock()
	d.Result = s.result
	s.mu.Unlock()
	return d
}

// run is the session's owning goroutine: it waits on the operation,
// enforces the registry time limit, and reports the terminal result.
// Exactly one run goroutine exists per session and it never outlives
// the terminal transition.
func (s *Session) run(grace time.Duration) {
	waitCh := make(chan error, 1)
	go func() { waitCh <- s.op.Wait() }()

	var limitCh <-chan time.Time
	if s.config.TimeLimit > 0 {
		t := time.NewTimer(s.config.TimeLimit)
		defer t.Stop()
		limitCh = t.C
	}

	var final State
	var waitErr error
	var forced bool
	requested := false

	select {
	case waitErr = <-waitCh:
		// Ended on its own: normal completion, the process's own time
		// limit, or a failure (device disconnect, crash).
		if waitErr != nil {
			final = StateFailed
		} else {
			final = StateCompleted
		}
	case <-limitCh:
		final = StateTimedOut
		requested = true
	case <-s.stopCh:
		final = StateCompleted
		requested = true
	}

	s.setState(StateStopping)
	if requested {
		forced = s.terminate(waitCh, grace)
	}

	res := &Result{
		ID:      s.id,
		Kind:    s.kind,
		Started: s.createdAt,
		Forced:  forced,
	}
	if !requested && waitErr != nil {
		res.Error = waitErr.Error()
	}

	// Finalization (artifact pull, sink flush) happens while the
	// session is stopping, bounded so a wedged transfer cannot hold
	// the session open forever.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	s.op.Finalize(ctx, res)
	cancel()

	res.Ended = time.Now()
	res.Duration = res.Ended.Sub(res.Started).Round(time.Millisecond)
	s.finish(final, res)
}

// terminate requests cooperative stop and escalates to kill after the
// grace period. Returns whether termination was forced.
func (s *Session) terminate(waitCh <-chan error, grace time.Duration) bool {
	_ = s.op.Stop()
	select {
	case <-waitCh:
		return false
	case <-time.After(grace):
	}

	_ = s.op.Kill()
	select {
	case <-waitCh:
	case <-time.After(grace):
		// The wait goroutine is wedged; there is nothing further to
		// reclaim. Report forced either way.
	}
	return true
}

// failStart records a spawn failure as an immediately retrievable
// terminal session.
func (s *Session) failStart(err error) {
	now := time.Now()
	s.finish(StateFailed, &Result{
		ID:      s.id,
		Kind:    s.kind,
		Error:   fmt.Sprintf("start failed: %v", err),
		Started: s.createdAt,
		Ended:   now,
	})
}

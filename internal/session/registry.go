package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options configures a Registry.
type Options struct {
	// StopGrace is how long a cooperative stop may take before the
	// registry escalates to kill, and again how long kill may take
	// before the session is abandoned as forced.
	StopGrace time.Duration

	// Retention is how long a stopped-and-acknowledged session stays
	// listable before it is pruned. A terminal session is acknowledged
	// the first time a Stop call observes it.
	Retention time.Duration
}

const (
	defaultStopGrace = 5 * time.Second
	defaultRetention = 5 * time.Minute
)

// Registry owns every live and recently finished session. It is safe
// for concurrent use; sessions of different kinds and devices proceed
// independently of one another.
type Registry struct {
	grace     time.Duration
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.StopGrace <= 0 {
		opts.StopGrace = defaultStopGrace
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	return &Registry{
		grace:     opts.StopGrace,
		retention: opts.Retention,
		sessions:  make(map[string]*Session),
	}
}

// Start registers and launches a new session. On spawn failure the
// returned error is also recorded on the session itself, so the
// failure stays retrievable by id.
func (r *Registry) Start(ctx context.Context, kind Kind, op Operation, cfg Config) (string, error) {
	s := &Session{
		id:        uuid.NewString(),
		kind:      kind,
		createdAt: time.Now(),
		config:    cfg,
		op:        op,
		state:     StateStarting,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	r.pruneLocked(time.Now())
	if cfg.ConflictKey != "" {
		for _, other := range r.sessions {
			if other.config.ConflictKey == cfg.ConflictKey && !other.State().Terminal() {
				r.mu.Unlock()
				return "", &ConflictError{Kind: kind, Key: cfg.ConflictKey, ExistingID: other.id}
			}
		}
	}
	r.sessions[s.id] = s
	r.mu.Unlock()

	if err := op.Start(ctx, s.id); err != nil {
		s.failStart(err)
		return s.id, err
	}

	s.setState(StateRunning)
	go s.run(r.grace)
	return s.id, nil
}

// Stop terminates the session and returns its result. Stopping an
// already terminal session is not an error: it returns the stored
// result unchanged. Either way the call acknowledges the session,
// starting its retention countdown.
func (r *Registry) Stop(ctx context.Context, id string) (*Result, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return r.stopOne(ctx, s)
}

// StopAll terminates every non-terminal session and returns their
// results, ordered by session start time.
func (r *Registry) StopAll(ctx context.Context) ([]*Result, error) {
	r.mu.Lock()
	var live []*Session
	for _, s := range r.sessions {
		if !s.State().Terminal() {
			live = append(live, s)
		}
	}
	r.mu.Unlock()

	sort.Slice(live, func(i, j int) bool { return live[i].createdAt.Before(live[j].createdAt) })

	results := make([]*Result, 0, len(live))
	for _, s := range live {
		res, err := r.stopOne(ctx, s)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Registry) stopOne(ctx context.Context, s *Session) (*Result, error) {
	s.requestStop()

	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	res := s.result
	if !s.acked {
		s.acked = true
		s.ackAt = time.Now()
	}
	s.mu.Unlock()
	return res, nil
}

// Wait blocks until the session reaches a terminal state and returns
// its result. Unlike Stop it does not request termination and does
// not acknowledge the session.
func (r *Registry) Wait(ctx context.Context, id string) (*Result, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	res := s.result
	s.mu.Unlock()
	return res, nil
}

// Get returns the full view of one session.
func (r *Registry) Get(id string) (Detail, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return Detail{}, &NotFoundError{ID: id}
	}
	return s.detail(time.Now()), nil
}

// Op returns the underlying operation of a session, for kind-specific
// queries against a live session.
func (r *Registry) Op(id string) (Operation, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return s.op, nil
}

// List returns a summary of every retained session, newest first.
func (r *Registry) List() []Summary {
	now := time.Now()

	r.mu.Lock()
	r.pruneLocked(now)
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.After(all[j].createdAt) })

	out := make([]Summary, len(all))
	for i, s := range all {
		out[i] = s.summary(now)
	}
	return out
}

// pruneLocked drops acknowledged sessions past the retention window.
// Called lazily on registry mutations and listings so no background
// goroutine is needed.
func (r *Registry) pruneLocked(now time.Time) {
	for id, s := range r.sessions {
		s.mu.Lock()
		expired := s.acked && now.Sub(s.ackAt) > r.retention
		s.mu.Unlock()
		if expired {
			delete(r.sessions, id)
		}
	}
}

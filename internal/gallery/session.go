package gallery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// State is the lifecycle position of a catalog session
type State int

const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrNotLoaded is returned when a snapshot is requested before any fetch
// has completed
var ErrNotLoaded = errors.New("catalog not loaded")

// Fetcher produces a complete catalog snapshot. catalog.Client and
// snapshot.File implement it.
type Fetcher interface {
	Assemble(ctx context.Context) (*models.Snapshot, error)
}

// Observer is told about every state change
type Observer interface {
	ObserveSessionState(state string, images int)
}

// Status is a point-in-time view of a session
type Status struct {
	State     string     `json:"state"`
	Images    int        `json:"images"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Session owns the current catalog snapshot. Refreshes are single-flight:
// a refresh requested while one is running waits for that one's result.
// A failed refresh discards the previous snapshot.
type Session struct {
	fetcher  Fetcher
	observer Observer
	group    singleflight.Group

	mu       sync.RWMutex
	state    State
	snapshot *models.Snapshot
	lastErr  error
}

// NewSession creates an idle session
func NewSession(fetcher Fetcher) *Session {
	return &Session{fetcher: fetcher}
}

// WithObserver attaches a state observer
func (s *Session) WithObserver(o Observer) *Session {
	s.observer = o
	return s
}

// Refresh fetches a new catalog, or joins the fetch already in flight.
// The fetch itself is not canceled when ctx is; only this caller's wait is.
func (s *Session) Refresh(ctx context.Context) (*models.Snapshot, error) {
	ch := s.group.DoChan("catalog", func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			slog.Debug("Joined in-flight catalog fetch")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Snapshot), nil
	}
}

// Ensure returns the current snapshot, fetching it first if the session
// has none yet. While a refresh runs the previous snapshot is served. A
// failed session returns its error until Refresh is called again.
func (s *Session) Ensure(ctx context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	state, snap, err := s.state, s.snapshot, s.lastErr
	s.mu.RUnlock()

	switch {
	case state == StateReady, state == StateFetching && snap != nil:
		return snap, nil
	case state == StateFailed:
		return nil, err
	default:
		return s.Refresh(ctx)
	}
}

// Snapshot returns the current snapshot without fetching
func (s *Session) Snapshot() (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.state == StateReady, s.state == StateFetching && s.snapshot != nil:
		return s.snapshot, nil
	case s.state == StateFailed:
		return nil, s.lastErr
	default:
		return nil, ErrNotLoaded
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status summarizes the session for display
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{State: s.state.String()}
	if s.snapshot != nil {
		fetched := s.snapshot.FetchedAt
		st.FetchedAt = &fetched
		st.Images = len(s.snapshot.Images)
		st.Truncated = s.snapshot.Truncated
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

func (s *Session) fetch(ctx context.Context) (*models.Snapshot, error) {
	s.transition(StateFetching, s.current(), nil)

	snap, err := s.fetcher.Assemble(ctx)
	if err != nil {
		slog.Error("Catalog fetch failed", "error", err)
		s.transition(StateFailed, nil, err)
		return nil, err
	}

	s.transition(StateReady, snap, nil)
	return snap, nil
}

func (s *Session) current() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) transition(state State, snap *models.Snapshot, err error) {
	s.mu.Lock()
	s.state = state
	s.snapshot = snap
	s.lastErr = err
	images := 0
	if snap != nil {
		images = len(snap.Images)
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveSessionState(state.String(), images)
	}
}

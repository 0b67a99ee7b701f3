package geolocate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Coords is a resolved user position.
type Coords struct {
	Latitude  float64
	Longitude float64
}

// State is the observable geolocation state. Once settled exactly one of
// Coords or Err is set and Loading is false.
type State struct {
	Coords  *Coords
	Loading bool
	Err     string
}

// Options tune a location request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// ErrorCode classifies a failed location request.
type ErrorCode int

const (
	PermissionDenied ErrorCode = iota + 1
	PositionUnavailable
	Timeout
)

// PositionError is returned by a Locator that could not produce a position.
type PositionError struct {
	Code ErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return messageFor(e.Code)
}

func (e *PositionError) Unwrap() error { return e.Err }

// Locator is the platform capability that resolves the user's position.
type Locator interface {
	Locate(ctx context.Context, opts Options) (Coords, error)
}

const (
	msgPermissionDenied    = "User denied geolocation request."
	msgPositionUnavailable = "Location information is unavailable."
	msgUnknown             = "An unknown error occurred."
	msgNotSupported        = "Geolocation is not supported on this system."
)

func messageFor(code ErrorCode) string {
	switch code {
	case PermissionDenied:
		return msgPermissionDenied
	case PositionUnavailable:
		return msgPositionUnavailable
	default:
		return msgUnknown
	}
}

// Source owns the one location request shared by every screen.
type Source struct {
	locator Locator
	opts    Options

	once  sync.Once
	mu    sync.RWMutex
	state State
}

// NewSource creates a source. A nil locator means the capability is absent
// and the source is settled immediately with an error.
func NewSource(locator Locator, opts Options) *Source {
	s := &Source{locator: locator, opts: opts}
	if locator == nil {
		s.state = State{Err: msgNotSupported}
	} else {
		s.state = State{Loading: true}
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Source) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Coords != nil {
		c := *st.Coords
		st.Coords = &c
	}
	return st
}

// Acquire issues the location request on first call and blocks until it
// settles. Later calls return the settled state without a new request.
func (s *Source) Acquire(ctx context.Context) State {
	s.once.Do(func() {
		if s.locator == nil {
			return
		}
		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()
		}

		coords, err := s.locator.Locate(ctx, s.opts)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.state = State{Err: errorMessage(err)}
			return
		}
		s.state = State{Coords: &coords}
	})
	return s.State()
}

func errorMessage(err error) string {
	var pe *PositionError
	if errors.As(err, &pe) {
		return messageFor(pe.Code)
	}
	return msgUnknown
}

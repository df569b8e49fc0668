// Package validation checks a username candidate against the local syntax rules and, after
// a debounce, against the server's uniqueness lookup.
package validation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/dialog"
	applog "github.com/janisto/account-settings/internal/platform/logging"
	"github.com/janisto/account-settings/internal/username"
)

// DefaultDelay is the quiet period after the last keystroke before the remote check runs.
const DefaultDelay = 400 * time.Millisecond

// Messages shown for each invalid outcome.
const (
	MsgRequired    = "Username is required"
	MsgTooShort    = "Username must be at least 3 characters"
	MsgTooLong     = "Username must be at most 40 characters"
	MsgCharset     = "Username can only contain letters, numbers, underscores and hyphens"
	MsgTaken       = "Username is already taken"
	MsgCheckFailed = "Couldn't check username availability. Please try again."
)

// State is the outcome for the current candidate. Pending is true while a remote check is
// scheduled or running; Invalid and Message stay at their zero values until it completes.
type State struct {
	Candidate string
	Invalid   bool
	Message   string
	Pending   bool
	Err       error
}

// Timer is the subset of *time.Timer the service needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Service.
type Option func(*Service)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Service) {
		s.delay = d
	}
}

// WithAfterFunc replaces the timer source (tests drive the debounce by hand).
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Service) {
		s.afterFunc = f
	}
}

// WithCurrent sets the user's existing username, which is accepted without a remote check.
func WithCurrent(name string) Option {
	return func(s *Service) {
		s.current = name
	}
}

// WithOnChange registers f to receive every state change. f runs without the service lock.
func WithOnChange(f func(State)) Option {
	return func(s *Service) {
		s.onChange = f
	}
}

// Service validates one dialog's username field.
type Service struct {
	ctx       context.Context
	checker   dialog.UsernameChecker
	delay     time.Duration
	afterFunc AfterFunc
	current   string
	onChange  func(State)

	mu     sync.Mutex
	state  State
	seq    uint64
	timer  Timer
	cancel context.CancelFunc
	closed bool
}

// New creates a Service. ctx bounds every remote check; cancelling it stops the service.
func New(ctx context.Context, checker dialog.UsernameChecker, opts ...Option) *Service {
	s := &Service{
		ctx:     ctx,
		checker: checker,
		delay:   DefaultDelay,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCandidate records value as the current candidate and restarts the debounce. Any check
// scheduled or running for an earlier candidate is abandoned.
func (s *Service) SetCandidate(value string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.abortLocked()

	candidate := strings.TrimSpace(value)
	st := State{Candidate: candidate}
	switch err := username.Validate(value); {
	case err != nil:
		st.Invalid = true
		st.Message = localMessage(err)
		st.Err = err
	case s.current != "" && username.Equal(value, s.current):
		// The user's own username needs no lookup.
	default:
		st.Pending = true
		seq := s.seq
		s.timer = s.afterFunc(s.delay, func() { s.check(seq, candidate) })
	}
	s.state = st
	s.mu.Unlock()

	s.emit(st)
}

func (s *Service) check(seq uint64, candidate string) {
	s.mu.Lock()
	if seq != s.seq || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.timer = nil
	s.mu.Unlock()

	avail, err := s.checker.CheckAvailable(ctx, candidate)
	cancel()

	s.mu.Lock()
	if seq != s.seq || s.closed {
		s.mu.Unlock()
		applog.LogDebug(s.ctx, "discarding stale username check", zap.String("candidate", candidate))
		return
	}
	s.cancel = nil
	st := State{Candidate: candidate}
	switch {
	case err != nil:
		st.Invalid = true
		st.Message = MsgCheckFailed
		st.Err = errors.Join(dialog.ErrUsernameCheckFailed, err)
		applog.LogWarn(s.ctx, "username check failed", zap.Error(err))
	case !avail.Available:
		st.Invalid = true
		st.Message = MsgTaken
		st.Err = dialog.ErrUsernameTaken
	}
	s.state = st
	s.mu.Unlock()

	s.emit(st)
}

// abortLocked stops the pending timer and cancels a running check.
func (s *Service) abortLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Service) emit(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// State returns the current validation state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invalid reports whether the current candidate failed validation.
func (s *Service) Invalid() bool {
	return s.State().Invalid
}

// Message is the user-facing reason for Invalid, or "".
func (s *Service) Message() string {
	return s.State().Message
}

// Stop abandons any scheduled or running check. Later calls to SetCandidate are ignored.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	s.abortLocked()
}

func localMessage(err error) string {
	switch {
	case errors.Is(err, username.ErrEmpty):
		return MsgRequired
	case errors.Is(err, username.ErrTooShort):
		return MsgTooShort
	case errors.Is(err, username.ErrTooLong):
		return MsgTooLong
	default:
		return MsgCharset
	}
}

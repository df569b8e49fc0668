// Package dialogtest provides in-memory collaborators for exercising the dialogs.
package dialogtest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/janisto/account-settings/internal/dialog"
	"github.com/janisto/account-settings/internal/dialog/validation"
)

// Cache is a UserCache holding a fixed snapshot. Refetch applies Next, when set.
type Cache struct {
	mu        sync.Mutex
	user      *dialog.User
	Next      func(*dialog.User) *dialog.User
	Err       error
	refetches int
}

// NewCache creates a cache seeded with u.
func NewCache(u *dialog.User) *Cache {
	return &Cache{user: u}
}

func (c *Cache) Current() *dialog.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Cache) Refetch(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refetches++
	if c.Err != nil {
		return c.Err
	}
	if c.Next != nil {
		c.user = c.Next(c.user)
	}
	return nil
}

// Refetches reports how many times Refetch ran.
func (c *Cache) Refetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refetches
}

// Notifier records notifications.
type Notifier struct {
	mu        sync.Mutex
	successes []string
	errs      []string
}

func (n *Notifier) NotifySuccess(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *Notifier) NotifyError(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, msg)
}

// Successes returns the success messages in order.
func (n *Notifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.successes)
}

// Errors returns the error messages in order.
func (n *Notifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.errs)
}

// Saver records every save. Block, when set, is received from before returning.
type Saver struct {
	mu       sync.Mutex
	details  []dialog.DetailsPayload
	settings [][]string
	Err      error
	Block    chan struct{}
	Entered  chan struct{}
}

func (s *Saver) enter() error {
	if s.Entered != nil {
		s.Entered <- struct{}{}
	}
	if s.Block != nil {
		<-s.Block
	}
	return s.Err
}

func (s *Saver) SaveDetails(_ context.Context, p dialog.DetailsPayload) error {
	s.mu.Lock()
	s.details = append(s.details, p)
	s.mu.Unlock()
	return s.enter()
}

func (s *Saver) SaveEmailSettings(_ context.Context, categories []string) error {
	s.mu.Lock()
	s.settings = append(s.settings, slices.Clone(categories))
	s.mu.Unlock()
	return s.enter()
}

// Details returns the recorded profile saves.
func (s *Saver) Details() []dialog.DetailsPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.details)
}

// Settings returns the recorded preference saves.
func (s *Saver) Settings() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.settings)
}

// Uploader completes uploads when the test sends on Results.
type Uploader struct {
	Started chan string
	Results chan UploadResult
}

// UploadResult is the outcome delivered to a pending upload.
type UploadResult struct {
	URL string
	Err error
}

// NewUploader creates a gated uploader.
func NewUploader() *Uploader {
	return &Uploader{
		Started: make(chan string, 4),
		Results: make(chan UploadResult, 4),
	}
}

func (u *Uploader) Upload(ctx context.Context, file dialog.File, _ string) (string, error) {
	u.Started <- file.Name
	select {
	case r := <-u.Results:
		return r.URL, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Checker answers availability from Taken; Err fails every lookup.
type Checker struct {
	mu    sync.Mutex
	Taken map[string]bool
	Err   error
	calls []string
}

func (c *Checker) CheckAvailable(_ context.Context, candidate string) (dialog.Availability, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, candidate)
	if c.Err != nil {
		return dialog.Availability{}, c.Err
	}
	if c.Taken[candidate] {
		return dialog.Availability{Reason: "taken"}, nil
	}
	return dialog.Availability{Available: true}, nil
}

// Calls returns the looked-up candidates in order.
func (c *Checker) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// Clock is a manual debounce timer source.
type Clock struct {
	mu      sync.Mutex
	pending []*timer
}

type timer struct {
	c       *Clock
	f       func()
	stopped bool
}

func (t *timer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// AfterFunc schedules f until Fire.
func (c *Clock) AfterFunc(_ time.Duration, f func()) validation.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{c: c, f: f}
	c.pending = append(c.pending, t)
	return t
}

// Fire runs all live timers synchronously.
func (c *Clock) Fire() {
	c.mu.Lock()
	var live []*timer
	for _, t := range c.pending {
		if !t.stopped {
			t.stopped = true
			live = append(live, t)
		}
	}
	c.pending = nil
	c.mu.Unlock()
	for _, t := range live {
		t.f()
	}
}

var (
	_ dialog.UserCache          = (*Cache)(nil)
	_ dialog.Notifier           = (*Notifier)(nil)
	_ dialog.DetailsSaver       = (*Saver)(nil)
	_ dialog.EmailSettingsSaver = (*Saver)(nil)
	_ dialog.Uploader           = (*Uploader)(nil)
	_ dialog.UsernameChecker    = (*Checker)(nil)
)

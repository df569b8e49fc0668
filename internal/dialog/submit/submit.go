// Package submit drives a dialog from editing through one save to closed.
package submit

import (
	"context"
	"fmt"
	"sync"

	"github.com/janisto/account-settings/internal/dialog"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// Phase of the dialog.
type Phase int

const (
	Editing Phase = iota
	Submitting
	Closed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	default:
		return "editing"
	}
}

// MsgRefreshFailed is shown when a save succeeded but the user could not be reloaded.
const MsgRefreshFailed = "Your changes were saved but could not be reloaded. Please try again."

// SaveFunc issues the save request for a payload captured by Prepare.
type SaveFunc func(ctx context.Context) error

// PrepareFunc runs with the controller's lock held. It returns an error to refuse the
// submission without any state change, or the save to run.
type PrepareFunc func() (SaveFunc, error)

// Controller serializes submissions for one dialog.
type Controller struct {
	ctx      context.Context
	cache    dialog.UserCache
	notifier dialog.Notifier
	messages dialog.Messages

	mu    sync.Mutex
	phase Phase
	done  chan struct{}
}

// New creates a controller in Editing. ctx carries the dialog's logger.
func New(ctx context.Context, cache dialog.UserCache, notifier dialog.Notifier, messages dialog.Messages) *Controller {
	return &Controller{
		ctx:      ctx,
		cache:    cache,
		notifier: notifier,
		messages: messages,
		done:     make(chan struct{}),
	}
}

// Editable runs fn with the lock held if the dialog is Editing. Controls are disabled
// while Submitting, so edits are refused then.
func (c *Controller) Editable(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	return fn()
}

func (c *Controller) editableLocked() error {
	switch c.phase {
	case Submitting:
		return dialog.ErrSubmitInProgress
	case Closed:
		return dialog.ErrClosed
	}
	return nil
}

// Submit prepares and runs one save. On success it waits for the user cache to refetch,
// notifies and closes the dialog. On failure it notifies and returns to Editing with all
// dialog state untouched.
func (c *Controller) Submit(ctx context.Context, prepare PrepareFunc) error {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	save, err := prepare()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.phase = Submitting
	c.mu.Unlock()

	applog.LogDebug(c.ctx, "submitting")

	if err := save(ctx); err != nil {
		c.fail(c.messages.Failure)
		applog.LogError(c.ctx, "save failed", err)
		return fmt.Errorf("%w: %w", dialog.ErrSaveFailed, err)
	}

	if err := c.cache.Refetch(ctx); err != nil {
		c.fail(MsgRefreshFailed)
		applog.LogError(c.ctx, "refetch after save failed", err)
		return fmt.Errorf("%w: refetch: %w", dialog.ErrSaveFailed, err)
	}

	c.notifier.NotifySuccess(c.ctx, c.messages.Success)

	c.mu.Lock()
	c.phase = Closed
	close(c.done)
	c.mu.Unlock()

	applog.LogInfo(c.ctx, "dialog closed after save")
	return nil
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.phase = Editing
	c.mu.Unlock()
	c.notifier.NotifyError(c.ctx, msg)
}

// Close dismisses the dialog. It is refused while Submitting.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case Submitting:
		return dialog.ErrSubmitInProgress
	case Closed:
		return nil
	}
	c.phase = Closed
	close(c.done)
	return nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Done is closed once the dialog reaches Closed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Package upload runs at most one media upload at a time for a dialog.
package upload

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/dialog"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// Phase of the upload slot.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Reset
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Reset:
		return "reset"
	default:
		return "idle"
	}
}

// State of the controller. URL is set only when Phase is Succeeded.
type State struct {
	Phase Phase
	URL   string
}

// Hooks observe settled uploads.
type Hooks struct {
	// Applied runs with the controller's lock held whenever an upload succeeds or the slot
	// is reset, so observers see the phase change and their own update together. It must
	// not call back into the controller.
	Applied func(State)
	// Failed runs without the lock after an upload fails, before Wait returns.
	Failed func(error)
}

// Controller owns a single upload slot. A new Start after a settled upload supersedes its
// result; Start while InFlight is refused.
type Controller struct {
	ctx      context.Context
	uploader dialog.Uploader
	folder   string
	hooks    Hooks

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	settled chan struct{}
}

// New creates a controller uploading into folder. ctx bounds every upload.
func New(ctx context.Context, uploader dialog.Uploader, folder string, hooks Hooks) *Controller {
	settled := make(chan struct{})
	close(settled)
	return &Controller{
		ctx:      ctx,
		uploader: uploader,
		folder:   folder,
		hooks:    hooks,
		settled:  settled,
	}
}

// Start begins uploading file in the background.
func (c *Controller) Start(file dialog.File) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == InFlight {
		return dialog.ErrUploadInFlight
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.state = State{Phase: InFlight}
	c.settled = make(chan struct{})

	applog.LogDebug(c.ctx, "upload started", zap.String("file", file.Name), zap.String("folder", c.folder))
	go c.run(ctx, gen, file)
	return nil
}

func (c *Controller) run(ctx context.Context, gen uint64, file dialog.File) {
	url, err := c.uploader.Upload(ctx, file, c.folder)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		applog.LogDebug(c.ctx, "discarding superseded upload", zap.String("file", file.Name))
		return
	}
	c.cancel()
	c.cancel = nil
	if err != nil {
		c.state = State{Phase: Idle}
		settled := c.settled
		c.mu.Unlock()

		err = fmt.Errorf("%w: %w", dialog.ErrUploadFailed, err)
		applog.LogWarn(c.ctx, "upload failed", zap.Error(err))
		if c.hooks.Failed != nil {
			c.hooks.Failed(err)
		}
		close(settled)
		return
	}
	c.state = State{Phase: Succeeded, URL: url}
	if c.hooks.Applied != nil {
		c.hooks.Applied(c.state)
	}
	close(c.settled)
	c.mu.Unlock()
}

// Reset clears the slot ("remove photo") and supersedes an in-flight upload.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state.Phase == InFlight {
		close(c.settled)
	}
	c.state = State{Phase: Reset}
	if c.hooks.Applied != nil {
		c.hooks.Applied(c.state)
	}
}

// Abandon cancels an in-flight upload without touching observers. Used on dialog close.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state.Phase == InFlight {
		close(c.settled)
		c.state = State{Phase: Idle}
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether an upload is running; submission is disabled while it is.
func (c *Controller) InFlight() bool {
	return c.State().Phase == InFlight
}

// Wait blocks until no upload is in flight and its hooks have run, or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

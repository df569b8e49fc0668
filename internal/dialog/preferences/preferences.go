// Package preferences is the email preferences dialog: toggle groups gated by the user's
// sponsor and talent eligibility, saved as one category list.
package preferences

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/dialog"
	"github.com/janisto/account-settings/internal/dialog/submit"
	"github.com/janisto/account-settings/internal/emailpref"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// Messages for the save outcome.
var Messages = dialog.Messages{
	Success: "Email preferences updated",
	Failure: "Failed to update email preferences.",
}

// Deps are the collaborators the dialog drives.
type Deps struct {
	Cache    dialog.UserCache
	Saver    dialog.EmailSettingsSaver
	Notifier dialog.Notifier
}

// Dialog is one open preferences dialog.
type Dialog struct {
	ctx    context.Context
	cancel context.CancelFunc
	saver  dialog.EmailSettingsSaver
	elig   emailpref.Eligibility
	submit *submit.Controller

	mu       sync.Mutex
	selected []string
}

// Open seeds the selection from the cached user's subscriptions, keeping only the categories
// the user may manage.
func Open(ctx context.Context, deps Deps) (*Dialog, error) {
	u := deps.Cache.Current()
	if u == nil {
		return nil, dialog.ErrNoUser
	}
	elig := emailpref.Eligibility{
		Sponsor: u.CurrentSponsorID != "",
		Talent:  u.IsTalentFilled,
	}

	ctx, cancel := context.WithCancel(dialog.Scope(ctx, "preferences"))
	d := &Dialog{
		ctx:    ctx,
		cancel: cancel,
		saver:  deps.Saver,
		elig:   elig,
		submit: submit.New(ctx, deps.Cache, deps.Notifier, Messages),
	}
	for _, id := range u.EmailSettings {
		if emailpref.Visible(elig, id) && !slices.Contains(d.selected, id) {
			d.selected = append(d.selected, id)
		}
	}

	applog.LogInfo(ctx, "dialog opened",
		zap.Bool("sponsor", elig.Sponsor),
		zap.Bool("talent", elig.Talent),
		zap.Int("subscribed", len(d.selected)),
	)
	return d, nil
}

// Groups returns the toggle groups shown to this user, in display order.
func (d *Dialog) Groups() []emailpref.Group {
	return emailpref.VisibleGroups(d.elig)
}

// Selected returns the checked categories in the order they were checked.
func (d *Dialog) Selected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.selected)
}

// IsSelected reports whether id is checked.
func (d *Dialog) IsSelected(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Contains(d.selected, id)
}

// Set checks or unchecks id.
func (d *Dialog) Set(id string, on bool) error {
	if !emailpref.Visible(d.elig, id) {
		return fmt.Errorf("%w: %s", dialog.ErrCategoryNotVisible, id)
	}
	return d.submit.Editable(func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.setLocked(id, on)
		return nil
	})
}

// Toggle flips id.
func (d *Dialog) Toggle(id string) error {
	if !emailpref.Visible(d.elig, id) {
		return fmt.Errorf("%w: %s", dialog.ErrCategoryNotVisible, id)
	}
	return d.submit.Editable(func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.setLocked(id, !slices.Contains(d.selected, id))
		return nil
	})
}

func (d *Dialog) setLocked(id string, on bool) {
	i := slices.Index(d.selected, id)
	switch {
	case on && i < 0:
		d.selected = append(d.selected, id)
	case !on && i >= 0:
		d.selected = slices.Delete(d.selected, i, i+1)
	}
}

// Submit saves the selection, restricted to the categories visible to the user.
func (d *Dialog) Submit(ctx context.Context) error {
	err := d.submit.Submit(ctx, func() (submit.SaveFunc, error) {
		d.mu.Lock()
		payload := make([]string, 0, len(d.selected))
		for _, id := range d.selected {
			if emailpref.Visible(d.elig, id) {
				payload = append(payload, id)
			}
		}
		d.mu.Unlock()

		applog.LogInfo(d.ctx, "email preferences confirmed", zap.Strings("categories", payload))
		return func(ctx context.Context) error {
			return d.saver.SaveEmailSettings(ctx, payload)
		}, nil
	})
	if err == nil {
		d.cancel()
	}
	return err
}

// Close dismisses the dialog. Refused while Submitting.
func (d *Dialog) Close() error {
	if err := d.submit.Close(); err != nil {
		return err
	}
	d.cancel()
	return nil
}

// Phase returns the dialog phase.
func (d *Dialog) Phase() submit.Phase {
	return d.submit.Phase()
}

// Done is closed when the dialog closes.
func (d *Dialog) Done() <-chan struct{} {
	return d.submit.Done()
}

// Package profile is the profile completion dialog: name, username and avatar, saved in one
// request once the username is valid and no upload is running.
package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/dialog"
	"github.com/janisto/account-settings/internal/dialog/submit"
	"github.com/janisto/account-settings/internal/dialog/upload"
	"github.com/janisto/account-settings/internal/dialog/validation"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// Folder is where profile pictures are uploaded.
const Folder = "earn-pfp"

// Messages for the save outcome.
var Messages = dialog.Messages{
	Success: "Profile updated successfully",
	Failure: "Failed to update profile. Please try again.",
}

// MsgUploadFailed is shown when a picked photo could not be stored.
const MsgUploadFailed = "Failed to upload photo. Please try again."

// Draft is the editable form state.
type Draft struct {
	FirstName string
	LastName  string
	Username  string
	Photo     PhotoSource
}

// Deps are the collaborators the dialog drives.
type Deps struct {
	Cache    dialog.UserCache
	Checker  dialog.UsernameChecker
	Uploader dialog.Uploader
	Saver    dialog.DetailsSaver
	Notifier dialog.Notifier
}

// Config tunes the dialog. Zero values select the defaults.
type Config struct {
	Folder        string
	ExternalHosts []string
	Debounce      time.Duration
	AfterFunc     validation.AfterFunc
}

// Dialog is one open profile dialog. Lock order: submit controller, then upload, then
// draft; validation is only taken on its own.
type Dialog struct {
	ctx      context.Context
	cancel   context.CancelFunc
	saver    dialog.DetailsSaver
	notifier dialog.Notifier

	submit     *submit.Controller
	validation *validation.Service
	upload     *upload.Controller

	mu    sync.Mutex
	draft Draft
}

// Open seeds a dialog from the cached user. ctx bounds every background operation.
func Open(ctx context.Context, deps Deps, cfg Config) (*Dialog, error) {
	u := deps.Cache.Current()
	if u == nil {
		return nil, dialog.ErrNoUser
	}
	if cfg.Folder == "" {
		cfg.Folder = Folder
	}
	if cfg.ExternalHosts == nil {
		cfg.ExternalHosts = DefaultExternalHosts
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = validation.DefaultDelay
	}

	ctx, cancel := context.WithCancel(dialog.Scope(ctx, "profile"))
	d := &Dialog{
		ctx:      ctx,
		cancel:   cancel,
		saver:    deps.Saver,
		notifier: deps.Notifier,
		draft: Draft{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Username:  u.Username,
			Photo:     ClassifyPhoto(u.Photo, cfg.ExternalHosts),
		},
	}

	d.submit = submit.New(ctx, deps.Cache, deps.Notifier, Messages)

	vopts := []validation.Option{
		validation.WithDelay(cfg.Debounce),
		validation.WithCurrent(u.Username),
	}
	if cfg.AfterFunc != nil {
		vopts = append(vopts, validation.WithAfterFunc(cfg.AfterFunc))
	}
	d.validation = validation.New(ctx, deps.Checker, vopts...)

	d.upload = upload.New(ctx, deps.Uploader, cfg.Folder, upload.Hooks{
		Applied: d.applyUpload,
		Failed: func(error) {
			d.notifier.NotifyError(d.ctx, MsgUploadFailed)
		},
	})

	applog.LogInfo(ctx, "dialog opened", zap.String("photo_source", d.draft.Photo.Kind.String()))
	return d, nil
}

// applyUpload mirrors a settled upload into the draft. Called with the upload lock held.
func (d *Dialog) applyUpload(s upload.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch s.Phase {
	case upload.Succeeded:
		d.draft.Photo = PhotoSource{Kind: PhotoUploaded, URL: s.URL}
	case upload.Reset:
		d.draft.Photo = PhotoSource{}
	}
}

func (d *Dialog) edit(fn func(*Draft)) error {
	return d.submit.Editable(func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		fn(&d.draft)
		return nil
	})
}

// SetFirstName updates the first name.
func (d *Dialog) SetFirstName(v string) error {
	return d.edit(func(dr *Draft) { dr.FirstName = v })
}

// SetLastName updates the last name.
func (d *Dialog) SetLastName(v string) error {
	return d.edit(func(dr *Draft) { dr.LastName = v })
}

// SetUsername updates the username and restarts its validation.
func (d *Dialog) SetUsername(v string) error {
	return d.submit.Editable(func() error {
		d.mu.Lock()
		d.draft.Username = v
		d.mu.Unlock()
		d.validation.SetCandidate(v)
		return nil
	})
}

// StartUpload begins uploading a new avatar.
func (d *Dialog) StartUpload(file dialog.File) error {
	return d.submit.Editable(func() error {
		return d.upload.Start(file)
	})
}

// RemovePhoto clears the avatar, superseding any running upload.
func (d *Dialog) RemovePhoto() error {
	return d.submit.Editable(func() error {
		d.upload.Reset()
		return nil
	})
}

// Submit saves the draft. It is refused without any request while a required field is
// empty, the username is invalid or an upload is running.
func (d *Dialog) Submit(ctx context.Context) error {
	err := d.submit.Submit(ctx, func() (submit.SaveFunc, error) {
		if d.upload.InFlight() {
			return nil, dialog.ErrUploadInFlight
		}
		if st := d.validation.State(); st.Invalid {
			return nil, errors.Join(dialog.ErrValidationInvalid, st.Err)
		}

		d.mu.Lock()
		payload, err := payloadFrom(d.draft)
		d.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return d.saver.SaveDetails(ctx, payload)
		}, nil
	})
	if err == nil {
		d.release()
	}
	return err
}

func payloadFrom(dr Draft) (dialog.DetailsPayload, error) {
	p := dialog.DetailsPayload{
		FirstName: strings.TrimSpace(dr.FirstName),
		LastName:  strings.TrimSpace(dr.LastName),
		Username:  strings.TrimSpace(dr.Username),
		Photo:     dr.Photo.URL,
	}
	var missing []string
	if p.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if p.LastName == "" {
		missing = append(missing, "lastName")
	}
	if p.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return p, &RequiredError{Fields: missing}
	}
	return p, nil
}

// RequiredError lists the empty required fields.
type RequiredError struct {
	Fields []string
}

func (e *RequiredError) Error() string {
	return "required: " + strings.Join(e.Fields, ", ")
}

func (e *RequiredError) Unwrap() error {
	return dialog.ErrRequired
}

// Close dismisses the dialog, abandoning background work. Refused while Submitting.
func (d *Dialog) Close() error {
	if err := d.submit.Close(); err != nil {
		return err
	}
	d.release()
	return nil
}

func (d *Dialog) release() {
	d.validation.Stop()
	d.upload.Abandon()
	d.cancel()
}

// Draft returns a copy of the form state.
func (d *Dialog) Draft() Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// Validation returns the username validation state.
func (d *Dialog) Validation() validation.State {
	return d.validation.State()
}

// Upload returns the avatar upload state.
func (d *Dialog) Upload() upload.State {
	return d.upload.State()
}

// WaitUpload blocks until no upload is running.
func (d *Dialog) WaitUpload(ctx context.Context) error {
	return d.upload.Wait(ctx)
}

// Phase returns the dialog phase.
func (d *Dialog) Phase() submit.Phase {
	return d.submit.Phase()
}

// Done is closed when the dialog closes.
func (d *Dialog) Done() <-chan struct{} {
	return d.submit.Done()
}

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/janisto/account-settings/internal/dialog"
	"github.com/janisto/account-settings/internal/dialog/profile"
	"github.com/janisto/account-settings/internal/dialog/upload"
	"github.com/janisto/account-settings/internal/dialog/validation"
)

const (
	photoKeep   = "Keep current photo"
	photoUpload = "Upload a new photo"
	photoRemove = "Remove photo"
)

func (a *app) profile(ctx context.Context) error {
	d, err := profile.Open(ctx, profile.Deps{
		Cache:    a.cache,
		Checker:  a.api,
		Uploader: a.api,
		Saver:    a.api,
		Notifier: a.notifier(),
	}, profile.Config{Debounce: a.debounce})
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	for {
		if err := a.editProfile(ctx, d); err != nil {
			return err
		}
		save, err := a.prompt.Confirm(ctx, "Save changes?", true)
		if err != nil || !save {
			return err
		}
		err = d.Submit(ctx)
		if err == nil {
			return nil
		}
		again, perr := a.retry(ctx, err)
		if perr != nil {
			return perr
		}
		if !again {
			return err
		}
	}
}

func (a *app) editProfile(ctx context.Context, d *profile.Dialog) error {
	draft := d.Draft()

	first, err := a.prompt.Input(ctx, "First name", draft.FirstName)
	if err != nil {
		return err
	}
	if err := d.SetFirstName(first); err != nil {
		return err
	}
	last, err := a.prompt.Input(ctx, "Last name", draft.LastName)
	if err != nil {
		return err
	}
	if err := d.SetLastName(last); err != nil {
		return err
	}
	if err := a.askUsername(ctx, d); err != nil {
		return err
	}
	return a.askPhoto(ctx, d)
}

func (a *app) askUsername(ctx context.Context, d *profile.Dialog) error {
	for {
		name, err := a.prompt.Input(ctx, "Username", d.Draft().Username)
		if err != nil {
			return err
		}
		if err := d.SetUsername(name); err != nil {
			return err
		}
		st, err := settleValidation(ctx, d)
		if err != nil {
			return err
		}
		if !st.Invalid {
			return nil
		}
		a.printf("✗ %s", st.Message)
	}
}

// settleValidation waits for the debounced availability check to complete.
func settleValidation(ctx context.Context, d *profile.Dialog) (validation.State, error) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		st := d.Validation()
		if !st.Pending {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *app) askPhoto(ctx context.Context, d *profile.Dialog) error {
	current := d.Draft().Photo
	options := []string{photoKeep, photoUpload}
	if current.Kind != profile.PhotoNone {
		a.printf("Current photo: %s", current.URL)
		options = append(options, photoRemove)
	}
	choice, err := a.prompt.Select(ctx, "Profile photo", options, photoKeep)
	if err != nil {
		return err
	}

	switch choice {
	case photoUpload:
		path, err := a.prompt.Input(ctx, "Path to image", "")
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			a.printf("✗ %s", err)
			return nil
		}
		defer func() { _ = f.Close() }()

		if err := d.StartUpload(dialog.File{Name: filepath.Base(path), Body: f}); err != nil {
			return err
		}
		a.printf("Uploading %s...", filepath.Base(path))
		if err := d.WaitUpload(ctx); err != nil {
			return err
		}
		if st := d.Upload(); st.Phase == upload.Succeeded {
			a.printf("✓ Photo uploaded")
		}
	case photoRemove:
		return d.RemovePhoto()
	}
	return nil
}

func reason(err error) string {
	var req *profile.RequiredError
	switch {
	case errors.As(err, &req):
		return "Please fill in: " + joinFields(req.Fields)
	case errors.Is(err, dialog.ErrUsernameTaken):
		return validation.MsgTaken
	case errors.Is(err, dialog.ErrUsernameCheckFailed):
		return validation.MsgCheckFailed
	case errors.Is(err, dialog.ErrValidationInvalid):
		return "Please fix the username"
	case errors.Is(err, dialog.ErrSaveFailed):
		return "Your changes were not saved"
	default:
		return err.Error()
	}
}

var fieldLabels = map[string]string{
	"firstName": "first name",
	"lastName":  "last name",
	"username":  "username",
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		if l, ok := fieldLabels[f]; ok {
			f = l
		}
		out += f
	}
	return out
}

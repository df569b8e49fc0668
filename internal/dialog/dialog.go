// Package dialog holds the types shared by the account settings dialogs: the user snapshot
// they are seeded from, the collaborators they drive and the error taxonomy they report.
package dialog

import (
	"context"
	"errors"
	"io"
)

// Errors reported by the dialogs. Failures are also turned into local state and a
// notification; the returned error is for callers that need to branch on the outcome.
var (
	ErrRequired            = errors.New("required field missing")
	ErrUsernameTaken       = errors.New("username is taken")
	ErrUsernameCheckFailed = errors.New("username availability check failed")
	ErrUploadFailed        = errors.New("upload failed")
	ErrSaveFailed          = errors.New("save failed")

	ErrUploadInFlight    = errors.New("an upload is already in progress")
	ErrValidationInvalid = errors.New("form has validation errors")
	ErrSubmitInProgress  = errors.New("submission in progress")
	ErrClosed            = errors.New("dialog closed")

	ErrNoUser             = errors.New("no signed-in user")
	ErrCategoryNotVisible = errors.New("email category not available")
)

// User is the read-only account snapshot the dialogs are seeded from.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Username         string
	Photo            string
	CurrentSponsorID string
	IsTalentFilled   bool
	EmailSettings    []string
}

// Availability is the answer to a username uniqueness lookup.
type Availability struct {
	Available bool
	Reason    string
}

// File is a picked file handed to an Uploader.
type File struct {
	Name string
	Body io.Reader
}

// DetailsPayload is the body of a profile save. An empty Photo removes the avatar.
type DetailsPayload struct {
	FirstName string
	LastName  string
	Username  string
	Photo     string
}

// UserCache owns the current user snapshot. Current is nil before sign-in.
type UserCache interface {
	Current() *User
	Refetch(ctx context.Context) error
}

// Uploader stores a file in folder and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file File, folder string) (string, error)
}

// UsernameChecker looks up whether a username can be claimed by the signed-in user.
type UsernameChecker interface {
	CheckAvailable(ctx context.Context, candidate string) (Availability, error)
}

// DetailsSaver persists a profile save.
type DetailsSaver interface {
	SaveDetails(ctx context.Context, payload DetailsPayload) error
}

// EmailSettingsSaver persists an email preferences save.
type EmailSettingsSaver interface {
	SaveEmailSettings(ctx context.Context, categories []string) error
}

// Notifier presents transient success and error messages.
type Notifier interface {
	NotifySuccess(ctx context.Context, msg string)
	NotifyError(ctx context.Context, msg string)
}

// Messages are the notifications a dialog shows for its save outcome.
type Messages struct {
	Success string
	Failure string
}

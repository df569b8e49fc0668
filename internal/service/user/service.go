package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/janisto/account-settings/internal/emailpref"
	"github.com/janisto/account-settings/internal/username"
)

// Service errors
var (
	ErrNotFound        = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidName     = errors.New("first and last name are required")
	ErrInvalidCategory = errors.New("unknown email category")
)

// User is the stored account as seen by the settings dialogs.
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
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Eligibility derives which email preference groups the user may manage.
func (u *User) Eligibility() emailpref.Eligibility {
	return emailpref.Eligibility{
		Sponsor: u.CurrentSponsorID != "",
		Talent:  u.IsTalentFilled,
	}
}

// DetailsParams for the profile completion save. An empty Photo removes the photo.
type DetailsParams struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
	Photo     string
}

// Service defines the user operations behind the settings dialogs.
//
// Implementations must normalize input data:
//   - names: HTML stripped, whitespace trimmed, both required
//   - username: trimmed, validated by package username, unique case-insensitively
//   - email settings: unknown ids rejected, ineligible categories left unchanged
type Service interface {
	Get(ctx context.Context, userID string) (*User, error)
	UpdateDetails(ctx context.Context, userID string, params DetailsParams) (*User, error)
	UpdateEmailSettings(ctx context.Context, userID string, categories []string) (*User, error)
	UsernameAvailable(ctx context.Context, userID, candidate string) (bool, error)
}

var namePolicy = bluemonday.StrictPolicy()

func normalizeDetails(p DetailsParams) (DetailsParams, error) {
	p.FirstName = strings.TrimSpace(namePolicy.Sanitize(p.FirstName))
	p.LastName = strings.TrimSpace(namePolicy.Sanitize(p.LastName))
	p.Username = strings.TrimSpace(p.Username)
	p.Photo = strings.TrimSpace(p.Photo)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.FirstName == "" || p.LastName == "" {
		return p, ErrInvalidName
	}
	if err := username.Validate(p.Username); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidUsername, err)
	}
	return p, nil
}

func validateCategories(categories []string) error {
	for _, id := range categories {
		if !emailpref.Known(id) {
			return fmt.Errorf("%w: %q", ErrInvalidCategory, id)
		}
	}
	return nil
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidCategory):
		return "invalid_argument"
	default:
		return "internal_error"
	}
}

func mergeSettings(u *User, requested []string) []string {
	return emailpref.Merge(u.Eligibility(), u.EmailSettings, requested)
}

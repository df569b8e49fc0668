package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/platform/auth"
	applog "github.com/janisto/account-settings/internal/platform/logging"
	"github.com/janisto/account-settings/internal/platform/timeutil"
	usersvc "github.com/janisto/account-settings/internal/service/user"
	"github.com/janisto/account-settings/internal/username"
)

// Register registers user endpoints.
func Register(api huma.API, svc usersvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/user",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account snapshot. A user who has not completed " +
			"a profile yet gets a snapshot seeded from the token.",
		Tags:        []string{"User"},
		Security:    auth.Security,
	}, func(ctx context.Context, _ *GetInput) (*UserOutput, error) {
		p, err := auth.Require(ctx)
		if err != nil {
			return nil, err
		}
		u, err := svc.Get(ctx, p.UID)
		if errors.Is(err, usersvc.ErrNotFound) {
			u = &usersvc.User{ID: p.UID, Email: p.Email}
		} else if err != nil {
			return nil, mapServiceError(err)
		}
		return &UserOutput{Body: toHTTPUser(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user-details",
		Method:      http.MethodPost,
		Path:        "/user/details",
		Summary:     "Save profile details",
		Description: "Sets name, username and avatar. Creates the account record on first completion. " +
			"Omitting photo removes the avatar.",
		Tags:     []string{"User"},
		Security: auth.Security,
	}, func(ctx context.Context, input *DetailsInput) (*UserOutput, error) {
		p, err := auth.Require(ctx)
		if err != nil {
			return nil, err
		}
		u, err := svc.UpdateDetails(ctx, p.UID, usersvc.DetailsParams{
			Email:     p.Email,
			FirstName: input.Body.FirstName,
			LastName:  input.Body.LastName,
			Username:  input.Body.Username,
			Photo:     input.Body.Photo,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &UserOutput{Body: toHTTPUser(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-email-settings",
		Method:      http.MethodPost,
		Path:        "/user/email-settings",
		Summary:     "Save email preferences",
		Description: "Replaces the subscribed categories among those the caller may manage. " +
			"Subscriptions in categories the caller cannot see are left unchanged.",
		Tags:     []string{"User"},
		Security: auth.Security,
	}, func(ctx context.Context, input *EmailSettingsInput) (*UserOutput, error) {
		p, err := auth.Require(ctx)
		if err != nil {
			return nil, err
		}
		u, err := svc.UpdateEmailSettings(ctx, p.UID, input.Body.Categories)
		if err != nil {
			return nil, mapServiceError(err)
		}
		applog.LogInfo(ctx, "email preferences confirmed",
			zap.Strings("categories", u.EmailSettings))
		return &UserOutput{Body: toHTTPUser(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-username-availability",
		Method:      http.MethodGet,
		Path:        "/user/username-availability",
		Summary:     "Check username availability",
		Description: "Reports whether the caller can claim the username. The caller's own username is available.",
		Tags:        []string{"User"},
		Security:    auth.Security,
	}, func(ctx context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
		p, err := auth.Require(ctx)
		if err != nil {
			return nil, err
		}
		if err := username.Validate(input.Username); err != nil {
			return &AvailabilityOutput{Body: Availability{Reason: ReasonInvalid}}, nil
		}
		ok, err := svc.UsernameAvailable(ctx, p.UID, input.Username)
		if err != nil {
			applog.LogError(ctx, "username availability lookup failed", err)
			return nil, huma.Error503ServiceUnavailable("username lookup unavailable")
		}
		out := &AvailabilityOutput{Body: Availability{Available: ok}}
		if !ok {
			out.Body.Reason = ReasonTaken
		}
		return out, nil
	})
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, usersvc.ErrNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, usersvc.ErrUsernameTaken):
		return huma.Error409Conflict("username already taken")
	case errors.Is(err, usersvc.ErrInvalidUsername), errors.Is(err, usersvc.ErrInvalidName),
		errors.Is(err, usersvc.ErrInvalidCategory):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

func toHTTPUser(u *usersvc.User) User {
	settings := u.EmailSettings
	if settings == nil {
		settings = []string{}
	}
	return User{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Username:         u.Username,
		Photo:            u.Photo,
		CurrentSponsorID: u.CurrentSponsorID,
		IsTalentFilled:   u.IsTalentFilled,
		EmailSettings:    settings,
		CreatedAt:        timeutil.Time{Time: u.CreatedAt},
		UpdatedAt:        timeutil.Time{Time: u.UpdatedAt},
	}
}

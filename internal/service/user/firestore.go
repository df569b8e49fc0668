package user

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/account-settings/internal/platform/logging"
	"github.com/janisto/account-settings/internal/username"
)

const (
	usersCollection     = "users"
	usernamesCollection = "usernames"
)

// firestoreUser maps to the users/{uid} document.
type firestoreUser struct {
	Email            string    `firestore:"email"`
	FirstName        string    `firestore:"first_name"`
	LastName         string    `firestore:"last_name"`
	Username         string    `firestore:"username"`
	Photo            string    `firestore:"photo"`
	CurrentSponsorID string    `firestore:"current_sponsor_id"`
	IsTalentFilled   bool      `firestore:"is_talent_filled"`
	EmailSettings    []string  `firestore:"email_settings"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

// reservation maps to usernames/{key}; it is the uniqueness lock for a username.
type reservation struct {
	UID string `firestore:"uid"`
}

func (fu firestoreUser) toUser(id string) *User {
	return &User{
		ID:               id,
		Email:            fu.Email,
		FirstName:        fu.FirstName,
		LastName:         fu.LastName,
		Username:         fu.Username,
		Photo:            fu.Photo,
		CurrentSponsorID: fu.CurrentSponsorID,
		IsTalentFilled:   fu.IsTalentFilled,
		EmailSettings:    slices.Clone(fu.EmailSettings),
		CreatedAt:        fu.CreatedAt,
		UpdatedAt:        fu.UpdatedAt,
	}
}

// FirestoreStore implements Service using Firestore transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Get retrieves a user by ID.
func (s *FirestoreStore) Get(ctx context.Context, userID string) (*User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var fu firestoreUser
	if err := doc.DataTo(&fu); err != nil {
		return nil, err
	}
	return fu.toUser(userID), nil
}

// UpdateDetails upserts name, username and photo. The username reservation is swapped in
// the same transaction so two users can never hold the same username.
func (s *FirestoreStore) UpdateDetails(ctx context.Context, userID string, params DetailsParams) (*User, error) {
	params, err := normalizeDetails(params)
	if err != nil {
		applog.LogAuditEvent(ctx, "update_details", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	userRef := s.client.Collection(usersCollection).Doc(userID)
	newKey := username.Key(params.Username)
	nameRef := s.client.Collection(usernamesCollection).Doc(newKey)

	var result *User

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var fu firestoreUser
		exists := false
		doc, err := tx.Get(userRef)
		switch {
		case err == nil && doc.Exists():
			if err := doc.DataTo(&fu); err != nil {
				return err
			}
			exists = true
		case err != nil && status.Code(err) != codes.NotFound:
			return err
		}

		nameDoc, err := tx.Get(nameRef)
		switch {
		case err == nil && nameDoc.Exists():
			var r reservation
			if err := nameDoc.DataTo(&r); err != nil {
				return err
			}
			if r.UID != userID {
				return ErrUsernameTaken
			}
		case err != nil && status.Code(err) != codes.NotFound:
			return err
		}

		if oldKey := username.Key(fu.Username); exists && oldKey != "" && oldKey != newKey {
			if err := tx.Delete(s.client.Collection(usernamesCollection).Doc(oldKey)); err != nil {
				return err
			}
		}
		if err := tx.Set(nameRef, reservation{UID: userID}); err != nil {
			return err
		}

		now := time.Now().UTC()
		if !exists {
			fu.CreatedAt = now
			fu.Email = params.Email
		}
		fu.FirstName = params.FirstName
		fu.LastName = params.LastName
		fu.Username = params.Username
		fu.Photo = params.Photo
		fu.UpdatedAt = now

		if err := tx.Set(userRef, fu); err != nil {
			return err
		}
		result = fu.toUser(userID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update_details", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "update_details", userID, "user", userID, applog.AuditSuccess, nil)

	return result, nil
}

// UpdateEmailSettings replaces the subscriptions the user is eligible to manage.
func (s *FirestoreStore) UpdateEmailSettings(ctx context.Context, userID string, categories []string) (*User, error) {
	if err := validateCategories(categories); err != nil {
		applog.LogAuditEvent(ctx, "update_email_settings", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	userRef := s.client.Collection(usersCollection).Doc(userID)

	var result *User

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(userRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		var fu firestoreUser
		if err := doc.DataTo(&fu); err != nil {
			return err
		}

		u := fu.toUser(userID)
		fu.EmailSettings = mergeSettings(u, categories)
		fu.UpdatedAt = time.Now().UTC()

		if err := tx.Set(userRef, fu); err != nil {
			return err
		}
		result = fu.toUser(userID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update_email_settings", userID, "user", userID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "update_email_settings", userID, "user", userID, applog.AuditSuccess,
		map[string]any{"categories": len(result.EmailSettings)})

	return result, nil
}

// UsernameAvailable reports whether candidate is free or already held by userID.
func (s *FirestoreStore) UsernameAvailable(ctx context.Context, userID, candidate string) (bool, error) {
	if err := username.Validate(candidate); err != nil {
		return false, err
	}
	doc, err := s.client.Collection(usernamesCollection).Doc(username.Key(candidate)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return true, nil
		}
		return false, err
	}
	var r reservation
	if err := doc.DataTo(&r); err != nil {
		return false, err
	}
	return r.UID == userID, nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)

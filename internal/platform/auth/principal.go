package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// Principal is the caller behind a verified ID token.
type Principal struct {
	UID            string
	Email          string
	EmailVerified  bool
	Picture        string
	SignInProvider string
}

// Error types for authentication failures.
var (
	ErrNoToken      = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch is a transient failure fetching public keys; callers answer 503.
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates tokens and returns the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// FirebaseVerifier implements Verifier using the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a new verifier with the given auth client.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates a Firebase ID token and checks for revocation.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Principal, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, classifyFirebaseError(err)
	}
	return principalFromToken(token), nil
}

func classifyFirebaseError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

func principalFromToken(token *fbauth.Token) *Principal {
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	picture, _ := token.Claims["picture"].(string)
	return &Principal{
		UID:            token.UID,
		Email:          email,
		EmailVerified:  verified,
		Picture:        picture,
		SignInProvider: token.Firebase.SignInProvider,
	}
}

// ExtractBearerToken extracts the token from an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// Compile-time interface check
var _ Verifier = (*FirebaseVerifier)(nil)

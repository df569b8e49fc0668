package auth

import (
	"context"
)

// MockVerifier provides fake token verification for tests. When Tokens is set,
// only listed tokens verify.
type MockVerifier struct {
	User   *Principal
	Tokens map[string]*Principal
	Error  error
}

// Verify returns the configured principal or error.
func (m *MockVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Tokens != nil {
		p, ok := m.Tokens[token]
		if !ok {
			return nil, ErrInvalidToken
		}
		return p, nil
	}
	return m.User, nil
}

// TestUser returns a standard signed-in caller.
func TestUser() *Principal {
	return &Principal{
		UID:            "test-user-123",
		Email:          "test@example.com",
		EmailVerified:  true,
		SignInProvider: "password",
	}
}

// Compile-time interface check
var _ Verifier = (*MockVerifier)(nil)

package user

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/janisto/account-settings/internal/username"
)

// MockUserService implements Service for unit tests.
type MockUserService struct {
	mu        sync.RWMutex
	users     map[string]*User
	usernames map[string]string
}

// NewMockUserService creates a new mock service.
func NewMockUserService() *MockUserService {
	return &MockUserService{
		users:     make(map[string]*User),
		usernames: make(map[string]string),
	}
}

// Seed stores u as-is, reserving its username.
func (m *MockUserService) Seed(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := u
	stored.EmailSettings = slices.Clone(u.EmailSettings)
	m.users[u.ID] = &stored
	if key := username.Key(u.Username); key != "" {
		m.usernames[key] = u.ID
	}
}

func (m *MockUserService) Get(ctx context.Context, userID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MockUserService) UpdateDetails(ctx context.Context, userID string, params DetailsParams) (*User, error) {
	params, err := normalizeDetails(params)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newKey := username.Key(params.Username)
	if owner, taken := m.usernames[newKey]; taken && owner != userID {
		return nil, ErrUsernameTaken
	}

	now := time.Now().UTC()
	u, exists := m.users[userID]
	if !exists {
		u = &User{ID: userID, Email: params.Email, CreatedAt: now}
		m.users[userID] = u
	}
	if oldKey := username.Key(u.Username); oldKey != "" && oldKey != newKey {
		delete(m.usernames, oldKey)
	}
	m.usernames[newKey] = userID

	u.FirstName = params.FirstName
	u.LastName = params.LastName
	u.Username = params.Username
	u.Photo = params.Photo
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (m *MockUserService) UpdateEmailSettings(ctx context.Context, userID string, categories []string) (*User, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	u.EmailSettings = mergeSettings(u, categories)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (m *MockUserService) UsernameAvailable(ctx context.Context, userID, candidate string) (bool, error) {
	if err := username.Validate(candidate); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, taken := m.usernames[username.Key(candidate)]
	return !taken || owner == userID, nil
}

// Clear removes all users (useful for test cleanup).
func (m *MockUserService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]*User)
	m.usernames = make(map[string]string)
}

func cloneUser(u *User) *User {
	c := *u
	c.EmailSettings = slices.Clone(u.EmailSettings)
	return &c
}

// Compile-time interface check
var _ Service = (*MockUserService)(nil)

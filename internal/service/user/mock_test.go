package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/janisto/account-settings/internal/username"
)

func validDetails() DetailsParams {
	return DetailsParams{
		Email:     "Jane@Example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Username:  "jane_doe",
		Photo:     "https://storage.googleapis.com/bucket/earn-pfp/a.png",
	}
}

func TestMockUpdateDetailsCreatesUser(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()

	u, err := svc.UpdateDetails(ctx, "user-1", validDetails())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" {
		t.Errorf("expected ID user-1, got %s", u.ID)
	}
	if u.Email != "jane@example.com" {
		t.Errorf("expected email lowercased, got %s", u.Email)
	}
	if u.Username != "jane_doe" {
		t.Errorf("expected username jane_doe, got %s", u.Username)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestMockUpdateDetailsSanitizesNames(t *testing.T) {
	svc := NewMockUserService()
	p := validDetails()
	p.FirstName = "  <b>Jane</b> "
	p.LastName = "<script>alert(1)</script>Doe"

	u, err := svc.UpdateDetails(context.Background(), "user-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.FirstName != "Jane" {
		t.Errorf("expected first name Jane, got %q", u.FirstName)
	}
	if u.LastName != "Doe" {
		t.Errorf("expected last name Doe, got %q", u.LastName)
	}
}

func TestMockUpdateDetailsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DetailsParams)
		want   error
	}{
		{"empty first name", func(p *DetailsParams) { p.FirstName = " " }, ErrInvalidName},
		{"markup-only last name", func(p *DetailsParams) { p.LastName = "<i></i>" }, ErrInvalidName},
		{"empty username", func(p *DetailsParams) { p.Username = "" }, ErrInvalidUsername},
		{"bad charset", func(p *DetailsParams) { p.Username = "jane doe" }, ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockUserService()
			p := validDetails()
			tt.mutate(&p)
			_, err := svc.UpdateDetails(context.Background(), "user-1", p)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMockInvalidUsernameWrapsCause(t *testing.T) {
	svc := NewMockUserService()
	p := validDetails()
	p.Username = "ab"
	_, err := svc.UpdateDetails(context.Background(), "user-1", p)
	if !errors.Is(err, username.ErrTooShort) {
		t.Fatalf("expected ErrTooShort in chain, got %v", err)
	}
}

func TestMockUsernameUniqueness(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()

	if _, err := svc.UpdateDetails(ctx, "user-1", validDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := validDetails()
	p.Username = "JANE_DOE"
	if _, err := svc.UpdateDetails(ctx, "user-2", p); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// Owner may resave with different casing.
	if _, err := svc.UpdateDetails(ctx, "user-1", p); err != nil {
		t.Fatalf("owner resave failed: %v", err)
	}
}

func TestMockUsernameChangeReleasesOld(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()

	if _, err := svc.UpdateDetails(ctx, "user-1", validDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := validDetails()
	p.Username = "jane2"
	if _, err := svc.UpdateDetails(ctx, "user-1", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := svc.UsernameAvailable(ctx, "user-2", "jane_doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected old username to be released")
	}
	ok, _ = svc.UsernameAvailable(ctx, "user-2", "Jane2")
	if ok {
		t.Error("expected new username to be reserved")
	}
	ok, _ = svc.UsernameAvailable(ctx, "user-1", "jane2")
	if !ok {
		t.Error("expected own username to be available to its owner")
	}
}

func TestMockUsernameAvailableValidates(t *testing.T) {
	svc := NewMockUserService()
	_, err := svc.UsernameAvailable(context.Background(), "user-1", "a!")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestMockUpdateDetailsEmptyPhotoClears(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()
	if _, err := svc.UpdateDetails(ctx, "user-1", validDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := validDetails()
	p.Photo = ""
	u, err := svc.UpdateDetails(ctx, "user-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Photo != "" {
		t.Errorf("expected photo cleared, got %q", u.Photo)
	}
}

func TestMockUpdateEmailSettings(t *testing.T) {
	svc := NewMockUserService()
	svc.Seed(User{
		ID:               "user-1",
		CurrentSponsorID: "sponsor-9",
		EmailSettings:    []string{"submissionSponsor", "weeklyListingRoundup"},
	})

	u, err := svc.UpdateEmailSettings(context.Background(), "user-1", []string{"commentSponsor", "productAndNewsletter"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// weeklyListingRoundup is a talent category the user cannot manage, so it survives.
	want := []string{"weeklyListingRoundup", "commentSponsor", "productAndNewsletter"}
	if diff := cmp.Diff(want, u.EmailSettings); diff != "" {
		t.Errorf("email settings mismatch (-want +got):\n%s", diff)
	}
}

func TestMockUpdateEmailSettingsErrors(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()

	if _, err := svc.UpdateEmailSettings(ctx, "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	svc.Seed(User{ID: "user-1"})
	if _, err := svc.UpdateEmailSettings(ctx, "user-1", []string{"bogus"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestMockGetReturnsCopy(t *testing.T) {
	svc := NewMockUserService()
	svc.Seed(User{ID: "user-1", EmailSettings: []string{"replyOrTagComment"}})

	u, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u.EmailSettings[0] = "mutated"

	again, _ := svc.Get(context.Background(), "user-1")
	if again.EmailSettings[0] != "replyOrTagComment" {
		t.Error("expected stored settings to be isolated from callers")
	}
}

func TestMockGetNotFound(t *testing.T) {
	svc := NewMockUserService()
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMockConcurrentUsernameClaims(t *testing.T) {
	svc := NewMockUserService()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := "user-" + string(rune('a'+i))
			if _, err := svc.UpdateDetails(ctx, uid, validDetails()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one claim to succeed, got %d", successes)
	}
}

func TestUserEligibility(t *testing.T) {
	u := &User{CurrentSponsorID: "s", IsTalentFilled: false}
	e := u.Eligibility()
	if !e.Sponsor || e.Talent {
		t.Fatalf("unexpected eligibility %+v", e)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not_found"},
		{ErrUsernameTaken, "username_taken"},
		{ErrInvalidName, "invalid_argument"},
		{ErrInvalidCategory, "invalid_argument"},
		{errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

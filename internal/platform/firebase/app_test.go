package firebase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestClientsCloseReturnsNilWhenFirestoreNil(t *testing.T) {
	c := &Clients{}
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestBucketWithoutStorage(t *testing.T) {
	c := &Clients{}
	if _, err := c.Bucket(); !errors.Is(err, ErrNoBucket) {
		t.Fatalf("expected ErrNoBucket, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	opts, err := clientOptions(Config{})
	if err != nil || len(opts) != 0 {
		t.Fatalf("expected no options, got %d, %v", len(opts), err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts, err = clientOptions(Config{GoogleApplicationCredentials: path})
	if err != nil || len(opts) != 1 {
		t.Fatalf("expected one option, got %d, %v", len(opts), err)
	}

	if _, err := clientOptions(Config{GoogleApplicationCredentials: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}

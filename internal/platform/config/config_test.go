package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MEDIA_FOLDER", "MAX_UPLOAD_BYTES", "FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected port %s, got %s", DefaultPort, cfg.Port)
	}
	if cfg.MediaFolder != DefaultMediaFolder {
		t.Errorf("expected folder %s, got %s", DefaultMediaFolder, cfg.MediaFolder)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("expected max upload %d, got %d", DefaultMaxUploadBytes, cfg.MaxUploadBytes)
	}
}

func TestLoadServerProjectFallback(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "gcp-project")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectID != "gcp-project" {
		t.Fatalf("expected gcp-project, got %s", cfg.ProjectID)
	}
}

func TestLoadServerRejectsBadUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	if _, err := LoadServer(); err == nil {
		t.Fatal("expected error for non-numeric MAX_UPLOAD_BYTES")
	}
}

func TestLoadClientRequiresAPIURL(t *testing.T) {
	t.Setenv("API_URL", "")

	if _, err := LoadClient(); err == nil {
		t.Fatal("expected error without API_URL")
	}
}

func TestLoadClientDurations(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:8080")
	t.Setenv("USERNAME_DEBOUNCE", "250ms")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UsernameDebounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", cfg.UsernameDebounce)
	}
	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("expected default timeout, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MEDIA_FOLDER=from-file\nSTORAGE_BUCKET=bucket-from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("MEDIA_FOLDER", "from-env")
	t.Setenv("STORAGE_BUCKET", "")
	os.Unsetenv("STORAGE_BUCKET")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("MEDIA_FOLDER"); got != "from-env" {
		t.Errorf("expected env to win, got %s", got)
	}
	if got := os.Getenv("STORAGE_BUCKET"); got != "bucket-from-file" {
		t.Errorf("expected value from file, got %s", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

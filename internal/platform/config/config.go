// Package config loads process configuration from the environment, optionally seeded from
// a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultPort             = "8080"
	DefaultMediaFolder      = "earn-pfp"
	DefaultMaxUploadBytes   = 5 << 20
	DefaultUsernameDebounce = 400 * time.Millisecond
	DefaultHTTPTimeout      = 10 * time.Second
)

// Server is the API server configuration.
type Server struct {
	Port                         string
	ProjectID                    string
	GoogleApplicationCredentials string
	StorageBucket                string
	MediaFolder                  string
	MaxUploadBytes               int64
}

// Client is the terminal client configuration.
type Client struct {
	APIURL           string
	IDToken          string
	UsernameDebounce time.Duration
	HTTPTimeout      time.Duration
	LogFile          string
}

// LoadDotenv loads the given files (".env" when none) into the environment. Variables that
// are already set win, and missing files are not an error.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadServer reads the server configuration.
func LoadServer() (Server, error) {
	maxBytes, err := int64Env("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return Server{}, err
	}
	return Server{
		Port:                         stringEnv("PORT", DefaultPort),
		ProjectID:                    firstEnv("FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
		GoogleApplicationCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		StorageBucket:                os.Getenv("STORAGE_BUCKET"),
		MediaFolder:                  stringEnv("MEDIA_FOLDER", DefaultMediaFolder),
		MaxUploadBytes:               maxBytes,
	}, nil
}

// LoadClient reads the terminal client configuration. API_URL is required.
func LoadClient() (Client, error) {
	debounce, err := durationEnv("USERNAME_DEBOUNCE", DefaultUsernameDebounce)
	if err != nil {
		return Client{}, err
	}
	timeout, err := durationEnv("HTTP_TIMEOUT", DefaultHTTPTimeout)
	if err != nil {
		return Client{}, err
	}
	cfg := Client{
		APIURL:           os.Getenv("API_URL"),
		IDToken:          os.Getenv("ID_TOKEN"),
		UsernameDebounce: debounce,
		HTTPTimeout:      timeout,
		LogFile:          os.Getenv("LOG_FILE"),
	}
	if cfg.APIURL == "" {
		return Client{}, errors.New("API_URL is required")
	}
	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, v)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: expected a duration, got %q", key, v)
	}
	return d, nil
}

package firebase

import (
	"context"
	"errors"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	fbstorage "firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// Config holds Firebase configuration.
type Config struct {
	ProjectID                    string
	GoogleApplicationCredentials string // Path to service account JSON (optional)
	StorageBucket                string // Default bucket for uploaded media (optional)
}

// Clients holds initialized Firebase clients.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Storage   *fbstorage.Client
}

// ErrNoBucket is returned by Bucket when no storage bucket is configured.
var ErrNoBucket = errors.New("firebase: storage bucket not configured")

// InitializeClients sets up Firebase and returns clients directly.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	config := &firebase.Config{ProjectID: cfg.ProjectID, StorageBucket: cfg.StorageBucket}
	fbApp, err := firebase.NewApp(ctx, config, opts...)
	if err != nil {
		return nil, err
	}

	ac, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, err
	}

	fc, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	clients := &Clients{Auth: ac, Firestore: fc}
	if cfg.StorageBucket != "" {
		sc, err := fbApp.Storage(ctx)
		if err != nil {
			_ = fc.Close()
			return nil, err
		}
		clients.Storage = sc
	}
	return clients, nil
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials == "" {
		return nil, nil
	}
	creds, err := os.ReadFile(cfg.GoogleApplicationCredentials)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithCredentialsJSON(creds)}, nil
}

// Bucket returns the default media bucket.
func (c *Clients) Bucket() (*gcs.BucketHandle, error) {
	if c.Storage == nil {
		return nil, ErrNoBucket
	}
	return c.Storage.DefaultBucket()
}

// Close closes the Firestore client.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

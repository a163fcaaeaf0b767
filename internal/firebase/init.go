package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"io.mapwave.beacon/internal/config"
)

// InitFirebase initializes and returns a Firebase app instance used to verify
// bearer tokens on mutating endpoints.
func InitFirebase(cfg *config.Config) (*firebase.App, error) {
	ctx := context.Background()

	fbConfig := &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	}

	var app *firebase.App
	var err error

	if cfg.FirebaseServiceAccountPath != "" {
		// Initialize with service account file
		opt := option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
		app, err = firebase.NewApp(ctx, fbConfig, opt)
	} else {
		// Initialize with default credentials (useful for Google Cloud deployment)
		app, err = firebase.NewApp(ctx, fbConfig)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	// Fail at boot rather than on the first authenticated request
	if _, err := app.Auth(ctx); err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	return app, nil
}

// GetAuthClient returns a Firebase Auth client from the app
func GetAuthClient(app *firebase.App) (*auth.Client, error) {
	ctx := context.Background()
	return app.Auth(ctx)
}

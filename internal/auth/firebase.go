package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens with a bounded wait.
type FirebaseVerifier struct {
	client  idTokenVerifier
	timeout time.Duration
}

// NewFirebaseVerifier builds a verifier for projectID. Without a credentials file
// the application default credentials are used.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string, timeout time.Duration) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("auth: reading firebase credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("auth: parsing firebase credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: initializing firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client, timeout: timeout}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, assertion string) (*ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	token, err := v.client.VerifyIDToken(ctx, assertion)
	if err != nil {
		return nil, classifyVerifyError(ctx, err)
	}

	identity := &ExternalIdentity{Subject: token.UID}
	identity.Email, _ = token.Claims["email"].(string)
	identity.Name, _ = token.Claims["name"].(string)
	identity.Picture, _ = token.Claims["picture"].(string)
	return identity, nil
}

func classifyVerifyError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return ErrVerifierTimeout
	case fbauth.IsIDTokenInvalid(err), fbauth.IsIDTokenExpired(err), fbauth.IsIDTokenRevoked(err):
		return &RejectionError{Reason: err.Error()}
	default:
		return fmt.Errorf("auth: verifying firebase ID token: %w", err)
	}
}

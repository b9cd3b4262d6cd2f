package auth

import (
	"context"
	"errors"
)

var (
	ErrAssertionRejected = errors.New("auth: identity assertion rejected")
	ErrVerifierTimeout   = errors.New("auth: identity provider timed out")
)

// ExternalIdentity is what the identity provider vouches for.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks a federated identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*ExternalIdentity, error)
}

// RejectionError carries the provider's reason for rejecting an assertion.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return "auth: identity assertion rejected: " + e.Reason
}

func (e *RejectionError) Unwrap() error {
	return ErrAssertionRejected
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/group-study-api/internal/auth"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/testutil"
)

func TestExchange_ProvisionsOnceAndReuses(t *testing.T) {
	f := newFixture(t)
	f.verifier.identity = &auth.ExternalIdentity{Subject: "fb-123", Email: "Alice@Example.com", Name: "Alice"}
	svc := f.authService(true)
	ctx := context.Background()

	first, err := svc.Exchange(ctx, "assertion-1")
	require.NoError(t, err)
	second, err := svc.Exchange(ctx, "assertion-2")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "alice@example.com", first.User.Email)
	assert.Equal(t, "Alice", first.User.Username)
	assert.NotNil(t, second.User.LastLogin)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	claims, err := f.tokens.Parse(first.Tokens.Access, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)
}

func TestExchange_UsernameFallsBackToEmail(t *testing.T) {
	f := newFixture(t)
	f.verifier.identity = &auth.ExternalIdentity{Subject: "fb-1", Email: "noname@example.com"}

	session, err := f.authService(false).Exchange(context.Background(), "assertion")
	require.NoError(t, err)
	assert.Equal(t, "noname@example.com", session.User.Username)
}

func TestExchange_LinksExistingLocalAccount(t *testing.T) {
	f := newFixture(t)
	local := testutil.CreateUser(t, f.db, "bob@example.com")
	f.verifier.identity = &auth.ExternalIdentity{Subject: "fb-bob", Email: "bob@example.com"}

	session, err := f.authService(false).Exchange(context.Background(), "assertion")
	require.NoError(t, err)
	assert.Equal(t, local.ID, session.User.ID)
	require.NotNil(t, session.User.FirebaseUID)
	assert.Equal(t, "fb-bob", *session.User.FirebaseUID)
}

func TestExchange_EmailOwnedByAnotherIdentity(t *testing.T) {
	f := newFixture(t)
	other := "fb-other"
	user := testutil.CreateUser(t, f.db, "carol@example.com")
	user.FirebaseUID = &other
	require.NoError(t, f.db.Save(user).Error)
	f.verifier.identity = &auth.ExternalIdentity{Subject: "fb-carol", Email: "carol@example.com"}

	_, err := f.authService(false).Exchange(context.Background(), "assertion")
	assert.ErrorIs(t, err, apierrors.ErrConflict)
}

func TestExchange_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion string
		identity  *auth.ExternalIdentity
		verifyErr error
		wantKind  error
		wantCalls int
	}{
		{name: "empty assertion", assertion: " ", wantKind: apierrors.ErrInvalidRequest},
		{name: "rejected", assertion: "x", verifyErr: &auth.RejectionError{Reason: "token expired"}, wantKind: apierrors.ErrExternalVerification, wantCalls: 1},
		{name: "timeout", assertion: "x", verifyErr: auth.ErrVerifierTimeout, wantKind: apierrors.ErrUpstreamTimeout, wantCalls: 1},
		{name: "no email", assertion: "x", identity: &auth.ExternalIdentity{Subject: "fb-1"}, wantKind: apierrors.ErrExternalVerification, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.verifier.identity = tt.identity
			f.verifier.err = tt.verifyErr

			_, err := f.authService(false).Exchange(context.Background(), tt.assertion)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantCalls, f.verifier.calls)
		})
	}
}

func TestExchange_UnexpectedVerifierErrorIsInternal(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = errors.New("connection reset")

	_, err := f.authService(false).Exchange(context.Background(), "assertion")
	require.Error(t, err)
	var domainErr *apierrors.Error
	assert.False(t, errors.As(err, &domainErr))
}

func TestExchange_DeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	f.verifier.identity = &auth.ExternalIdentity{Subject: "fb-1", Email: "dee@example.com"}
	svc := f.authService(false)

	session, err := svc.Exchange(context.Background(), "assertion")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(session.User).Update("is_active", false).Error)

	_, err = svc.Exchange(context.Background(), "assertion")
	assert.ErrorIs(t, err, apierrors.ErrForbidden)
}

func refreshCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apierrors.Error
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	return domainErr.Code
}

func TestRotate(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "rot@example.com")
	pair, err := f.tokens.IssuePair(user.ID, user.Email)
	require.NoError(t, err)

	t.Run("missing cookie", func(t *testing.T) {
		_, err := f.authService(true).Rotate(context.Background(), "")
		assert.ErrorIs(t, err, apierrors.ErrUnauthorized)
		assert.Equal(t, apierrors.ErrCodeRefreshTokenNotFound, refreshCode(t, err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.authService(true).Rotate(context.Background(), "not-a-jwt")
		assert.Equal(t, apierrors.ErrCodeTokenExpired, refreshCode(t, err))
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.authService(true).Rotate(context.Background(), pair.Access)
		assert.Equal(t, apierrors.ErrCodeTokenExpired, refreshCode(t, err))
	})

	t.Run("expired refresh token", func(t *testing.T) {
		stale := auth.NewTokenService(testSecret, "group-study-test", -2*time.Hour, -time.Hour)
		old, err := stale.IssuePair(user.ID, user.Email)
		require.NoError(t, err)

		_, err = f.authService(true).Rotate(context.Background(), old.Refresh)
		assert.Equal(t, apierrors.ErrCodeTokenExpired, refreshCode(t, err))
	})

	t.Run("rotation keeps the session expiry", func(t *testing.T) {
		refreshed, err := f.authService(true).Rotate(context.Background(), pair.Refresh)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.Refresh)
		assert.Equal(t, pair.RefreshExpiresAt.Unix(), refreshed.RefreshExpiresAt.Unix())

		claims, err := f.tokens.Parse(refreshed.Access, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("without rotation", func(t *testing.T) {
		refreshed, err := f.authService(false).Rotate(context.Background(), pair.Refresh)
		require.NoError(t, err)
		assert.Empty(t, refreshed.Refresh)
		assert.NotEmpty(t, refreshed.Access)
	})

	t.Run("deactivated user", func(t *testing.T) {
		require.NoError(t, f.db.Model(user).Update("is_active", false).Error)
		_, err := f.authService(true).Rotate(context.Background(), pair.Refresh)
		assert.Equal(t, apierrors.ErrCodeTokenExpired, refreshCode(t, err))
	})
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(false)
	pair, err := f.tokens.IssuePair("user-1", "v@example.com")
	require.NoError(t, err)

	assert.NoError(t, svc.Verify(pair.Access))
	assert.NoError(t, svc.Verify(pair.Refresh))
	assert.ErrorIs(t, svc.Verify(""), apierrors.ErrInvalidRequest)
	assert.ErrorIs(t, svc.Verify("garbage"), apierrors.ErrUnauthorized)
}

func TestSignupAndPasswordLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(false)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Email: " Dana@Example.com ", Password: "correct horse", Username: "dana"})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.True(t, user.HasPassword())

	_, err = svc.Signup(ctx, SignupInput{Email: "dana@example.com", Password: "another password"})
	assert.ErrorIs(t, err, apierrors.ErrConflict)

	_, err = svc.Signup(ctx, SignupInput{Email: "short@example.com", Password: "short"})
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)

	session, err := svc.PasswordLogin(ctx, "DANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotEmpty(t, session.Tokens.Refresh)

	_, err = svc.PasswordLogin(ctx, "dana@example.com", "wrong password")
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, refreshCode(t, err))

	_, err = svc.PasswordLogin(ctx, "nobody@example.com", "correct horse")
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, refreshCode(t, err))
}

func TestPasswordLogin_FederatedAccountHasNoPassword(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "fed@example.com")
	require.False(t, user.HasPassword())

	for _, password := range []string{"", "some password"} {
		_, err := f.authService(false).PasswordLogin(context.Background(), "fed@example.com", password)
		assert.Equal(t, apierrors.ErrCodeInvalidCredentials, refreshCode(t, err))
	}
}

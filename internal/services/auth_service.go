package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/group-study-api/internal/auth"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
	"gorm.io/gorm"
)

var errAccountDeactivated = &apierrors.Error{
	Kind:    apierrors.ErrForbidden,
	Code:    apierrors.ErrCodeAccountDeactivated,
	Message: "This account has been deactivated",
}

// AuthService exchanges external identity assertions and local credentials for
// session tokens, and rotates sessions from refresh tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	verifier  auth.IdentityVerifier
	rotate    bool
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService. When rotate is set every refresh also
// issues a replacement refresh token.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	verifier auth.IdentityVerifier,
	rotate bool,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		verifier:  verifier,
		rotate:    rotate,
		logger:    logger,
		now:       time.Now,
	}
}

// Session is the result of a successful login.
type Session struct {
	User   *models.User
	Tokens *auth.TokenPair
}

// Refreshed is the result of a successful refresh. Refresh is empty when rotation is off.
type Refreshed struct {
	Access           string
	Refresh          string
	RefreshExpiresAt time.Time
}

// Exchange verifies an external identity assertion, provisions the user on first
// sight and starts a session.
func (s *AuthService) Exchange(ctx context.Context, assertion string) (*Session, error) {
	if strings.TrimSpace(assertion) == "" {
		return nil, apierrors.InvalidField("token", "Identity token is required")
	}

	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		var rejection *auth.RejectionError
		switch {
		case errors.As(err, &rejection):
			return nil, apierrors.VerificationFailed(rejection.Reason)
		case errors.Is(err, auth.ErrVerifierTimeout):
			s.logger.Warn("identity provider timed out")
			return nil, apierrors.VerifierTimeout()
		default:
			return nil, fmt.Errorf("failed to verify identity: %w", err)
		}
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, apierrors.VerificationFailed("Identity token carries no subject or email")
	}

	user, err := s.findOrProvision(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

func (s *AuthService) findOrProvision(ctx context.Context, identity *auth.ExternalIdentity) (*models.User, error) {
	user, err := s.users.FindByFirebaseUID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	email := normalizeEmail(identity.Email)
	subject := identity.Subject

	// A local account registered with the same email is linked, not duplicated.
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.FirebaseUID == nil:
		existing.FirebaseUID = &subject
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to link identity: %w", err)
		}
		s.logger.Info("linked external identity", slog.String("user_id", existing.ID))
		return existing, nil
	case err == nil:
		return nil, apierrors.Conflicting("This email is already linked to another identity")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}
	user = &models.User{
		Email:       email,
		Username:    name,
		FirebaseUID: &subject,
		IsActive:    true,
	}
	if identity.Picture != "" {
		picture := identity.Picture
		user.ProfilePicture = &picture
	}

	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent first login for the same subject may have won the insert
		if winner, findErr := s.users.FindByFirebaseUID(ctx, subject); findErr == nil {
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("provisioned user", slog.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	if !user.IsActive {
		return nil, errAccountDeactivated
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &Session{User: user, Tokens: pair}, nil
}

// Rotate issues a new access token from a refresh token. The session keeps the
// absolute expiry of the refresh token that started it.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*Refreshed, error) {
	if refreshToken == "" {
		return nil, apierrors.Unauthenticated(apierrors.ErrCodeRefreshTokenNotFound, "Refresh token not found")
	}

	expired := apierrors.Unauthenticated(apierrors.ErrCodeTokenExpired, "Refresh token is invalid or expired")

	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, expired
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expired
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, expired
	}

	access, _, err := s.tokens.IssueAccess(user.ID, user.Email, claims.SessionIssuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	result := &Refreshed{Access: access, RefreshExpiresAt: claims.ExpiresAt.Time}
	if s.rotate {
		refresh, exp, err := s.tokens.RotateRefresh(claims)
		if err != nil {
			return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		result.Refresh = refresh
		result.RefreshExpiresAt = exp
	}
	return result, nil
}

// Verify reports whether token is a valid access or refresh token.
func (s *AuthService) Verify(token string) error {
	if token == "" {
		return apierrors.InvalidField("token", "Token is required")
	}
	if _, err := s.tokens.Parse(token, auth.TokenTypeAccess); err == nil {
		return nil
	}
	_, err := s.tokens.Parse(token, auth.TokenTypeRefresh)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrTokenExpired):
		return apierrors.Unauthenticated(apierrors.ErrCodeTokenExpired, "Token is expired")
	default:
		return apierrors.Unauthenticated("", "Token is invalid")
	}
}

// SignupInput represents the required information to create a local account.
type SignupInput struct {
	Email    string
	Password string
	Username string
}

// Signup creates an account that signs in with a password.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apierrors.InvalidField("email", "Email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apierrors.InvalidField("password", fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	}
	if len(input.Password) > constants.MaxPasswordLength {
		return nil, apierrors.InvalidField("password", fmt.Sprintf("Password must be at most %d bytes", constants.MaxPasswordLength))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apierrors.Conflicting("A user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = email
	}
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// PasswordLogin starts a session for a local account. Federated accounts have no
// password and fail exactly like a wrong password.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password string) (*Session, error) {
	invalid := apierrors.Unauthenticated(apierrors.ErrCodeInvalidCredentials, "Invalid email or password")

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.HasPassword() {
		return nil, invalid
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return s.startSession(ctx, user)
}

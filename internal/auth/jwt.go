package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims are the JWT claims of both access and refresh tokens.
// SessionIssuedAt is carried over on rotation so a session has an absolute lifetime.
type Claims struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	TokenType       TokenType `json:"token_type"`
	SessionIssuedAt int64     `json:"sess_iat"`
	jwt.RegisteredClaims
}

// TokenPair is issued on login.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenService signs and validates HS256 tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair starts a new session for the user.
func (s *TokenService) IssuePair(userID, email string) (*TokenPair, error) {
	now := s.now()
	refreshExp := now.Add(s.refreshTTL)

	access, accessExp, err := s.IssueAccess(userID, email, now.Unix())
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, email, TokenTypeRefresh, now.Unix(), now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess signs an access token for an existing session.
func (s *TokenService) IssueAccess(userID, email string, sessionIssuedAt int64) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	token, err := s.sign(userID, email, TokenTypeAccess, sessionIssuedAt, now, exp)
	return token, exp, err
}

// RotateRefresh signs a new refresh token that keeps the expiry of the one it replaces.
func (s *TokenService) RotateRefresh(old *Claims) (string, time.Time, error) {
	exp := old.ExpiresAt.Time
	token, err := s.sign(old.UserID, old.Email, TokenTypeRefresh, old.SessionIssuedAt, s.now(), exp)
	return token, exp, err
}

func (s *TokenService) sign(userID, email string, typ TokenType, sessionIssuedAt int64, now, exp time.Time) (string, error) {
	claims := Claims{
		UserID:          userID,
		Email:           email,
		TokenType:       typ,
		SessionIssuedAt: sessionIssuedAt,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse validates tokenString and checks that it is of the wanted type.
// An expired token yields ErrTokenExpired; anything else wrong yields ErrTokenInvalid.
func (s *TokenService) Parse(tokenString string, want TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.TokenType != want || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

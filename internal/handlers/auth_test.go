package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/group-study-api/internal/auth"
	"github.com/yukikurage/group-study-api/internal/constants"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/middleware"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/services"
	"github.com/yukikurage/group-study-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubVerifier struct {
	identity *auth.ExternalIdentity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (*auth.ExternalIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type authTestEnv struct {
	db       *gorm.DB
	tokens   *auth.TokenService
	verifier *stubVerifier
	router   *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	tokens := auth.NewTokenService("0123456789abcdef0123456789abcdef", "group-study-test", 15*time.Minute, time.Hour)
	verifier := &stubVerifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := services.NewAuthService(userRepo, tokens, auth.NewPasswordService(bcrypt.MinCost), verifier, true, logger)
	handler := NewAuthHandler(authService, services.NewUserService(userRepo), CookieSettings{Path: "/api/"})

	r := gin.New()
	session := r.Group("/api")
	session.Use(sessions.Sessions(constants.RefreshCookieName, cookie.NewStore([]byte("secret"))))
	session.POST("/login", handler.Login)
	session.POST("/logout", handler.Logout)
	session.POST("/token", handler.PasswordLogin)
	session.POST("/token/refresh", handler.Refresh)
	r.POST("/api/token/verify", handler.Verify)
	r.POST("/api/users", handler.Signup)
	r.GET("/api/me", middleware.RequireAuth(tokens), handler.GetCurrentUser)

	return authTestEnv{db: db, tokens: tokens, verifier: verifier, router: r}
}

func (env authTestEnv) post(t *testing.T, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.RefreshCookieName {
			return c
		}
	}
	return nil
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthHandler_LoginSetsRefreshCookie(t *testing.T) {
	env := setupAuthTestEnv(t)
	env.verifier.identity = &auth.ExternalIdentity{Subject: "fb-1", Email: "alice@example.com", Name: "Alice"}

	w := env.post(t, "/api/login", map[string]string{"token": "firebase-id-token"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AuthToken)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	c := refreshCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, "/api/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.InDelta(t, time.Hour.Seconds(), float64(c.MaxAge), 5)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AuthToken)
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.post(t, "/api/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.verifier.err = &auth.RejectionError{Reason: "ID token has expired"}
	w = env.post(t, "/api/login", map[string]string{"token": "stale"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeExternalVerification, errorCode(t, w))
	assert.Nil(t, refreshCookie(w))

	env.verifier.err = auth.ErrVerifierTimeout
	w = env.post(t, "/api/login", map[string]string{"token": "slow"})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := setupAuthTestEnv(t)
	env.verifier.identity = &auth.ExternalIdentity{Subject: "fb-1", Email: "alice@example.com"}

	w := env.post(t, "/api/token/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeRefreshTokenNotFound, errorCode(t, w))

	login := env.post(t, "/api/login", map[string]string{"token": "firebase-id-token"})
	require.Equal(t, http.StatusOK, login.Code)
	c := refreshCookie(login)
	require.NotNil(t, c)

	w = env.post(t, "/api/token/refresh", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)
	assert.NotNil(t, refreshCookie(w))

	_, err := env.tokens.Parse(resp.Access, auth.TokenTypeAccess)
	assert.NoError(t, err)
}

func TestAuthHandler_LogoutClearsCookie(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.post(t, "/api/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	c := refreshCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, "/api/", c.Path)
	assert.Less(t, c.MaxAge, 0)
}

func TestAuthHandler_SignupPasswordLoginAndVerify(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.post(t, "/api/users", map[string]string{"email": "bob@example.com", "password": "long enough", "username": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(t, "/api/users", map[string]string{"email": "not-an-email", "password": "long enough"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)

	w = env.post(t, "/api/token", map[string]string{"email": "bob@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, errorCode(t, w))

	w = env.post(t, "/api/token", map[string]string{"email": "bob@example.com", "password": "long enough"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = env.post(t, "/api/token/verify", map[string]string{"token": resp.AuthToken})
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.post(t, "/api/token/verify", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

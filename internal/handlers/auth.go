package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/constants"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/services"
)

// CookieSettings controls the refresh token cookie.
type CookieSettings struct {
	Path   string
	Secure bool
}

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cookie      CookieSettings
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookie:      cookie,
		now:         time.Now,
	}
}

// Login exchanges an identity provider token for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Exchange(c.Request.Context(), req.Token)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.startSession(c, session)
}

// PasswordLogin starts a session for an account with a local password.
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	type PasswordLoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req PasswordLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.PasswordLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.startSession(c, session)
}

func (h *AuthHandler) startSession(c *gin.Context, session *services.Session) {
	if err := h.saveRefresh(c, session.Tokens.Refresh, session.Tokens.RefreshExpiresAt); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AuthToken: session.Tokens.Access,
		User:      dto.ToUserDTO(*session.User),
	})
}

// Refresh issues a new access token from the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	session := sessions.Default(c)
	refresh, _ := session.Get(constants.SessionKeyRefresh).(string)

	result, err := h.authService.Rotate(c.Request.Context(), refresh)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if result.Refresh != "" {
		if err := h.saveRefresh(c, result.Refresh, result.RefreshExpiresAt); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Access: result.Access,
		Detail: "Token refreshed",
	})
}

// Logout clears the refresh cookie. It succeeds whether or not there was one.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(h.cookieOptions(-1))
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detail": "Logged out successfully",
	})
}

// Verify reports whether a token is valid.
func (h *AuthHandler) Verify(c *gin.Context) {
	type VerifyRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Verify(req.Token); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Signup registers a local account.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username" binding:"omitempty,max=150"`
	}

	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// saveRefresh stores the refresh token in the cookie until the session's absolute expiry
func (h *AuthHandler) saveRefresh(c *gin.Context, token string, expiresAt time.Time) error {
	maxAge := int(expiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyRefresh, token)
	session.Options(h.cookieOptions(maxAge))
	return session.Save()
}

func (h *AuthHandler) cookieOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     h.cookie.Path,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

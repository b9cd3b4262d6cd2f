package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		kind       error
		wantStatus int
	}{
		{"invalid field", InvalidField("due_date", "due date must be in the future"), ErrInvalidRequest, http.StatusBadRequest},
		{"unauthenticated", Unauthenticated(ErrCodeTokenExpired, "expired"), ErrUnauthorized, http.StatusUnauthorized},
		{"denied", Denied("nope"), ErrForbidden, http.StatusForbidden},
		{"missing", Missing("class"), ErrNotFound, http.StatusNotFound},
		{"conflict", Conflicting("already joined"), ErrConflict, http.StatusConflict},
		{"verification", VerificationFailed("bad signature"), ErrExternalVerification, http.StatusUnauthorized},
		{"timeout", VerifierTimeout(), ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{"wrapped", fmt.Errorf("service: %w", Missing("task")), ErrNotFound, http.StatusNotFound},
		{"plain", stderrors.New("boom"), nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.kind != nil {
				assert.True(t, stderrors.Is(tt.err, tt.kind))
			}
			assert.Equal(t, tt.wantStatus, StatusFor(tt.err))
		})
	}
}

func TestRespond_DomainErrorWithField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, InvalidField("due_date", "due date must be in the future"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInvalidInput, body.Code)
	details, ok := body.Details.([]interface{})
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "due_date", details[0].(map[string]interface{})["field"])
}

func TestRespond_RefreshCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, Unauthenticated(ErrCodeRefreshTokenNotFound, "Refresh token not found"))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeRefreshTokenNotFound, body.Code)
}

func TestRespond_ValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type payload struct {
		Name string `json:"name" validate:"required"`
	}
	v := validator.New()
	err := v.Struct(payload{})
	require.Error(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInvalidInput, body.Code)
	assert.NotNil(t, body.Details)
}

func TestRespond_UnclassifiedIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Respond(c, stderrors.New("database is on fire"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "on fire")
}

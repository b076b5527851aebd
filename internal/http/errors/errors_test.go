package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"owner role", provisioning.ErrOwnerRoleNotFound, http.StatusNotFound, "Owner role not found"},
		{"email exists", provisioning.ErrEmailExists, http.StatusBadRequest, "Email already exists"},
		{"bad password", provisioning.ErrPasswordMismatch, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown account", provisioning.ErrInvalidCredentials, http.StatusNotFound, "Invalid email or password"},
		{"race loser", fmt.Errorf("mongo: %w", repository.ErrConflict), http.StatusConflict, "Resource already exists"},
		{"no db", repository.ErrNoDatabase, http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{"app error", ErrForbidden, http.StatusForbidden, ErrForbidden.Message},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			assert.Equal(t, tc.status, got.HTTPStatus)
			assert.Equal(t, tc.msg, got.Message)
		})
	}
}

func TestWithHelpersDoNotMutateCatalog(t *testing.T) {
	e := ErrBadRequest.WithMessage("x").WithDetail("y")
	assert.Equal(t, "x", e.Message)
	assert.Equal(t, "Bad request", ErrBadRequest.Message)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrValidation.WithDetail("email: must be a valid email"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["errorCode"])
	assert.Equal(t, "email: must be a valid email", body["detail"])
}

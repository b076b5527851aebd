package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

func TestReadJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","email":"a@b.io","extra":1}`))
		r.Header.Set("Content-Type", "application/json")
		var in signup
		require.True(t, ReadJSON(httptest.NewRecorder(), r, &in))
		assert.Equal(t, "Ana", in.Name)
	})

	t.Run("wrong content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		var in signup
		assert.False(t, ReadJSON(rec, r, &in))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("broken json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		var in signup
		assert.False(t, ReadJSON(rec, r, &in))
		assert.Contains(t, rec.Body.String(), "INVALID_JSON")
	})
}

func TestValidate(t *testing.T) {
	rec := httptest.NewRecorder()
	ok := Validate(rec, signup{Name: "Ana", Email: "nope", Password: "12"})

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email: must be a valid email")
	assert.Contains(t, rec.Body.String(), "password: must be at least 4 characters")

	assert.True(t, Validate(httptest.NewRecorder(), signup{Name: "Ana", Email: "a@b.io", Password: "1234"}))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

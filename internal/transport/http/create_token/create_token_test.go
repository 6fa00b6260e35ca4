package createtoken

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	result   json.RawMessage
	err      error
	lastCode string
}

func (s *fakeService) CreateAccessToken(_ context.Context, code string) (json.RawMessage, error) {
	s.lastCode = code
	return s.result, s.err
}

func TestCreateToken(t *testing.T) {
	svc := &fakeService{result: json.RawMessage(`{"access_token": "t-1", "expires_in": 2592000}`)}

	r := httptest.NewRequest(http.MethodGet, "/api/daraz/token?code=auth-code-1", nil)
	w := httptest.NewRecorder()

	CreateToken(w, r, svc)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "auth-code-1", svc.lastCode)
	assert.JSONEq(t, `{"access_token": "t-1", "expires_in": 2592000}`, w.Body.String())
}

func TestCreateTokenMissingCode(t *testing.T) {
	svc := &fakeService{}

	r := httptest.NewRequest(http.MethodGet, "/api/daraz/token", nil)
	w := httptest.NewRecorder()

	CreateToken(w, r, svc)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.lastCode)
}

func TestCreateTokenServiceError(t *testing.T) {
	svc := &fakeService{err: errors.New("marketplace returned 403 Forbidden")}

	r := httptest.NewRequest(http.MethodGet, "/api/daraz/token?code=bad", nil)
	w := httptest.NewRecorder()

	CreateToken(w, r, svc)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

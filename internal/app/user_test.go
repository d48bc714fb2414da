package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/room-rental-backend/internal/user"
	userHttp "github.com/nekogravitycat/room-rental-backend/internal/user/http"
)

func TestAuthFlow(t *testing.T) {
	requireDB(t)
	clearTables(t)

	w := executeRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"email": "new@example.com", "password": "password123", "display_name": "New",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "user", decode[userHttp.MeResponse](t, w).User.Role)

	w = executeRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"email": "new@example.com", "password": "password123", "display_name": "New",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = executeRequest(http.MethodPost, "/v1/auth/login", map[string]any{"email": "new@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = executeRequest(http.MethodPost, "/v1/auth/login", map[string]any{"email": "new@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[userHttp.LoginResponse](t, w)
	require.NotEmpty(t, login.AccessToken)

	w = executeRequest(http.MethodGet, "/v1/me", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", decode[userHttp.MeResponse](t, w).User.Email)
}

func TestAdminPromotesOrganizer(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, adminToken := createTestUser(t, "admin@example.com", user.RoleAdmin)
	u, userToken := createTestUser(t, "someone@example.com", user.RoleUser)

	w := executeRequest(http.MethodPatch, "/v1/users/"+u.ID, map[string]any{"role": "organizer"}, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(http.MethodPatch, "/v1/users/"+u.ID, map[string]any{"role": "organizer"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "organizer", decode[userHttp.MeResponse](t, w).User.Role)

	// The new role applies without a new token.
	w = executeRequest(http.MethodPost, "/v1/rooms", map[string]any{"name": "Room", "capacity": 3}, userToken)
	assert.Equal(t, http.StatusCreated, w.Code)
}

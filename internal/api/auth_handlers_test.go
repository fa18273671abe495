package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRootUser runs the setup endpoint and returns the envelope data map.
func setupRootUser(t *testing.T, server *Server) map[string]any {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/setup", "", SetupRequest{
		Email:       "root@example.com",
		Password:    "correct horse battery",
		DisplayName: "Root",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestSetup_CreatesRootUser(t *testing.T) {
	server := setupTestServer(t)

	data := setupRootUser(t, server)

	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root@example.com", user["email"])
	assert.Equal(t, true, user["is_root"])
}

func TestSetup_OnlyOnce(t *testing.T) {
	server := setupTestServer(t)
	setupRootUser(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/setup", "", SetupRequest{
		Email:       "second@example.com",
		Password:    "another password",
		DisplayName: "Second",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "ALREADY_CONFIGURED", env.Code)
}

func TestLogin_Success(t *testing.T) {
	server := setupTestServer(t)
	setupRootUser(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "root@example.com",
		Password: "correct horse battery",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["session_id"])
}

func TestLogin_WrongPassword(t *testing.T) {
	server := setupTestServer(t)
	setupRootUser(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "root@example.com",
		Password: "wrong password here",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	server := setupTestServer(t)
	data := setupRootUser(t, server)

	refreshToken, ok := data["refresh_token"].(string)
	require.True(t, ok)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: refreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	rotated, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, rotated["refresh_token"])
	assert.NotEqual(t, refreshToken, rotated["refresh_token"])

	// The old refresh token must be dead after rotation.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	server := setupTestServer(t)
	data := setupRootUser(t, server)

	sessionID, ok := data["session_id"].(string)
	require.True(t, ok)
	refreshToken, ok := data["refresh_token"].(string)
	require.True(t, ok)
	accessToken, ok := data["access_token"].(string)
	require.True(t, ok)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", accessToken, LogoutRequest{
		SessionID: sessionID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The session's refresh token no longer works.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListSessions(t *testing.T) {
	server := setupTestServer(t)
	data := setupRootUser(t, server)

	accessToken, ok := data["access_token"].(string)
	require.True(t, ok)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me/sessions", accessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	body, ok := env.Data.(map[string]any)
	require.True(t, ok)
	sessions, ok := body["sessions"].([]any)
	require.True(t, ok)
	assert.Len(t, sessions, 1)
}

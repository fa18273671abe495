package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/auth"
	"github.com/readkeepapp/readkeep-server/internal/config"
	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/id"
	"github.com/readkeepapp/readkeep-server/internal/search"
	"github.com/readkeepapp/readkeep-server/internal/service"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// testKeyHex is the PASETO key shared by all test token services (32 bytes hex).
const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(filepath.Join(tmpDir, "store"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	sessionService := service.NewSessionService(s, tokenService, logger)
	searchService := service.NewSearchService(index, s, logger)
	s.SetSearchIndexer(searchService)

	services := &Services{
		Auth:    service.NewAuthService(s, tokenService, sessionService, logger),
		Session: sessionService,
		Book:    service.NewBookService(s, logger),
		Import:  service.NewImportService(s, logger),
		Stats:   service.NewStatsService(s, logger),
		Search:  searchService,
		Genre:   service.NewGenreService(s),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name: "Test Server",
		},
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
		},
	}

	server := NewServer(cfg, s, services, logger)
	t.Cleanup(server.Close)
	return server
}

// createTestUserWithToken creates a user directly in the store and returns a
// valid access token for it.
func createTestUserWithToken(t *testing.T, server *Server) string {
	t.Helper()
	return createUserWithToken(t, server, "reader@example.com")
}

func createUserWithToken(t *testing.T, server *Server, email string) string {
	t.Helper()

	ctx := context.Background()

	userID, err := id.Generate(id.PrefixUser)
	require.NoError(t, err)

	user := &domain.User{
		Syncable: domain.Syncable{
			ID: userID,
		},
		Email:       email,
		DisplayName: "Test Reader",
	}
	user.InitTimestamps()

	require.NoError(t, server.store.Users.Create(ctx, user.ID, user))

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := tokenService.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

// doJSON runs a JSON request against the server and returns the recorder.
func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals a response body into the envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, 1, env.V)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "healthy", data["status"])
}

func TestGetCurrentUser(t *testing.T) {
	server := setupTestServer(t)
	token := createTestUserWithToken(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reader@example.com", data["email"])
	assert.Equal(t, "Test Reader", data["display_name"])
}

func TestGetCurrentUser_Unauthorized(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestGetCurrentUser_GarbageToken(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", "not-a-token", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

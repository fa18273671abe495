package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchBooks(t *testing.T) {
	server := setupTestServer(t)
	token := createTestUserWithToken(t, server)

	createBookViaAPI(t, server, token, "A Psalm for the Wild-Built")
	createBookViaAPI(t, server, token, "A Prayer for the Crown-Shy")

	// Indexing runs in the background; rebuild for a deterministic index.
	_, err := server.services.Search.RebuildIndex(context.Background())
	require.NoError(t, err)

	w := doJSON(t, server, http.MethodGet, "/api/v1/search?q=psalm", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total"])

	hits, ok := data["hits"].([]any)
	require.True(t, ok)
	require.Len(t, hits, 1)

	hit, ok := hits[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A Psalm for the Wild-Built", hit["title"])
}

func TestSearchBooks_ScopedToOwner(t *testing.T) {
	server := setupTestServer(t)
	owner := createTestUserWithToken(t, server)
	stranger := createUserWithToken(t, server, "other@example.com")

	createBookViaAPI(t, server, owner, "Private Library Book")

	_, err := server.services.Search.RebuildIndex(context.Background())
	require.NoError(t, err)

	w := doJSON(t, server, http.MethodGet, "/api/v1/search?q=private", stranger, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), data["total"])
}

func TestSearchBooks_Unauthorized(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/search?q=anything", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRebuildIndex_RequiresRoot(t *testing.T) {
	server := setupTestServer(t)
	token := createTestUserWithToken(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/search/rebuild", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRebuildIndex_AsRoot(t *testing.T) {
	server := setupTestServer(t)
	data := setupRootUser(t, server)

	token, ok := data["access_token"].(string)
	require.True(t, ok)

	createBookViaAPI(t, server, token, "Indexed Book")

	w := doJSON(t, server, http.MethodPost, "/api/v1/search/rebuild", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	result, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), result["indexed"])
}

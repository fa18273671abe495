package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGenres(t *testing.T) {
	server := setupTestServer(t)
	token := createTestUserWithToken(t, server)

	createBookViaAPI(t, server, token, "Book One")
	createBookViaAPI(t, server, token, "Book Two")

	w := doJSON(t, server, http.MethodGet, "/api/v1/genres", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)

	genres, ok := data["genres"].([]any)
	require.True(t, ok)
	require.Len(t, genres, 1)

	top, ok := genres[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Science Fiction", top["name"])
	assert.Equal(t, "science-fiction", top["slug"])
	assert.Equal(t, float64(2), top["count"])

	known, ok := data["known"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, known)
}

func TestListGenres_Unauthorized(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/genres", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

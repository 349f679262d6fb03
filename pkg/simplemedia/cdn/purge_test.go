package cdn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPurger(t *testing.T) {
	var received purgeRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	edge := NewEdge("https://cdn.example.com", NewHTTPPurger(server.URL, "secret"))
	require.NoError(t, edge.Flush(context.Background(), []string{"default/ab/cd/x.txt"}))

	assert.Equal(t, []string{"https://cdn.example.com/default/ab/cd/x.txt"}, received.URLs)
	assert.Equal(t, "Bearer secret", auth)
}

func TestHTTPPurger_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewHTTPPurger(server.URL, "").Flush(context.Background(), []string{"a"})
	assert.Error(t, err)

	// the fallback absorbs the failure
	fallback := NewFallback(NewEdge("https://cdn", NewHTTPPurger(server.URL, "")), NewServer("https://cdn"))
	assert.NoError(t, fallback.Flush(context.Background(), []string{"a"}))
}

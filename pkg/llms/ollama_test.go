package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3:8b", req.Model)
		assert.False(t, req.Stream)

		require.NoError(t, json.NewEncoder(w).Encode(ollamaResponse{
			Model:    req.Model,
			Response: "generated text",
		}))
	}))
	defer server.Close()

	llm, err := NewOllamaLLM(server.URL, "llama3:8b")
	require.NoError(t, err)

	resp, err := llm.Generate(context.Background(), "write something")
	require.NoError(t, err)
	assert.Equal(t, "generated text", resp.Content)
}

func TestOllamaRequiresModel(t *testing.T) {
	_, err := NewOllamaLLM("", "")
	assert.Error(t, err)
}

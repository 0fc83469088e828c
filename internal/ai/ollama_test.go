package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
}

func newFakeOllama(t *testing.T, reply string, status int, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"api_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "llama3.1:8b",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": reply},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaClientComplete(t *testing.T) {
	var captured capturedRequest
	srv := newFakeOllama(t, `[{"question":"q"}]`, http.StatusOK, &captured)

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL + "/", Model: "llama3.1:8b"})
	out, err := client.Complete(context.Background(), "make a quiz")
	require.NoError(t, err)

	assert.Equal(t, `[{"question":"q"}]`, out)
	assert.Equal(t, "llama3.1:8b", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, string(captured.Messages[0]), `"role":"user"`)
	assert.Contains(t, string(captured.Messages[0]), "make a quiz")
}

func TestOllamaClientCompleteWithMediaUsesVisionModel(t *testing.T) {
	var captured capturedRequest
	srv := newFakeOllama(t, `{"confidence":7}`, http.StatusOK, &captured)

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3.1:8b", VisionModel: "llava"})
	out, err := client.CompleteWithMedia(context.Background(), "analyze", Media{MimeType: "image/jpeg", Data: []byte{1, 2, 3}})
	require.NoError(t, err)

	assert.Equal(t, `{"confidence":7}`, out)
	assert.Equal(t, "llava", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, string(captured.Messages[0]), "data:image/jpeg;base64,AQID")
}

func TestOllamaClientSurfacesErrors(t *testing.T) {
	srv := newFakeOllama(t, "", http.StatusNotFound, nil)

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "missing"})
	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	_, err = client.CompleteWithMedia(context.Background(), "hi", Media{})
	assert.Error(t, err)
}

func TestMediaDataURLDefaultsMimeType(t *testing.T) {
	assert.Equal(t, "data:application/octet-stream;base64,AA==", Media{Data: []byte{0}}.DataURL())
}

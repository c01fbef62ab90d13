package localllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content[0].Text, "from Hebrew to English")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{Choices: []Choice{{Message: ResponseMessage{Role: "assistant", Content: "\"Green salad\"\n"}}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", time.Second)
	out, err := c.Translate(context.Background(), "סלט ירוק", "he", "en")
	require.NoError(t, err)
	assert.Equal(t, "Green salad", out)
}

func TestTranslateErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "", time.Second).Translate(context.Background(), "x", "en", "he")
		assert.Error(t, err)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "", time.Second).Translate(context.Background(), "x", "en", "he")
		assert.Error(t, err)
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "", 0)
	assert.Equal(t, DefaultURL, c.apiURL)
	assert.Equal(t, DefaultModel, c.model)
}

package chatreply

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanned(t *testing.T) {
	got, err := Canned("").Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, DefaultReply, got)

	got, err = Canned("hi there").Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}

func TestHTTP_Reply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(response{Reply: "echo: " + req.Message})
	}))
	defer srv.Close()

	got, err := NewHTTP(srv.URL, 0).Reply(context.Background(), "how are you")
	require.NoError(t, err)
	assert.Equal(t, "echo: how are you", got)
}

func TestHTTP_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 0).Reply(context.Background(), "hi")
	assert.ErrorContains(t, err, "status=503")
	assert.ErrorContains(t, err, "model offline")
}

func TestHTTP_OversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(response{Reply: strings.Repeat("a", maxReplyBytes)})
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 0).Reply(context.Background(), "hi")
	assert.ErrorContains(t, err, "exceeds")
}

func TestNew_SelectsImplementation(t *testing.T) {
	assert.IsType(t, Canned(""), New("  ", 0))
	assert.IsType(t, &HTTP{}, New("http://localhost:9", 0))
}

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSenderPostsPayloadWithAPIKey(t *testing.T) {
	var gotKey, gotContentType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-merchant-api-key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	sender := NewSender(time.Second)
	status, body, err := sender.Post(context.Background(), server.URL, "key-123", []byte(`{"event":"CANCELED"}`))

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, `{"received":true}`, body)
	require.Equal(t, "key-123", gotKey)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, map[string]any{"event": "CANCELED"}, gotBody)
}

func TestSenderReturnsNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewSender(time.Second)
	status, _, err := sender.Post(context.Background(), server.URL, "key-123", []byte(`{}`))

	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, status)
}

func TestSenderReportsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	sender := NewSender(time.Second)
	status, body, err := sender.Post(context.Background(), server.URL, "key-123", []byte(`{}`))

	require.Error(t, err)
	require.Zero(t, status)
	require.Empty(t, body)
}

func TestSenderHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sender := NewSender(time.Minute)
	_, _, err := sender.Post(ctx, server.URL, "key-123", []byte(`{}`))
	require.Error(t, err)
}

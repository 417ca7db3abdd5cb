package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/models/gemini-2.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "k-123", r.URL.Query().Get("key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Find me a flat in Leeds", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Here are some options"}]}}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k-123"}, srv.Client())
	require.Equal(t, DefaultModel, c.Model())

	got, err := c.Send(context.Background(), "Find me a flat in Leeds")
	require.NoError(t, err)
	require.Equal(t, "Here are some options", got)
}

func TestSend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL, APIKey: "bad"}, srv.Client()).Send(context.Background(), "hi")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Contains(t, httpErr.Body, "API key not valid")
	require.Contains(t, err.Error(), "HTTP error 400")
}

func TestSend_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", ``, ErrNoData},
		{"not json", `<html>`, ErrInvalidResponse},
		{"no candidates", `{"candidates":[]}`, ErrInvalidResponse},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(Config{BaseURL: srv.URL, APIKey: "k"}, srv.Client()).Send(context.Background(), "hi")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSend_NoKey(t *testing.T) {
	_, err := New(Config{}, nil).Send(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNoAPIKey)
}

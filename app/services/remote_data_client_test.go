package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/orochi-admin/app/form"
	"github.com/amirphl/orochi-admin/config"
)

func newTestRemoteClient(t *testing.T, handler http.HandlerFunc) RemoteDataClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteDataClient(config.LookupConfig{BaseURL: srv.URL, Token: "secret", Timeout: 5 * time.Second})
}

func TestFetchOptionsBareArray(t *testing.T) {
	client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cities", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["Tehran", {"value": "Shiraz"}, {"name": "Tabriz"}]`))
	})

	options, err := client.FetchOptions(context.Background(), "/api/cities")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tehran", "Shiraz", "Tabriz"}, options)
}

func TestFetchOptionsEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"data array", `{"success": true, "message": "ok", "data": ["a", "b"]}`, []string{"a", "b"}},
		{"data items", `{"success": true, "message": "ok", "data": {"items": [{"label": "x"}]}}`, []string{"x"}},
		{"null data", `{"success": true, "message": "ok", "data": null}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			options, err := client.FetchOptions(context.Background(), "/opts")
			require.NoError(t, err)
			assert.Equal(t, tt.want, options)
		})
	}
}

func TestSearchSubstitutesQuery(t *testing.T) {
	client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/search", r.URL.Path)
		assert.Equal(t, "john doe", r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`[{"id": 7, "label": "John Doe"}, {"id": "u-9", "name": "Johnny"}]`))
	})

	results, err := client.Search(context.Background(), "/api/users/search?term={query}", "john doe")
	require.NoError(t, err)
	assert.Equal(t, []form.SearchResult{{ID: "7", Label: "John Doe"}, {ID: "u-9", Label: "Johnny"}}, results)
}

func TestSearchAppendsQueryParam(t *testing.T) {
	client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jo", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[]`))
	})

	results, err := client.Search(context.Background(), "/api/users", "jo")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemoteErrorMessages(t *testing.T) {
	t.Run("server message is surfaced", func(t *testing.T) {
		client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success": false, "message": "endpoint disabled"}`))
		})
		_, err := client.FetchOptions(context.Background(), "/opts")
		require.Error(t, err)

		var re *RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusBadRequest, re.Status)
		assert.Equal(t, "endpoint disabled", re.UserMessage())
	})

	t.Run("generic message without body", func(t *testing.T) {
		client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.Search(context.Background(), "/search", "x")
		require.Error(t, err)

		var re *RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, DefaultRemoteErrorMessage, re.UserMessage())
	})

	t.Run("unsuccessful envelope", func(t *testing.T) {
		client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "message": "quota exceeded"}`))
		})
		_, err := client.FetchOptions(context.Background(), "/opts")
		assert.True(t, IsRemoteError(err))
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("missing id", func(t *testing.T) {
		client := newTestRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"label": "nobody"}]`))
		})
		_, err := client.Search(context.Background(), "/search", "x")
		assert.True(t, IsRemoteError(err))
	})

	t.Run("empty endpoint", func(t *testing.T) {
		client := NewRemoteDataClient(config.LookupConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := client.FetchOptions(context.Background(), "")
		assert.True(t, IsRemoteError(err))
	})
}

func TestRemoteErrorFallsBackToCause(t *testing.T) {
	err := &RemoteError{Err: context.DeadlineExceeded}
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, DefaultRemoteErrorMessage, err.UserMessage())
}

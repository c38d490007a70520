package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/points-api/internal/config"
)

func newTestClient(t *testing.T, maxPages int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(config.TwitterConfig{
		BaseURL:        server.URL,
		APIKey:         "secret-key",
		RequestTimeout: 2 * time.Second,
		MaxPages:       maxPages,
	})
}

func TestHasReplied_FollowsCursor(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, 5, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/twitter/tweet/replies", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "12345", r.URL.Query().Get("tweetId"))

		switch r.URL.Query().Get("cursor") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tweets":        []map[string]any{{"id": "1", "author": map[string]any{"userName": "bob"}}},
				"has_next_page": true,
				"next_cursor":   "page-2",
			})
		case "page-2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tweets":        []map[string]any{{"id": "2", "author": map[string]any{"userName": "Alice"}}},
				"has_next_page": false,
			})
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	})

	ok, err := client.HasReplied(context.Background(), "12345", "alice")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHasRetweeted_NotFound(t *testing.T) {
	client := newTestClient(t, 5, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/twitter/tweet/retweeters", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users":         []map[string]any{{"userName": "carol"}},
			"has_next_page": false,
		})
	})

	ok, err := client.HasRetweeted(context.Background(), "12345", "alice")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScan_StopsAtMaxPages(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tweets":        []map[string]any{},
			"has_next_page": true,
			"next_cursor":   "again",
		})
	})

	ok, err := client.HasQuoted(context.Background(), "1", "alice")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFollows(t *testing.T) {
	client := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/twitter/user/followings", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("userName"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"followings":    []map[string]any{{"userName": "pointsproject"}},
			"has_next_page": false,
		})
	})

	ok, err := client.Follows(context.Background(), "alice", "@PointsProject")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFetch_ErrorStatus(t *testing.T) {
	client := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.HasReplied(context.Background(), "1", "alice")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

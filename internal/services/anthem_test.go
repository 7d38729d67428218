package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mememates-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpotifyStub(t *testing.T, searchBody interface{}) (*httptest.Server, *int) {
	t.Helper()
	tokenRequests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "stub-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stub-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(searchBody)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenRequests
}

func stubSearchBody() map[string]interface{} {
	return map[string]interface{}{
		"tracks": map[string]interface{}{
			"total": 2,
			"items": []map[string]interface{}{
				{
					"id":   "track-1",
					"name": "Song One",
					"artists": []map[string]string{
						{"name": "Artist A"},
						{"name": "Artist B"},
					},
					"album": map[string]interface{}{
						"images": []map[string]interface{}{
							{"url": "https://i.scdn.co/image/small", "width": 64},
							{"url": "https://i.scdn.co/image/large", "width": 640},
							{"url": "https://i.scdn.co/image/medium", "width": 300},
						},
					},
					"preview_url": "https://p.scdn.co/preview/1",
					"external_urls": map[string]string{
						"spotify": "https://open.spotify.com/track/1",
					},
				},
				{
					"id":   "track-2",
					"name": "Song Two",
					"artists": []map[string]string{
						{"name": "Artist C"},
					},
					"album": map[string]interface{}{
						"images": []map[string]interface{}{
							{"url": "https://evil.example/image/x", "width": 640},
						},
					},
					"external_urls": map[string]string{
						"spotify": "https://open.spotify.com/track/2",
					},
				},
			},
		},
	}
}

func newStubbedAnthemService(server *httptest.Server) *AnthemService {
	svc := NewAnthemService("client-id", "client-secret")
	svc.tokenURL = server.URL + "/token"
	svc.searchURL = server.URL + "/search"
	return svc
}

func TestAnthemSearchMapsTracks(t *testing.T) {
	server, _ := newSpotifyStub(t, stubSearchBody())
	svc := newStubbedAnthemService(server)

	tracks, total, err := svc.Search(context.Background(), "song")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// The second item's art is off-host, so only one track survives.
	require.Len(t, tracks, 1)
	track := tracks[0]
	assert.Equal(t, "track-1", track.ID)
	assert.Equal(t, "Artist A, Artist B", track.Artist)
	assert.Equal(t, "https://i.scdn.co/image/large", track.AlbumArt)
	require.NotNil(t, track.PreviewURL)
	assert.Equal(t, "https://p.scdn.co/preview/1", *track.PreviewURL)
}

func TestAnthemSearchReusesCachedToken(t *testing.T) {
	server, tokenRequests := newSpotifyStub(t, stubSearchBody())
	svc := newStubbedAnthemService(server)

	_, _, err := svc.Search(context.Background(), "song")
	require.NoError(t, err)
	_, _, err = svc.Search(context.Background(), "another song")
	require.NoError(t, err)

	assert.Equal(t, 1, *tokenRequests)
}

func TestAnthemSearchRequiresQuery(t *testing.T) {
	svc := NewAnthemService("client-id", "client-secret")

	_, _, err := svc.Search(context.Background(), "")
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestAnthemSearchWithoutCredentials(t *testing.T) {
	svc := NewAnthemService("", "")

	_, _, err := svc.Search(context.Background(), "song")
	assertCode(t, err, apperrors.CodeUnavailable)
	assert.Equal(t, "Spotify credentials not configured", err.(*apperrors.AppError).Message)
}

func TestAnthemSearchUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "stub-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	svc := newStubbedAnthemService(server)
	_, _, err := svc.Search(context.Background(), "song")
	assertCode(t, err, apperrors.CodeInternal)
}

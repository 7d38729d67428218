package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifySearchURL = "https://api.spotify.com/v1/search"

	// Album art from any other host fails the shape check and is dropped.
	spotifyImageHost = "https://i.scdn.co/image/"

	anthemSearchLimit = 10
	anthemHTTPTimeout = 10 * time.Second
	tokenExpirySlack  = 30 * time.Second
)

// AnthemService proxies song search to Spotify using the client-credentials
// flow. The service-to-service token is cached and reused until it expires.
type AnthemService struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	tokenURL  string
	searchURL string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAnthemService creates a new anthem search service
func NewAnthemService(clientID, clientSecret string) *AnthemService {
	return &AnthemService{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: anthemHTTPTimeout},
		tokenURL:     spotifyTokenURL,
		searchURL:    spotifySearchURL,
	}
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Total int `json:"total"`
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Images []struct {
					URL   string `json:"url"`
					Width int    `json:"width"`
				} `json:"images"`
			} `json:"album"`
			PreviewURL   *string `json:"preview_url"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
		} `json:"items"`
	} `json:"tracks"`
}

// accessTokenFor returns a cached token or exchanges client credentials for
// a fresh one. Credential failure is non-retryable without operator
// intervention, so it is reported distinctly from search failure.
func (s *AnthemService) accessTokenFor(ctx context.Context) (string, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return "", apperrors.New(apperrors.CodeUnavailable, "Spotify credentials not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnavailable, "Failed to obtain Spotify access token", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnavailable, "Failed to obtain Spotify access token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.CodeUnavailable,
			fmt.Sprintf("Failed to obtain Spotify access token: status %d", resp.StatusCode))
	}

	var token spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnavailable, "Failed to obtain Spotify access token", err)
	}

	s.accessToken = token.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySlack)
	return s.accessToken, nil
}

// Search looks up tracks matching the query and maps them into the internal
// track shape: best album art by width, artists joined, entries without a
// qualifying art URL dropped.
func (s *AnthemService) Search(ctx context.Context, query string) ([]models.Track, int, error) {
	if query == "" {
		return nil, 0, apperrors.InvalidArg("Search query is required")
	}

	accessToken, err := s.accessTokenFor(ctx)
	if err != nil {
		return nil, 0, err
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprintf("%d", anthemSearchLimit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, "Failed to search songs", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, "Failed to search songs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("Failed to search songs: status %d", resp.StatusCode))
	}

	var search spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, "Failed to search songs", err)
	}

	tracks := make([]models.Track, 0, len(search.Tracks.Items))
	for _, item := range search.Tracks.Items {
		albumArt := ""
		bestWidth := -1
		for _, image := range item.Album.Images {
			if image.Width > bestWidth {
				albumArt = image.URL
				bestWidth = image.Width
			}
		}
		if !strings.HasPrefix(albumArt, spotifyImageHost) {
			continue
		}

		artists := make([]string, 0, len(item.Artists))
		for _, artist := range item.Artists {
			artists = append(artists, artist.Name)
		}

		tracks = append(tracks, models.Track{
			ID:          item.ID,
			Name:        item.Name,
			Artist:      strings.Join(artists, ", "),
			AlbumArt:    albumArt,
			PreviewURL:  item.PreviewURL,
			ExternalURL: item.ExternalURLs.Spotify,
		})
	}

	return tracks, search.Tracks.Total, nil
}

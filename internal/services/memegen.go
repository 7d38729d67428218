package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
)

const (
	imgflipBaseURL     = "https://api.imgflip.com"
	imgflipHTTPTimeout = 10 * time.Second
)

// MemeGenService proxies template listing and caption generation to the
// Imgflip API.
type MemeGenService struct {
	username   string
	password   string
	httpClient *http.Client
	baseURL    string
}

// NewMemeGenService creates a new meme generation service
func NewMemeGenService(username, password string) *MemeGenService {
	return &MemeGenService{
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: imgflipHTTPTimeout},
		baseURL:    imgflipBaseURL,
	}
}

type imgflipTemplatesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []models.MemeTemplate `json:"memes"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

type imgflipCaptionResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

// Templates returns the available meme templates, optionally filtered by a
// case-insensitive name substring.
func (s *MemeGenService) Templates(ctx context.Context, query string) ([]models.MemeTemplate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/get_memes", nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to fetch meme templates", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to fetch meme templates", err)
	}
	defer resp.Body.Close()

	var templates imgflipTemplatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&templates); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to fetch meme templates", err)
	}
	if !templates.Success {
		return nil, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("Failed to fetch meme templates: %s", templates.ErrorMessage))
	}

	if query == "" {
		return templates.Data.Memes, nil
	}

	needle := strings.ToLower(query)
	filtered := make([]models.MemeTemplate, 0, len(templates.Data.Memes))
	for _, template := range templates.Data.Memes {
		if strings.Contains(strings.ToLower(template.Name), needle) {
			filtered = append(filtered, template)
		}
	}
	return filtered, nil
}

// Generate captions a template with top and bottom text and returns the
// generated image URL.
func (s *MemeGenService) Generate(ctx context.Context, templateID, topText, bottomText string) (string, error) {
	if templateID == "" || topText == "" || bottomText == "" {
		return "", apperrors.InvalidArg("Template ID, top text, and bottom text are required")
	}
	if s.username == "" || s.password == "" {
		return "", apperrors.New(apperrors.CodeUnavailable, "Imgflip credentials not configured")
	}

	form := url.Values{
		"template_id": {templateID},
		"username":    {s.username},
		"password":    {s.password},
		"text0":       {topText},
		"text1":       {bottomText},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/caption_image", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Meme generation failed", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Meme generation failed", err)
	}
	defer resp.Body.Close()

	var caption imgflipCaptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&caption); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "Meme generation failed", err)
	}
	if !caption.Success {
		return "", apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("Meme generation failed: %s", caption.ErrorMessage))
	}

	return caption.Data.URL, nil
}

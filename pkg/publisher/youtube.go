package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPPublisher delegates uploads to a separate uploader service that holds
// the YouTube credentials. The empire process never touches OAuth tokens.
type HTTPPublisher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPublisher constructs a client for the uploader service at baseURL.
func NewHTTPPublisher(baseURL string) (*HTTPPublisher, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("uploader base url required")
	}
	return &HTTPPublisher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

type uploadRequest struct {
	Channel     string   `json:"channel"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AudioPath   string   `json:"audioPath"`
	CoverPath   string   `json:"coverPath,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type uploadResponse struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// Publish posts the upload job and waits for the uploader to finish it.
func (p *HTTPPublisher) Publish(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(uploadRequest{
		Channel:     req.Channel,
		Title:       req.Title,
		Description: req.Description,
		AudioPath:   req.AudioPath,
		CoverPath:   req.CoverPath,
		Tags:        req.Tags,
	})
	if err != nil {
		return Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/uploads", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("uploader request: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 400 {
		return Result{}, fmt.Errorf("decode uploader response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Error != "" {
			return Result{}, fmt.Errorf("uploader error: %s", out.Error)
		}
		return Result{}, fmt.Errorf("uploader error: %s", resp.Status)
	}
	if out.VideoID == "" {
		return Result{}, fmt.Errorf("uploader returned no video id")
	}
	return Result{VideoID: out.VideoID, URL: out.URL}, nil
}

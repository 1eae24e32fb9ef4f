package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultSunoBaseURL = "https://api.sunoapi.org"

// SunoProducer generates beats through the Suno HTTP API. Generation is
// asynchronous upstream: a create call returns a task id which is polled until
// the audio is rendered.
type SunoProducer struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	httpClient   *http.Client
}

// NewSunoProducer constructs a producer with the provided API key.
func NewSunoProducer(apiKey, baseURL string) (*SunoProducer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("suno api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultSunoBaseURL
	}
	return &SunoProducer{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        "chirp-v3-5",
		pollInterval: 10 * time.Second,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type sunoCreateRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	Instrumental bool   `json:"instrumental"`
	Tags         string `json:"tags,omitempty"`
}

type sunoCreateResponse struct {
	TaskID string `json:"taskId"`
}

type sunoTaskResponse struct {
	Status   string `json:"status"`
	AudioURL string `json:"audioUrl"`
	ImageURL string `json:"imageUrl"`
	Error    string `json:"error"`
}

// Produce submits a generation task and polls until it completes.
func (p *SunoProducer) Produce(ctx context.Context, genre, prompt string) (Track, error) {
	var created sunoCreateResponse
	req := sunoCreateRequest{
		Prompt:       prompt,
		Model:        p.model,
		Instrumental: true,
		Tags:         genre,
	}
	if err := p.doJSON(ctx, http.MethodPost, "/api/v1/generate", req, &created); err != nil {
		return Track{}, fmt.Errorf("create task: %w", err)
	}
	if created.TaskID == "" {
		return Track{}, fmt.Errorf("suno returned no task id")
	}

	for {
		select {
		case <-ctx.Done():
			return Track{}, ctx.Err()
		case <-time.After(p.pollInterval):
		}

		var task sunoTaskResponse
		if err := p.doJSON(ctx, http.MethodGet, "/api/v1/generate/"+created.TaskID, nil, &task); err != nil {
			return Track{}, fmt.Errorf("poll task %s: %w", created.TaskID, err)
		}
		switch task.Status {
		case "complete":
			if task.AudioURL == "" {
				return Track{}, fmt.Errorf("task %s complete without audio", created.TaskID)
			}
			return Track{
				ContentID: created.TaskID,
				AudioRef:  task.AudioURL,
				CoverRef:  task.ImageURL,
				Model:     p.model,
			}, nil
		case "failed", "error":
			return Track{}, fmt.Errorf("task %s failed: %s", created.TaskID, task.Error)
		}
	}
}

func (p *SunoProducer) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return fmt.Errorf("suno api error: %s", errResp.Message)
		}
		return fmt.Errorf("suno api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Listing holds the publishing copy for one beat.
type Listing struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverPrompt string `json:"coverPrompt"`
}

// Copywriter produces upload titles and descriptions for a beat.
type Copywriter interface {
	WriteListing(ctx context.Context, genre, mood string) (Listing, error)
}

const copywriterSystemPrompt = `You write YouTube metadata for instrumental beat uploads.
Respond with a single JSON object: {"title": ..., "description": ..., "coverPrompt": ...}.
Titles stay under 90 characters. No markdown fences.`

// GeminiCopywriter generates listings with the Gemini API.
type GeminiCopywriter struct {
	client *GeminiClient
	model  string
}

// NewGeminiCopywriter wraps a Gemini client for listing generation.
func NewGeminiCopywriter(client *GeminiClient, model string) *GeminiCopywriter {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiCopywriter{client: client, model: model}
}

func (w *GeminiCopywriter) WriteListing(ctx context.Context, genre, mood string) (Listing, error) {
	prompt := fmt.Sprintf("Write metadata for a %s instrumental with a %s mood.", genre, mood)
	text, err := w.client.GenerateText(ctx, w.model, copywriterSystemPrompt, prompt)
	if err != nil {
		return Listing{}, err
	}
	var listing Listing
	if err := json.Unmarshal([]byte(stripFences(text)), &listing); err != nil {
		return Listing{}, fmt.Errorf("parse listing: %w", err)
	}
	if strings.TrimSpace(listing.Title) == "" {
		return Listing{}, fmt.Errorf("listing missing title")
	}
	return listing, nil
}

// Models sometimes wrap JSON in markdown fences despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StaticCopywriter builds listings from templates, no API calls. Used when no
// Gemini key is configured and as the fallback path.
type StaticCopywriter struct{}

func (StaticCopywriter) WriteListing(_ context.Context, genre, mood string) (Listing, error) {
	title := fmt.Sprintf("%s Beat | %s Vibes | Royalty Free Instrumental", genre, capitalize(mood))
	return Listing{
		Title: title,
		Description: fmt.Sprintf(
			"Fresh %s instrumental with a %s mood.\n\nGenerated daily. Subscribe for new beats every day.",
			genre, mood),
		CoverPrompt: fmt.Sprintf("album cover art, %s music, %s atmosphere, no text", genre, mood),
	}, nil
}

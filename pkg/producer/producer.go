// Package producer generates beats from text prompts.
package producer

import "context"

// Track is one finished generation result.
type Track struct {
	ContentID string
	AudioRef  string
	CoverRef  string
	Model     string
}

// Producer turns a prompt into a finished track. Implementations block until
// the track is ready or ctx is done.
type Producer interface {
	Produce(ctx context.Context, genre, prompt string) (Track, error)
}

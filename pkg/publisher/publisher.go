// Package publisher uploads finished beats to video channels.
package publisher

import "context"

// Request carries everything needed to upload one beat.
type Request struct {
	Channel     string
	Title       string
	Description string
	AudioPath   string
	CoverPath   string
	Tags        []string
}

// Result is a completed upload.
type Result struct {
	VideoID string
	URL     string
}

// Publisher uploads one beat to one channel.
type Publisher interface {
	Publish(ctx context.Context, req Request) (Result, error)
}

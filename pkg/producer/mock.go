package producer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Mock produces placeholder tracks without calling any API. When Dir is set,
// placeholder audio and cover files are written there so downstream file
// handling stays exercised.
type Mock struct {
	Dir string
	// FailEvery makes every nth call fail when > 0; used by tests.
	FailEvery int

	calls int
}

func (m *Mock) Produce(_ context.Context, genre, prompt string) (Track, error) {
	m.calls++
	if m.FailEvery > 0 && m.calls%m.FailEvery == 0 {
		return Track{}, fmt.Errorf("mock producer failure on call %d", m.calls)
	}
	id := "beat_" + uuid.NewString()
	track := Track{
		ContentID: id,
		AudioRef:  id + ".mp3",
		CoverRef:  id + ".png",
		Model:     "mock",
	}
	if m.Dir != "" {
		if err := os.MkdirAll(m.Dir, 0o755); err != nil {
			return Track{}, err
		}
		audio := filepath.Join(m.Dir, track.AudioRef)
		cover := filepath.Join(m.Dir, track.CoverRef)
		if err := os.WriteFile(audio, []byte("placeholder audio: "+prompt), 0o644); err != nil {
			return Track{}, err
		}
		if err := os.WriteFile(cover, []byte("placeholder cover: "+genre), 0o644); err != nil {
			return Track{}, err
		}
		track.AudioRef = audio
		track.CoverRef = cover
	}
	return track, nil
}

package empire

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"beatempire/pkg/domain"
)

// runGenerationSession produces a session of beats in one genre. Individual
// beat failures are logged and skipped; the session completes normally even
// when nothing could be produced.
func (e *Empire) runGenerationSession(ctx context.Context) error {
	settings := e.Settings()
	genre := e.selectOptimalGenre()
	target := settings.Generation.BeatsPerSession
	delay := time.Duration(settings.Generation.RequestDelaySeconds) * time.Second

	e.logger.Info("generation session starting", "genre", genre, "target", target)
	e.cfg.Events.Printf("generation session starting: %d x %s", target, genre)

	produced := 0
	for i := 0; i < target; i++ {
		if i > 0 {
			if err := e.sleep(ctx, delay); err != nil {
				break
			}
		}
		prompt := e.smartPrompt(genre)
		track, err := e.cfg.Producer.Produce(ctx, genre, prompt)
		if err != nil {
			e.logger.Error("beat generation failed", "genre", genre, "beat", i+1, "err", err)
			continue
		}

		now := e.now().UTC()
		beat := domain.Beat{
			ID:        track.ContentID,
			Genre:     genre,
			Prompt:    prompt,
			Model:     track.Model,
			AudioPath: e.storeArtifact(track.AudioRef, track.ContentID+".mp3"),
			CoverPath: e.storeArtifact(track.CoverRef, track.ContentID+".png"),
			Status:    domain.StatusReadyForUpload,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := e.cfg.Store.SaveBeat(beat); err != nil {
			e.logger.Error("save beat", "beat", beat.ID, "err", err)
			continue
		}
		produced++
		e.logger.Info("beat generated", "beat", beat.ID, "genre", genre, "n", i+1)
	}

	if produced > 0 {
		if err := e.cfg.Store.RecordGeneration(produced, e.now()); err != nil {
			e.logger.Error("record generation", "err", err)
		}
	}
	e.cfg.Events.Printf("generation session complete: %d/%d beats (%s)", produced, target, genre)
	return nil
}

// storeArtifact re-homes a locally rendered artifact into the dated artifact
// store. Remote URLs and missing files pass through unchanged.
func (e *Empire) storeArtifact(ref, name string) string {
	if ref == "" || e.cfg.Artifacts == nil {
		return ref
	}
	if strings.Contains(ref, "://") {
		return ref
	}
	if _, err := os.Stat(ref); err != nil {
		return ref
	}
	stored, err := e.cfg.Artifacts.Save(ref, name)
	if err != nil {
		e.logger.Warn("store artifact", "ref", filepath.Base(ref), "err", err)
		return ref
	}
	return stored
}

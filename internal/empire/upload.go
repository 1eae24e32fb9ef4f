package empire

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"beatempire/pkg/ai"
	"beatempire/pkg/domain"
	"beatempire/pkg/publisher"
)

const uploadBatchSize = 10

// runUploadManager publishes the oldest ready beats across the channels,
// honoring per-channel and global daily caps.
func (e *Empire) runUploadManager(ctx context.Context) error {
	beats, err := e.cfg.Store.ListBeats(domain.StatusReadyForUpload, uploadBatchSize)
	if err != nil {
		return fmt.Errorf("list ready beats: %w", err)
	}
	if len(beats) == 0 {
		e.logger.Info("no beats ready for upload")
		return nil
	}
	channels, err := e.cfg.Store.ListActiveChannels()
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	if len(channels) == 0 {
		e.logger.Warn("no active channels, skipping upload batch")
		return nil
	}

	settings := e.Settings()
	stagger := time.Duration(settings.Upload.StaggerMinutes) * time.Minute
	maxAttempts := settings.Safety.MaxUploadAttempts

	uploaded := 0
	for _, beat := range beats {
		channel, ok, err := e.pickChannel(ctx, beat.Genre, channels)
		if err != nil {
			return err
		}
		if !ok {
			e.logger.Info("all channels at daily cap", "beat", beat.ID)
			continue
		}

		allowed, err := e.cfg.GlobalQuota.Check(ctx, "empire")
		if err != nil {
			return fmt.Errorf("global quota: %w", err)
		}
		if !allowed {
			e.cfg.Events.Printf("daily upload limit reached")
			e.logger.Warn("daily upload limit reached", "uploaded", uploaded)
			break
		}

		if err := e.uploadBeat(ctx, beat, channel, maxAttempts); err != nil {
			e.logger.Error("upload failed", "beat", beat.ID, "channel", channel.Name, "err", err)
		} else {
			// quota counts uploads, not attempts: consume only on success
			if _, err := e.cfg.GlobalQuota.Allow(ctx, "empire"); err != nil {
				e.logger.Error("global quota", "err", err)
			}
			if _, err := e.cfg.ChannelQuota.Allow(ctx, "channel:"+channel.Name); err != nil {
				e.logger.Error("channel quota", "channel", channel.Name, "err", err)
			}
			uploaded++
			// refresh the LRU view so the next pick sees this upload
			channels, err = e.cfg.Store.ListActiveChannels()
			if err != nil {
				return fmt.Errorf("list channels: %w", err)
			}
		}

		if err := e.sleep(ctx, stagger); err != nil {
			break
		}
	}

	if uploaded > 0 {
		if err := e.cfg.Store.RecordUploads(uploaded, 0, e.now()); err != nil {
			e.logger.Error("record uploads", "err", err)
		}
	}
	e.cfg.Events.Printf("upload batch complete: %d beats uploaded", uploaded)
	return nil
}

// pickChannel returns the first candidate channel with daily quota left. The
// slot is not reserved here; it is consumed once the upload succeeds.
func (e *Empire) pickChannel(ctx context.Context, genre string, channels []domain.Channel) (domain.Channel, bool, error) {
	for _, c := range channelCandidates(genre, channels) {
		allowed, err := e.cfg.ChannelQuota.Check(ctx, "channel:"+c.Name)
		if err != nil {
			return domain.Channel{}, false, fmt.Errorf("channel quota: %w", err)
		}
		if allowed {
			return c, true, nil
		}
	}
	return domain.Channel{}, false, nil
}

// channelCandidates orders channels for a genre: specialization matches
// first, then the rest, each group least-recently-used first. Channels that
// never uploaded sort ahead of any that have.
func channelCandidates(genre string, channels []domain.Channel) []domain.Channel {
	var matches, others []domain.Channel
	for _, c := range channels {
		if strings.EqualFold(c.Specialization, genre) {
			matches = append(matches, c)
		} else {
			others = append(others, c)
		}
	}
	byLRU := func(s []domain.Channel) {
		sort.SliceStable(s, func(i, j int) bool {
			a, b := s[i].LastUploadAt, s[j].LastUploadAt
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return true
			case b == nil:
				return false
			default:
				return a.Before(*b)
			}
		})
	}
	byLRU(matches)
	byLRU(others)
	return append(matches, others...)
}

func (e *Empire) uploadBeat(ctx context.Context, beat domain.Beat, channel domain.Channel, maxAttempts int) error {
	hour := e.now().Hour()
	listing, err := e.cfg.Copywriter.WriteListing(ctx, beat.Genre, moodName(hour))
	if err != nil {
		e.logger.Warn("copywriter failed, using static copy", "beat", beat.ID, "err", err)
		listing, _ = ai.StaticCopywriter{}.WriteListing(ctx, beat.Genre, moodName(hour))
	}

	result, err := e.cfg.Publisher.Publish(ctx, publisher.Request{
		Channel:     channel.Name,
		Title:       listing.Title,
		Description: listing.Description,
		AudioPath:   beat.AudioPath,
		CoverPath:   beat.CoverPath,
		Tags:        []string{strings.ToLower(beat.Genre), "beats", "instrumental"},
	})
	if err != nil {
		attempts, bumpErr := e.cfg.Store.BumpUploadAttempts(beat.ID)
		if bumpErr != nil {
			e.logger.Error("bump upload attempts", "beat", beat.ID, "err", bumpErr)
		}
		if maxAttempts > 0 && attempts >= maxAttempts {
			if failErr := e.cfg.Store.SetBeatStatus(beat.ID, domain.StatusFailed); failErr != nil {
				e.logger.Error("mark beat failed", "beat", beat.ID, "err", failErr)
			} else {
				e.cfg.Events.Printf("beat %s failed permanently after %d attempts", beat.ID, attempts)
			}
		}
		return err
	}

	if err := e.cfg.Store.MarkBeatUploaded(beat.ID, channel.Name, result.VideoID); err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	if err := e.cfg.Store.RecordChannelUpload(channel.Name, 0, 0, e.now()); err != nil {
		e.logger.Error("record channel upload", "channel", channel.Name, "err", err)
	}
	e.cfg.Events.Printf("uploaded beat %s to %s (%s)", beat.ID, channel.Name, result.VideoID)
	return nil
}

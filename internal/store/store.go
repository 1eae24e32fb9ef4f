package store

import (
	"errors"
	"time"

	"beatempire/pkg/domain"
)

// ErrInvalidTransition is returned when a beat status update would move the
// publication state backward.
var ErrInvalidTransition = errors.New("invalid publication state transition")

// Store defines persistence operations for beats, channels, rollups, and the
// empire status row. The orchestrator is the sole writer; the status API and
// CLI are read-only consumers.
type Store interface {
	// beats
	SaveBeat(domain.Beat) error
	GetBeat(id string) (domain.Beat, bool, error)
	// ListBeats returns beats in insertion order (oldest first, row id
	// ascending on equal timestamps). An empty status matches all beats.
	ListBeats(status domain.UploadStatus, limit int) ([]domain.Beat, error)
	SetBeatStatus(id string, status domain.UploadStatus) error
	MarkBeatUploaded(id, channel, videoID string) error
	BumpUploadAttempts(id string) (int, error)
	// GenrePerformance aggregates uploaded beats generated since the cutoff,
	// grouped by genre and ordered by mean performance score descending.
	GenrePerformance(since time.Time) ([]domain.GenrePerformance, error)
	BeatsGeneratedBetween(from, to time.Time) ([]domain.Beat, error)
	BeatTotals() (domain.BeatTotals, error)

	// channels
	SaveChannel(domain.Channel) error
	GetChannel(name string) (domain.Channel, bool, error)
	ListActiveChannels() ([]domain.Channel, error)
	ChannelCount() (int, error)
	RecordChannelUpload(name string, views int64, revenue float64, at time.Time) error

	// rollups
	SaveDailyStat(domain.DailyStat) error
	ListDailyStats(limit int) ([]domain.DailyStat, error)

	// empire status (singleton row)
	EmpireStatus() (domain.EmpireStatus, error)
	SetRunning(running bool) error
	RecordGeneration(count int, at time.Time) error
	RecordUploads(count int, revenue float64, at time.Time) error
	ResetDailyCounters() error
}

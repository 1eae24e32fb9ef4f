package domain

import "time"

type UploadStatus string

const (
	StatusPending        UploadStatus = "pending"
	StatusReadyForUpload UploadStatus = "ready_for_upload"
	StatusUploaded       UploadStatus = "uploaded"
	StatusFailed         UploadStatus = "failed"
)

// CanTransition reports whether a beat may move from s to next. Publication
// state only moves forward (pending -> ready_for_upload -> uploaded); failed
// is reachable from any non-terminal state.
func (s UploadStatus) CanTransition(next UploadStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusReadyForUpload || next == StatusFailed
	case StatusReadyForUpload:
		return next == StatusUploaded || next == StatusFailed
	default:
		return false
	}
}

type ChannelStatus string

const (
	ChannelActive   ChannelStatus = "active"
	ChannelInactive ChannelStatus = "inactive"
)

// Beat is one generated audio+cover unit tracked through its publication
// lifecycle.
type Beat struct {
	ID               string       `json:"id"`
	Genre            string       `json:"genre"`
	Prompt           string       `json:"prompt"`
	Model            string       `json:"model,omitempty"`
	AudioPath        string       `json:"audioPath,omitempty"`
	CoverPath        string       `json:"coverPath,omitempty"`
	Status           UploadStatus `json:"status"`
	Channel          string       `json:"channel,omitempty"`
	VideoID          string       `json:"videoId,omitempty"`
	Views            int64        `json:"views"`
	Revenue          float64      `json:"revenue"`
	PerformanceScore float64      `json:"performanceScore"`
	UploadAttempts   int          `json:"uploadAttempts"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Channel is a named publishing destination with a genre specialization.
type Channel struct {
	Name           string        `json:"name"`
	ExternalID     string        `json:"externalId,omitempty"`
	Specialization string        `json:"specialization"`
	Schedule       string        `json:"schedule,omitempty"`
	TotalUploads   int64         `json:"totalUploads"`
	TotalViews     int64         `json:"totalViews"`
	TotalRevenue   float64       `json:"totalRevenue"`
	LastUploadAt   *time.Time    `json:"lastUploadAt,omitempty"`
	Status         ChannelStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// DailyStat is one reporting rollup row per date and genre.
type DailyStat struct {
	Date          string            `json:"date"`
	Genre         string            `json:"genre"`
	Generated     int               `json:"generated"`
	Uploaded      int               `json:"uploaded"`
	Views         int64             `json:"views"`
	Revenue       float64           `json:"revenue"`
	BestPerformer string            `json:"bestPerformer,omitempty"`
	Notes         map[string]string `json:"notes,omitempty"`
	RecordedAt    time.Time         `json:"recordedAt"`
}

// EmpireStatus is the singleton run-state row.
type EmpireStatus struct {
	Running        bool       `json:"running"`
	LastGeneration *time.Time `json:"lastGeneration,omitempty"`
	LastUpload     *time.Time `json:"lastUpload,omitempty"`
	DailyGenerated int        `json:"dailyGenerated"`
	DailyUploaded  int        `json:"dailyUploaded"`
	DailyRevenue   float64    `json:"dailyRevenue"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// GenrePerformance is the per-genre aggregate used by genre selection.
type GenrePerformance struct {
	Genre    string  `json:"genre"`
	AvgScore float64 `json:"avgScore"`
	Count    int     `json:"count"`
}

// BeatTotals summarizes the beat table for the status surface.
type BeatTotals struct {
	Generated int64   `json:"generated"`
	Uploaded  int64   `json:"uploaded"`
	Revenue   float64 `json:"revenue"`
}

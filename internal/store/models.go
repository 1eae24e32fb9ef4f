package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Table names match the original empire
// database so the existing dashboards keep working against the same file.

type BeatModel struct {
	ID               uint   `gorm:"primaryKey"`
	BeatID           string `gorm:"uniqueIndex;not null"`
	Genre            string `gorm:"not null;index"`
	Prompt           string `gorm:"type:text"`
	Model            string
	AudioPath        string
	CoverPath        string
	UploadStatus     string `gorm:"not null;default:'pending';index"`
	Channel          string
	VideoID          string
	Views            int64     `gorm:"not null;default:0"`
	Revenue          float64   `gorm:"not null;default:0"`
	PerformanceScore float64   `gorm:"not null;default:0"`
	UploadAttempts   int       `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"not null;index"`
	UpdatedAt        time.Time
}

func (BeatModel) TableName() string { return "generated_beats" }

type ChannelModel struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"uniqueIndex;not null"`
	ExternalID     string
	Specialization string `gorm:"not null;index"`
	Schedule       string
	TotalUploads   int64   `gorm:"not null;default:0"`
	TotalViews     int64   `gorm:"not null;default:0"`
	TotalRevenue   float64 `gorm:"not null;default:0"`
	LastUploadAt   *time.Time
	Status         string    `gorm:"not null;default:'active'"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (ChannelModel) TableName() string { return "youtube_accounts" }

type DailyStatModel struct {
	ID            uint   `gorm:"primaryKey"`
	Date          string `gorm:"not null;uniqueIndex:idx_daily_date_genre"`
	Genre         string `gorm:"not null;uniqueIndex:idx_daily_date_genre"`
	Generated     int    `gorm:"not null;default:0"`
	Uploaded      int    `gorm:"not null;default:0"`
	Views         int64  `gorm:"not null;default:0"`
	Revenue       float64 `gorm:"not null;default:0"`
	BestPerformer string
	Notes         datatypes.JSON
	RecordedAt    time.Time `gorm:"not null"`
}

func (DailyStatModel) TableName() string { return "performance_analytics" }

type EmpireStatusModel struct {
	ID             uint `gorm:"primaryKey"`
	Running        bool `gorm:"not null;default:false"`
	LastGeneration *time.Time
	LastUpload     *time.Time
	DailyGenerated int     `gorm:"not null;default:0"`
	DailyUploaded  int     `gorm:"not null;default:0"`
	DailyRevenue   float64 `gorm:"not null;default:0"`
	UpdatedAt      time.Time
}

func (EmpireStatusModel) TableName() string { return "empire_status" }

package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"beatempire/pkg/domain"
)

// GormStore implements Store using GORM + SQLite.
//
// Every operation is a short-lived statement; nothing holds a transaction
// across collaborator calls, so jobs never contend on the database file while
// waiting on the network.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the SQLite file and runs auto-migrations. Safe to call on
// every startup.
func NewGormStore(path string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Writers from worker goroutines are serialized by SQLite itself; the
	// busy timeout keeps short overlapping statements from failing outright.
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := db.AutoMigrate(&BeatModel{}, &ChannelModel{}, &DailyStatModel{}, &EmpireStatusModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveBeat inserts or updates a beat keyed by its content ID.
func (s *GormStore) SaveBeat(b domain.Beat) error {
	model := beatToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "beat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"genre", "prompt", "model", "audio_path", "cover_path",
			"upload_status", "channel", "video_id", "views", "revenue",
			"performance_score", "upload_attempts", "updated_at",
		}),
	}).Create(&model).Error
}

// GetBeat returns a beat by content ID.
func (s *GormStore) GetBeat(id string) (domain.Beat, bool, error) {
	var model BeatModel
	if err := s.db.First(&model, "beat_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Beat{}, false, nil
		}
		return domain.Beat{}, false, err
	}
	return beatFromModel(model), true, nil
}

// ListBeats returns beats oldest first; row id ascending breaks timestamp
// ties so decision-making reads are stable.
func (s *GormStore) ListBeats(status domain.UploadStatus, limit int) ([]domain.Beat, error) {
	tx := s.db.Order("created_at ASC, id ASC")
	if status != "" {
		tx = tx.Where("upload_status = ?", string(status))
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var models []BeatModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	beats := make([]domain.Beat, 0, len(models))
	for _, m := range models {
		beats = append(beats, beatFromModel(m))
	}
	return beats, nil
}

// SetBeatStatus moves a beat forward through its publication lifecycle.
func (s *GormStore) SetBeatStatus(id string, status domain.UploadStatus) error {
	beat, ok, err := s.GetBeat(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("beat %s not found", id)
	}
	if !beat.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, beat.Status, status)
	}
	return s.db.Model(&BeatModel{}).
		Where("beat_id = ?", id).
		Updates(map[string]any{
			"upload_status": string(status),
			"updated_at":    time.Now().UTC(),
		}).Error
}

// MarkBeatUploaded transitions a beat to uploaded and records its channel and
// external video id.
func (s *GormStore) MarkBeatUploaded(id, channel, videoID string) error {
	beat, ok, err := s.GetBeat(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("beat %s not found", id)
	}
	if !beat.Status.CanTransition(domain.StatusUploaded) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, beat.Status, domain.StatusUploaded)
	}
	return s.db.Model(&BeatModel{}).
		Where("beat_id = ?", id).
		Updates(map[string]any{
			"upload_status": string(domain.StatusUploaded),
			"channel":       channel,
			"video_id":      videoID,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// BumpUploadAttempts increments the failure counter and returns the new count.
func (s *GormStore) BumpUploadAttempts(id string) (int, error) {
	if err := s.db.Model(&BeatModel{}).
		Where("beat_id = ?", id).
		Update("upload_attempts", gorm.Expr("upload_attempts + 1")).Error; err != nil {
		return 0, err
	}
	beat, ok, err := s.GetBeat(id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("beat %s not found", id)
	}
	return beat.UploadAttempts, nil
}

// GenrePerformance aggregates uploaded beats generated since the cutoff.
func (s *GormStore) GenrePerformance(since time.Time) ([]domain.GenrePerformance, error) {
	var rows []domain.GenrePerformance
	err := s.db.Model(&BeatModel{}).
		Select("genre, AVG(performance_score) AS avg_score, COUNT(*) AS count").
		Where("upload_status = ? AND created_at > ?", string(domain.StatusUploaded), since).
		Group("genre").
		Order("avg_score DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BeatsGeneratedBetween returns beats created in [from, to).
func (s *GormStore) BeatsGeneratedBetween(from, to time.Time) ([]domain.Beat, error) {
	var models []BeatModel
	if err := s.db.Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	beats := make([]domain.Beat, 0, len(models))
	for _, m := range models {
		beats = append(beats, beatFromModel(m))
	}
	return beats, nil
}

// BeatTotals summarizes the beat table.
func (s *GormStore) BeatTotals() (domain.BeatTotals, error) {
	var totals domain.BeatTotals
	if err := s.db.Model(&BeatModel{}).Count(&totals.Generated).Error; err != nil {
		return domain.BeatTotals{}, err
	}
	if err := s.db.Model(&BeatModel{}).
		Where("upload_status = ?", string(domain.StatusUploaded)).
		Count(&totals.Uploaded).Error; err != nil {
		return domain.BeatTotals{}, err
	}
	var revenue *float64
	if err := s.db.Model(&BeatModel{}).
		Select("SUM(revenue)").
		Scan(&revenue).Error; err != nil {
		return domain.BeatTotals{}, err
	}
	if revenue != nil {
		totals.Revenue = *revenue
	}
	return totals, nil
}

// SaveChannel inserts or updates a channel keyed by name.
func (s *GormStore) SaveChannel(c domain.Channel) error {
	model := channelToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"external_id", "specialization", "schedule", "total_uploads",
			"total_views", "total_revenue", "last_upload_at", "status",
		}),
	}).Create(&model).Error
}

// GetChannel looks up a channel by name.
func (s *GormStore) GetChannel(name string) (domain.Channel, bool, error) {
	var model ChannelModel
	if err := s.db.First(&model, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Channel{}, false, nil
		}
		return domain.Channel{}, false, err
	}
	return channelFromModel(model), true, nil
}

// ListActiveChannels returns active channels in insertion order.
func (s *GormStore) ListActiveChannels() ([]domain.Channel, error) {
	var models []ChannelModel
	if err := s.db.Where("status = ?", string(domain.ChannelActive)).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	channels := make([]domain.Channel, 0, len(models))
	for _, m := range models {
		channels = append(channels, channelFromModel(m))
	}
	return channels, nil
}

// ChannelCount returns the number of channels.
func (s *GormStore) ChannelCount() (int, error) {
	var count int64
	if err := s.db.Model(&ChannelModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// RecordChannelUpload bumps a channel's cumulative stats and last-upload time.
func (s *GormStore) RecordChannelUpload(name string, views int64, revenue float64, at time.Time) error {
	return s.db.Model(&ChannelModel{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"total_uploads":  gorm.Expr("total_uploads + 1"),
			"total_views":    gorm.Expr("total_views + ?", views),
			"total_revenue":  gorm.Expr("total_revenue + ?", revenue),
			"last_upload_at": at.UTC(),
		}).Error
}

// SaveDailyStat upserts one rollup row keyed by date and genre.
func (s *GormStore) SaveDailyStat(stat domain.DailyStat) error {
	model, err := dailyStatToModel(stat)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "genre"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"generated", "uploaded", "views", "revenue",
			"best_performer", "notes", "recorded_at",
		}),
	}).Create(&model).Error
}

// ListDailyStats returns the most recent rollup rows.
func (s *GormStore) ListDailyStats(limit int) ([]domain.DailyStat, error) {
	tx := s.db.Order("date DESC, genre ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var models []DailyStatModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	stats := make([]domain.DailyStat, 0, len(models))
	for _, m := range models {
		stats = append(stats, dailyStatFromModel(m))
	}
	return stats, nil
}

// EmpireStatus returns the singleton status row (zero value when absent).
func (s *GormStore) EmpireStatus() (domain.EmpireStatus, error) {
	var model EmpireStatusModel
	if err := s.db.First(&model, "id = 1").Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.EmpireStatus{}, nil
		}
		return domain.EmpireStatus{}, err
	}
	return domain.EmpireStatus{
		Running:        model.Running,
		LastGeneration: model.LastGeneration,
		LastUpload:     model.LastUpload,
		DailyGenerated: model.DailyGenerated,
		DailyUploaded:  model.DailyUploaded,
		DailyRevenue:   model.DailyRevenue,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}

// SetRunning flips the running flag on the singleton row.
func (s *GormStore) SetRunning(running bool) error {
	if err := s.ensureStatusRow(); err != nil {
		return err
	}
	return s.db.Model(&EmpireStatusModel{}).
		Where("id = 1").
		Updates(map[string]any{"running": running, "updated_at": time.Now().UTC()}).Error
}

// RecordGeneration notes a completed generation session.
func (s *GormStore) RecordGeneration(count int, at time.Time) error {
	if err := s.ensureStatusRow(); err != nil {
		return err
	}
	return s.db.Model(&EmpireStatusModel{}).
		Where("id = 1").
		Updates(map[string]any{
			"last_generation": at.UTC(),
			"daily_generated": gorm.Expr("daily_generated + ?", count),
			"updated_at":      time.Now().UTC(),
		}).Error
}

// RecordUploads notes a completed upload batch.
func (s *GormStore) RecordUploads(count int, revenue float64, at time.Time) error {
	if err := s.ensureStatusRow(); err != nil {
		return err
	}
	return s.db.Model(&EmpireStatusModel{}).
		Where("id = 1").
		Updates(map[string]any{
			"last_upload":    at.UTC(),
			"daily_uploaded": gorm.Expr("daily_uploaded + ?", count),
			"daily_revenue":  gorm.Expr("daily_revenue + ?", revenue),
			"updated_at":     time.Now().UTC(),
		}).Error
}

// ResetDailyCounters zeroes the per-day counters after the daily rollup.
func (s *GormStore) ResetDailyCounters() error {
	if err := s.ensureStatusRow(); err != nil {
		return err
	}
	return s.db.Model(&EmpireStatusModel{}).
		Where("id = 1").
		Updates(map[string]any{
			"daily_generated": 0,
			"daily_uploaded":  0,
			"daily_revenue":   0.0,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (s *GormStore) ensureStatusRow() error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&EmpireStatusModel{ID: 1, UpdatedAt: time.Now().UTC()}).Error
}

func beatToModel(b domain.Beat) BeatModel {
	return BeatModel{
		BeatID:           b.ID,
		Genre:            b.Genre,
		Prompt:           b.Prompt,
		Model:            b.Model,
		AudioPath:        b.AudioPath,
		CoverPath:        b.CoverPath,
		UploadStatus:     string(b.Status),
		Channel:          b.Channel,
		VideoID:          b.VideoID,
		Views:            b.Views,
		Revenue:          b.Revenue,
		PerformanceScore: b.PerformanceScore,
		UploadAttempts:   b.UploadAttempts,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func beatFromModel(m BeatModel) domain.Beat {
	status := domain.UploadStatus(m.UploadStatus)
	if status == "" {
		status = domain.StatusPending
	}
	return domain.Beat{
		ID:               m.BeatID,
		Genre:            m.Genre,
		Prompt:           m.Prompt,
		Model:            m.Model,
		AudioPath:        m.AudioPath,
		CoverPath:        m.CoverPath,
		Status:           status,
		Channel:          m.Channel,
		VideoID:          m.VideoID,
		Views:            m.Views,
		Revenue:          m.Revenue,
		PerformanceScore: m.PerformanceScore,
		UploadAttempts:   m.UploadAttempts,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func channelToModel(c domain.Channel) ChannelModel {
	return ChannelModel{
		Name:           c.Name,
		ExternalID:     c.ExternalID,
		Specialization: c.Specialization,
		Schedule:       c.Schedule,
		TotalUploads:   c.TotalUploads,
		TotalViews:     c.TotalViews,
		TotalRevenue:   c.TotalRevenue,
		LastUploadAt:   c.LastUploadAt,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
	}
}

func channelFromModel(m ChannelModel) domain.Channel {
	status := domain.ChannelStatus(m.Status)
	if status == "" {
		status = domain.ChannelActive
	}
	return domain.Channel{
		Name:           m.Name,
		ExternalID:     m.ExternalID,
		Specialization: m.Specialization,
		Schedule:       m.Schedule,
		TotalUploads:   m.TotalUploads,
		TotalViews:     m.TotalViews,
		TotalRevenue:   m.TotalRevenue,
		LastUploadAt:   m.LastUploadAt,
		Status:         status,
		CreatedAt:      m.CreatedAt,
	}
}

func dailyStatToModel(stat domain.DailyStat) (DailyStatModel, error) {
	var notes datatypes.JSON
	if len(stat.Notes) > 0 {
		raw, err := json.Marshal(stat.Notes)
		if err != nil {
			return DailyStatModel{}, err
		}
		notes = raw
	}
	return DailyStatModel{
		Date:          stat.Date,
		Genre:         stat.Genre,
		Generated:     stat.Generated,
		Uploaded:      stat.Uploaded,
		Views:         stat.Views,
		Revenue:       stat.Revenue,
		BestPerformer: stat.BestPerformer,
		Notes:         notes,
		RecordedAt:    stat.RecordedAt,
	}, nil
}

func dailyStatFromModel(m DailyStatModel) domain.DailyStat {
	var notes map[string]string
	if len(m.Notes) > 0 {
		_ = json.Unmarshal(m.Notes, &notes)
	}
	return domain.DailyStat{
		Date:          m.Date,
		Genre:         m.Genre,
		Generated:     m.Generated,
		Uploaded:      m.Uploaded,
		Views:         m.Views,
		Revenue:       m.Revenue,
		BestPerformer: m.BestPerformer,
		Notes:         notes,
		RecordedAt:    m.RecordedAt,
	}
}

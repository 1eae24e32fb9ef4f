package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings is the empire settings document persisted as JSON. The document is
// shared with the dashboard tooling, so key names are a fixed contract.
type Settings struct {
	Generation   GenerationSettings   `json:"generation_schedule"`
	Upload       UploadSettings       `json:"upload_schedule"`
	Monetization MonetizationSettings `json:"monetization"`
	Optimization OptimizationSettings `json:"optimization"`
	Safety       SafetySettings       `json:"safety"`
}

type GenerationSettings struct {
	IntervalHours       int      `json:"interval_hours"`
	BeatsPerSession     int      `json:"beats_per_session"`
	GenresRotation      []string `json:"genres_rotation"`
	RequestDelaySeconds int      `json:"request_delay_seconds"`
}

type UploadSettings struct {
	StaggerMinutes       int   `json:"stagger_minutes"`
	DailyLimitPerChannel int   `json:"daily_limit_per_account"`
	PeakHours            []int `json:"peak_hours"`
}

type MonetizationSettings struct {
	AutoPricing         bool    `json:"auto_pricing"`
	BasePrice           float64 `json:"base_price"`
	PremiumMultiplier   float64 `json:"premium_multiplier"`
	ExclusiveMultiplier float64 `json:"exclusive_multiplier"`
	DynamicPricing      bool    `json:"dynamic_pricing"`
}

type OptimizationSettings struct {
	TrackPerformance     bool `json:"track_performance"`
	AutoAdjustGenres     bool `json:"auto_adjust_genres"`
	PerformanceThreshold int  `json:"performance_threshold"`
	OptimizeIntervalHrs  int  `json:"optimize_interval_hours"`
}

type SafetySettings struct {
	MaxDailyUploads      int `json:"max_daily_uploads"`
	ErrorCooldownMinutes int `json:"cooldown_on_errors"`
	BackupIntervalHours  int `json:"backup_interval_hours"`
	MaxUploadAttempts    int `json:"max_upload_attempts"`
}

// DefaultSettings returns the built-in empire defaults.
func DefaultSettings() Settings {
	return Settings{
		Generation: GenerationSettings{
			IntervalHours:   4,
			BeatsPerSession: 3,
			GenresRotation: []string{
				"Lo-Fi Hip Hop", "Trap", "Chill Pop", "Ambient",
				"Deep House", "Synthwave", "Jazz Hip Hop", "Drill",
			},
			RequestDelaySeconds: 30,
		},
		Upload: UploadSettings{
			StaggerMinutes:       30,
			DailyLimitPerChannel: 5,
			PeakHours:            []int{14, 16, 18, 20},
		},
		Monetization: MonetizationSettings{
			AutoPricing:         true,
			BasePrice:           25,
			PremiumMultiplier:   2.0,
			ExclusiveMultiplier: 8.0,
			DynamicPricing:      true,
		},
		Optimization: OptimizationSettings{
			TrackPerformance:     true,
			AutoAdjustGenres:     true,
			PerformanceThreshold: 100,
			OptimizeIntervalHrs:  24,
		},
		Safety: SafetySettings{
			MaxDailyUploads:      50,
			ErrorCooldownMinutes: 30,
			BackupIntervalHours:  6,
			MaxUploadAttempts:    0,
		},
	}
}

// LoadSettings reads the settings document at path. A missing file yields the
// defaults; a present file has any missing top-level section backfilled from
// the defaults (never the reverse). The merged result is persisted back.
func LoadSettings(path string) (Settings, error) {
	defaults := DefaultSettings()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := SaveSettings(path, defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var loaded map[string]json.RawMessage
	if err := json.Unmarshal(data, &loaded); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	defaultRaw, err := json.Marshal(defaults)
	if err != nil {
		return Settings{}, err
	}
	var defaultMap map[string]json.RawMessage
	if err := json.Unmarshal(defaultRaw, &defaultMap); err != nil {
		return Settings{}, err
	}
	backfilled := false
	for key, raw := range defaultMap {
		if _, ok := loaded[key]; !ok {
			loaded[key] = raw
			backfilled = true
		}
	}
	merged, err := json.Marshal(loaded)
	if err != nil {
		return Settings{}, err
	}
	var settings Settings
	if err := json.Unmarshal(merged, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	normalizeSettings(&settings, defaults)
	if backfilled {
		if err := SaveSettings(path, settings); err != nil {
			return Settings{}, err
		}
	}
	return settings, nil
}

// SaveSettings writes the full document atomically (temp file + rename) so a
// crash mid-write never leaves a truncated settings file behind.
func SaveSettings(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".empire_config-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// normalizeSettings substitutes defaults for out-of-range values so a bad
// hand-edit degrades instead of wedging the scheduler.
func normalizeSettings(s *Settings, defaults Settings) {
	if s.Generation.IntervalHours <= 0 {
		s.Generation.IntervalHours = defaults.Generation.IntervalHours
	}
	if s.Generation.BeatsPerSession <= 0 {
		s.Generation.BeatsPerSession = defaults.Generation.BeatsPerSession
	}
	if len(s.Generation.GenresRotation) == 0 {
		s.Generation.GenresRotation = defaults.Generation.GenresRotation
	}
	if s.Generation.RequestDelaySeconds < 0 {
		s.Generation.RequestDelaySeconds = defaults.Generation.RequestDelaySeconds
	}
	if s.Upload.StaggerMinutes < 0 {
		s.Upload.StaggerMinutes = defaults.Upload.StaggerMinutes
	}
	if s.Upload.DailyLimitPerChannel <= 0 {
		s.Upload.DailyLimitPerChannel = defaults.Upload.DailyLimitPerChannel
	}
	if s.Optimization.OptimizeIntervalHrs <= 0 {
		s.Optimization.OptimizeIntervalHrs = defaults.Optimization.OptimizeIntervalHrs
	}
	if s.Safety.MaxDailyUploads <= 0 {
		s.Safety.MaxDailyUploads = defaults.Safety.MaxDailyUploads
	}
	if s.Safety.ErrorCooldownMinutes < 0 {
		s.Safety.ErrorCooldownMinutes = defaults.Safety.ErrorCooldownMinutes
	}
	if s.Safety.BackupIntervalHours <= 0 {
		s.Safety.BackupIntervalHours = defaults.Safety.BackupIntervalHours
	}
	if s.Safety.MaxUploadAttempts < 0 {
		s.Safety.MaxUploadAttempts = 0
	}
}

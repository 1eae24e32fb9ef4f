package empire

import (
	"context"
	"time"
)

// job is one recurring unit of work. Interval jobs fire when the gap since
// lastRun reaches interval(); daily jobs fire once per day at dailyAt.
type job struct {
	name     string
	interval func() time.Duration
	dailyAt  string

	lastRun       time.Time
	cooldownUntil time.Time

	run func(ctx context.Context) error
}

func (j *job) due(now time.Time) bool {
	if now.Before(j.cooldownUntil) {
		return false
	}
	if j.dailyAt != "" {
		target, err := time.ParseInLocation("15:04", j.dailyAt, now.Location())
		if err != nil {
			return false
		}
		// most recent target at or before now; a tick landing after
		// midnight still catches yesterday's slot
		at := time.Date(now.Year(), now.Month(), now.Day(),
			target.Hour(), target.Minute(), 0, 0, now.Location())
		if now.Before(at) {
			at = at.AddDate(0, 0, -1)
		}
		return j.lastRun.Before(at)
	}
	return now.Sub(j.lastRun) >= j.interval()
}

// buildJobs assembles the recurring schedule. Intervals re-read the live
// settings so an optimization pass takes effect without a restart.
func (e *Empire) buildJobs(now time.Time) []*job {
	generationInterval := func() time.Duration {
		e.mu.Lock()
		defer e.mu.Unlock()
		return time.Duration(e.settings.Generation.IntervalHours) * time.Hour
	}
	optimizeInterval := func() time.Duration {
		e.mu.Lock()
		defer e.mu.Unlock()
		return time.Duration(e.settings.Optimization.OptimizeIntervalHrs) * time.Hour
	}
	backupInterval := func() time.Duration {
		e.mu.Lock()
		defer e.mu.Unlock()
		return time.Duration(e.settings.Safety.BackupIntervalHours) * time.Hour
	}
	uploadInterval := func() time.Duration { return 30 * time.Minute }

	return []*job{
		{name: "generation", interval: generationInterval, lastRun: now, run: e.runGenerationSession},
		{name: "upload", interval: uploadInterval, lastRun: now, run: e.runUploadManager},
		{name: "optimization", interval: optimizeInterval, lastRun: now, run: e.runOptimization},
		{name: "backup", interval: backupInterval, lastRun: now, run: e.runBackup},
		{name: "rollup", dailyAt: "23:59", lastRun: now, run: e.runDailyRollup},
	}
}

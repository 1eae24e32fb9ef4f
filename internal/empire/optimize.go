package empire

import (
	"context"
	"fmt"
	"strings"

	"beatempire/internal/config"
)

// analysis is the optimization pass verdict.
type analysis struct {
	shouldOptimize bool
	bestGenres     []string
}

// runOptimization analyzes recent performance and rewrites the genre
// rotation to double down on the top performers.
func (e *Empire) runOptimization(ctx context.Context) error {
	settings := e.Settings()
	if !settings.Optimization.TrackPerformance {
		e.logger.Info("performance tracking disabled, skipping optimization")
		return nil
	}

	result, err := e.analyzePerformance()
	if err != nil {
		return fmt.Errorf("analyze performance: %w", err)
	}
	if !result.shouldOptimize || !settings.Optimization.AutoAdjustGenres {
		return nil
	}

	// append-and-duplicate: the new rotation is the best genres twice, so
	// the hour-modulo fallback still cycles
	rotation := append(append([]string{}, result.bestGenres...), result.bestGenres...)

	e.mu.Lock()
	e.settings.Generation.GenresRotation = rotation
	updated := e.settings
	e.mu.Unlock()

	if e.cfg.SettingsPath != "" {
		if err := config.SaveSettings(e.cfg.SettingsPath, updated); err != nil {
			return fmt.Errorf("save optimized settings: %w", err)
		}
	}
	e.cfg.Events.Printf("performance optimizations applied: rotation now %s", strings.Join(rotation, ", "))
	e.logger.Info("optimization applied", "rotation", rotation)
	return nil
}

// analyzePerformance picks the two strongest genres of the past week. With no
// data yet it falls back to the proven evergreen pair.
func (e *Empire) analyzePerformance() (analysis, error) {
	perf, err := e.cfg.Store.GenrePerformance(e.now().AddDate(0, 0, -7))
	if err != nil {
		return analysis{}, err
	}
	best := []string{"Lo-Fi Hip Hop", "Trap"}
	if len(perf) >= 2 {
		best = []string{perf[0].Genre, perf[1].Genre}
	} else if len(perf) == 1 {
		best = []string{perf[0].Genre, best[0]}
		if perf[0].Genre == best[1] {
			best[1] = "Trap"
		}
	}
	return analysis{shouldOptimize: true, bestGenres: best}, nil
}

package empire

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beatempire/pkg/domain"
)

// runDailyRollup aggregates today's beats into per-genre analytics rows and
// resets the daily counters.
func (e *Empire) runDailyRollup(ctx context.Context) error {
	now := e.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)
	date := from.Format("2006-01-02")

	beats, err := e.cfg.Store.BeatsGeneratedBetween(from.UTC(), to.UTC())
	if err != nil {
		return fmt.Errorf("list today's beats: %w", err)
	}

	type agg struct {
		generated int
		uploaded  int
		views     int64
		revenue   float64
		bestID    string
		bestScore float64
	}
	byGenre := make(map[string]*agg)
	var order []string
	for _, b := range beats {
		a, ok := byGenre[b.Genre]
		if !ok {
			a = &agg{}
			byGenre[b.Genre] = a
			order = append(order, b.Genre)
		}
		a.generated++
		a.views += b.Views
		a.revenue += b.Revenue
		if b.Status == domain.StatusUploaded {
			a.uploaded++
		}
		if a.bestID == "" || b.PerformanceScore > a.bestScore {
			a.bestID = b.ID
			a.bestScore = b.PerformanceScore
		}
	}

	rotation := strings.Join(e.Settings().Generation.GenresRotation, ",")
	totalGenerated, totalUploaded := 0, 0
	var totalRevenue float64
	for _, genre := range order {
		a := byGenre[genre]
		totalGenerated += a.generated
		totalUploaded += a.uploaded
		totalRevenue += a.revenue
		stat := domain.DailyStat{
			Date:          date,
			Genre:         genre,
			Generated:     a.generated,
			Uploaded:      a.uploaded,
			Views:         a.views,
			Revenue:       a.revenue,
			BestPerformer: a.bestID,
			Notes:         map[string]string{"rotation": rotation},
			RecordedAt:    now.UTC(),
		}
		if err := e.cfg.Store.SaveDailyStat(stat); err != nil {
			return fmt.Errorf("save rollup %s/%s: %w", date, genre, err)
		}
	}

	e.cfg.Events.Printf("daily summary %s: %d generated, %d uploaded, $%.2f revenue",
		date, totalGenerated, totalUploaded, totalRevenue)
	if err := e.cfg.Store.ResetDailyCounters(); err != nil {
		return fmt.Errorf("reset daily counters: %w", err)
	}
	return nil
}

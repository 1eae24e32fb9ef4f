package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"beatempire/pkg/domain"
)

// MemoryStore is an in-memory Store used by tests.
type MemoryStore struct {
	mu        sync.Mutex
	beats     map[string]domain.Beat
	beatSeq   map[string]int
	seq       int
	channels  map[string]domain.Channel
	chanOrder []string
	stats     map[string]domain.DailyStat
	statOrder []string
	status    domain.EmpireStatus
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		beats:    make(map[string]domain.Beat),
		beatSeq:  make(map[string]int),
		channels: make(map[string]domain.Channel),
		stats:    make(map[string]domain.DailyStat),
	}
}

func (s *MemoryStore) SaveBeat(b domain.Beat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.beatSeq[b.ID]; !ok {
		s.seq++
		s.beatSeq[b.ID] = s.seq
	}
	s.beats[b.ID] = b
	return nil
}

func (s *MemoryStore) GetBeat(id string) (domain.Beat, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beats[id]
	return b, ok, nil
}

func (s *MemoryStore) ListBeats(status domain.UploadStatus, limit int) ([]domain.Beat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	beats := make([]domain.Beat, 0, len(s.beats))
	for _, b := range s.beats {
		if status != "" && b.Status != status {
			continue
		}
		beats = append(beats, b)
	}
	sort.Slice(beats, func(i, j int) bool {
		if !beats[i].CreatedAt.Equal(beats[j].CreatedAt) {
			return beats[i].CreatedAt.Before(beats[j].CreatedAt)
		}
		return s.beatSeq[beats[i].ID] < s.beatSeq[beats[j].ID]
	})
	if limit > 0 && len(beats) > limit {
		beats = beats[:limit]
	}
	return beats, nil
}

func (s *MemoryStore) SetBeatStatus(id string, status domain.UploadStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beats[id]
	if !ok {
		return fmt.Errorf("beat %s not found", id)
	}
	if !b.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	s.beats[id] = b
	return nil
}

func (s *MemoryStore) MarkBeatUploaded(id, channel, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beats[id]
	if !ok {
		return fmt.Errorf("beat %s not found", id)
	}
	if !b.Status.CanTransition(domain.StatusUploaded) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, domain.StatusUploaded)
	}
	b.Status = domain.StatusUploaded
	b.Channel = channel
	b.VideoID = videoID
	b.UpdatedAt = time.Now().UTC()
	s.beats[id] = b
	return nil
}

func (s *MemoryStore) BumpUploadAttempts(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beats[id]
	if !ok {
		return 0, fmt.Errorf("beat %s not found", id)
	}
	b.UploadAttempts++
	s.beats[id] = b
	return b.UploadAttempts, nil
}

func (s *MemoryStore) GenrePerformance(since time.Time) ([]domain.GenrePerformance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, b := range s.beats {
		if b.Status != domain.StatusUploaded || !b.CreatedAt.After(since) {
			continue
		}
		sums[b.Genre] += b.PerformanceScore
		counts[b.Genre]++
	}
	perf := make([]domain.GenrePerformance, 0, len(sums))
	for genre, sum := range sums {
		perf = append(perf, domain.GenrePerformance{
			Genre:    genre,
			AvgScore: sum / float64(counts[genre]),
			Count:    counts[genre],
		})
	}
	sort.Slice(perf, func(i, j int) bool {
		if perf[i].AvgScore != perf[j].AvgScore {
			return perf[i].AvgScore > perf[j].AvgScore
		}
		return perf[i].Genre < perf[j].Genre
	})
	return perf, nil
}

func (s *MemoryStore) BeatsGeneratedBetween(from, to time.Time) ([]domain.Beat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	beats := make([]domain.Beat, 0)
	for _, b := range s.beats {
		if (b.CreatedAt.Equal(from) || b.CreatedAt.After(from)) && b.CreatedAt.Before(to) {
			beats = append(beats, b)
		}
	}
	sort.Slice(beats, func(i, j int) bool {
		if !beats[i].CreatedAt.Equal(beats[j].CreatedAt) {
			return beats[i].CreatedAt.Before(beats[j].CreatedAt)
		}
		return s.beatSeq[beats[i].ID] < s.beatSeq[beats[j].ID]
	})
	return beats, nil
}

func (s *MemoryStore) BeatTotals() (domain.BeatTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var totals domain.BeatTotals
	for _, b := range s.beats {
		totals.Generated++
		totals.Revenue += b.Revenue
		if b.Status == domain.StatusUploaded {
			totals.Uploaded++
		}
	}
	return totals, nil
}

func (s *MemoryStore) SaveChannel(c domain.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[c.Name]; !ok {
		s.chanOrder = append(s.chanOrder, c.Name)
	}
	s.channels[c.Name] = c
	return nil
}

func (s *MemoryStore) GetChannel(name string) (domain.Channel, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[name]
	return c, ok, nil
}

func (s *MemoryStore) ListActiveChannels() ([]domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels := make([]domain.Channel, 0, len(s.channels))
	for _, name := range s.chanOrder {
		c := s.channels[name]
		if c.Status == domain.ChannelActive {
			channels = append(channels, c)
		}
	}
	return channels, nil
}

func (s *MemoryStore) ChannelCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels), nil
}

func (s *MemoryStore) RecordChannelUpload(name string, views int64, revenue float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[name]
	if !ok {
		return fmt.Errorf("channel %s not found", name)
	}
	c.TotalUploads++
	c.TotalViews += views
	c.TotalRevenue += revenue
	t := at.UTC()
	c.LastUploadAt = &t
	s.channels[name] = c
	return nil
}

func (s *MemoryStore) SaveDailyStat(stat domain.DailyStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stat.Date + "/" + stat.Genre
	if _, ok := s.stats[key]; !ok {
		s.statOrder = append(s.statOrder, key)
	}
	s.stats[key] = stat
	return nil
}

func (s *MemoryStore) ListDailyStats(limit int) ([]domain.DailyStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make([]domain.DailyStat, 0, len(s.stats))
	for _, key := range s.statOrder {
		stats = append(stats, s.stats[key])
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Date != stats[j].Date {
			return stats[i].Date > stats[j].Date
		}
		return stats[i].Genre < stats[j].Genre
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (s *MemoryStore) EmpireStatus() (domain.EmpireStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

func (s *MemoryStore) SetRunning(running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = running
	s.status.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) RecordGeneration(count int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := at.UTC()
	s.status.LastGeneration = &t
	s.status.DailyGenerated += count
	s.status.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) RecordUploads(count int, revenue float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := at.UTC()
	s.status.LastUpload = &t
	s.status.DailyUploaded += count
	s.status.DailyRevenue += revenue
	s.status.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ResetDailyCounters() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DailyGenerated = 0
	s.status.DailyUploaded = 0
	s.status.DailyRevenue = 0
	s.status.UpdatedAt = time.Now().UTC()
	return nil
}

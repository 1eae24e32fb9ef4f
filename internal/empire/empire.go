// Package empire runs the autonomous beat operation: recurring generation,
// uploads, optimization, rollups, and backups driven by a minute tick loop.
package empire

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"beatempire/internal/config"
	"beatempire/internal/eventlog"
	"beatempire/internal/quota"
	"beatempire/internal/store"
	"beatempire/pkg/ai"
	"beatempire/pkg/domain"
	"beatempire/pkg/producer"
	"beatempire/pkg/publisher"
	"beatempire/pkg/storage"
)

// State is the orchestrator lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Config wires the orchestrator's collaborators. Store, Producer, and
// Publisher are required; everything else has a working default.
type Config struct {
	Store      store.Store
	Producer   producer.Producer
	Publisher  publisher.Publisher
	Copywriter ai.Copywriter
	Artifacts  *storage.FileStore
	Archive    storage.ObjectStore
	Events     *eventlog.Log

	SettingsPath string
	Settings     config.Settings

	GlobalQuota  quota.Quota
	ChannelQuota quota.Quota

	TickInterval time.Duration
	Workers      int64

	DBPath    string
	BackupDir string

	// Now and Rand are test seams.
	Now  func() time.Time
	Rand *rand.Rand
}

// Empire is the 24/7 orchestrator.
type Empire struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	settings config.Settings
	jobs     []*job
	cancel   context.CancelFunc
	done     chan struct{}

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	now func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// New validates the wiring and returns a stopped orchestrator.
func New(cfg Config) (*Empire, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("empire requires a store")
	}
	if cfg.Producer == nil {
		return nil, fmt.Errorf("empire requires a producer")
	}
	if cfg.Publisher == nil {
		return nil, fmt.Errorf("empire requires a publisher")
	}
	if cfg.Copywriter == nil {
		cfg.Copywriter = ai.StaticCopywriter{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Minute
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.GlobalQuota == nil {
		cfg.GlobalQuota = quota.NewMemory(cfg.Settings.Safety.MaxDailyUploads)
	}
	if cfg.ChannelQuota == nil {
		cfg.ChannelQuota = quota.NewMemory(cfg.Settings.Upload.DailyLimitPerChannel)
	}
	return &Empire{
		cfg:      cfg,
		logger:   slog.Default().With("component", "empire"),
		settings: cfg.Settings,
		sem:      semaphore.NewWeighted(cfg.Workers),
		now:      cfg.Now,
		rand:     cfg.Rand,
	}, nil
}

// State returns the current lifecycle state.
func (e *Empire) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns a copy of the live settings.
func (e *Empire) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Start moves the empire to running and kicks off an immediate generation
// session. Calling Start while not stopped is a logged no-op.
func (e *Empire) Start() error {
	e.mu.Lock()
	if e.state != StateStopped {
		e.mu.Unlock()
		e.logger.Warn("start ignored", "state", e.state.String())
		return nil
	}
	e.state = StateStarting
	now := e.now()
	e.jobs = e.buildJobs(now)
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.state = StateRunning
	e.mu.Unlock()

	if err := e.cfg.Store.SetRunning(true); err != nil {
		e.logger.Error("persist running flag", "err", err)
	}
	e.cfg.Events.Printf("empire started")
	e.logger.Info("empire started", "tick", e.cfg.TickInterval.String(), "workers", e.cfg.Workers)

	// startup generation runs right away, the scheduled one follows
	// interval_hours later
	e.dispatch(ctx, e.findJob("generation"))

	go e.run(ctx)
	return nil
}

// Stop cancels the tick loop, waits for in-flight jobs, and returns the
// empire to stopped. Stopping a non-running empire is a no-op.
func (e *Empire) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return nil
	}
	e.state = StateStopping
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
	e.wg.Wait()

	if err := e.cfg.Store.SetRunning(false); err != nil {
		e.logger.Error("persist running flag", "err", err)
	}

	e.mu.Lock()
	e.state = StateStopped
	e.jobs = nil
	e.cancel = nil
	e.done = nil
	e.mu.Unlock()

	e.cfg.Events.Printf("empire stopped")
	e.logger.Info("empire stopped")
	return nil
}

func (e *Empire) run(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Empire) tick(ctx context.Context) {
	now := e.now()
	e.mu.Lock()
	var due []*job
	for _, j := range e.jobs {
		if j.due(now) {
			j.lastRun = now
			due = append(due, j)
		}
	}
	e.mu.Unlock()
	for _, j := range due {
		e.dispatch(ctx, j)
	}
}

// dispatch runs a job on the bounded worker pool. Panics are contained so a
// misbehaving job never takes down the tick loop.
func (e *Empire) dispatch(ctx context.Context, j *job) {
	if j == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer e.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("job panicked", "job", j.name, "panic", r)
				e.coolDown(j)
			}
		}()
		start := e.now()
		if err := j.run(ctx); err != nil {
			e.logger.Error("job failed", "job", j.name, "err", err)
			e.cfg.Events.Printf("%s job error: %v", j.name, err)
			e.coolDown(j)
			return
		}
		e.logger.Info("job complete", "job", j.name, "took", e.now().Sub(start).String())
	}()
}

func (e *Empire) coolDown(j *job) {
	e.mu.Lock()
	defer e.mu.Unlock()
	minutes := e.settings.Safety.ErrorCooldownMinutes
	if minutes <= 0 {
		return
	}
	j.cooldownUntil = e.now().Add(time.Duration(minutes) * time.Minute)
}

func (e *Empire) findJob(name string) *job {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, j := range e.jobs {
		if j.name == name {
			return j
		}
	}
	return nil
}

func (e *Empire) randFloat() float64 {
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.rand.Float64()
}

func (e *Empire) randIntn(n int) int {
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.rand.Intn(n)
}

// sleep waits for d or until ctx is done.
func (e *Empire) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Snapshot is the dashboard view of the empire.
type Snapshot struct {
	State          string              `json:"state"`
	Status         domain.EmpireStatus `json:"status"`
	Totals         domain.BeatTotals   `json:"totals"`
	ActiveChannels int                 `json:"activeChannels"`
}

// Snapshot collects the current run state and cumulative totals.
func (e *Empire) Snapshot() (Snapshot, error) {
	status, err := e.cfg.Store.EmpireStatus()
	if err != nil {
		return Snapshot{}, err
	}
	totals, err := e.cfg.Store.BeatTotals()
	if err != nil {
		return Snapshot{}, err
	}
	channels, err := e.cfg.Store.ListActiveChannels()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		State:          e.State().String(),
		Status:         status,
		Totals:         totals,
		ActiveChannels: len(channels),
	}, nil
}

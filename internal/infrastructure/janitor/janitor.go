// Package janitor runs periodic sweeps of expired cache entries and rate windows.
package janitor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"github.com/saintathena/backend/internal/logger"
)

// DefaultSchedule sweeps once a minute
const DefaultSchedule = "@every 1m"

// Sweeper drops expired state and reports how many entries it removed
type Sweeper interface {
	Sweep() int
}

// Janitor schedules Sweep on every registered sweeper
type Janitor struct {
	cron     *cron.Cron
	schedule string
	log      *log.Logger

	mu       sync.Mutex
	sweepers map[string]Sweeper
	entry    cron.EntryID
	started  bool
}

// New creates a janitor for the given cron spec (standard 5-field or descriptor such as "@every 30s")
func New(schedule string, l *log.Logger) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	if l == nil {
		l = logger.New("janitor")
	}
	return &Janitor{
		cron:     cron.New(),
		schedule: schedule,
		log:      l,
		sweepers: make(map[string]Sweeper),
	}, nil
}

// Register adds a sweeper under name, replacing any previous one
func (j *Janitor) Register(name string, s Sweeper) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sweepers[name] = s
}

// Start schedules the sweep job and starts the scheduler. Calling it twice is a no-op.
func (j *Janitor) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return nil
	}

	id, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce() })
	if err != nil {
		return fmt.Errorf("schedule janitor: %w", err)
	}
	j.entry = id
	j.started = true
	j.cron.Start()
	j.log.Info("janitor started", "schedule", j.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.started {
		j.mu.Unlock()
		return
	}
	j.started = false
	j.cron.Remove(j.entry)
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.log.Info("janitor stopped")
}

// RunOnce sweeps every registered sweeper and returns the removal count per name
func (j *Janitor) RunOnce() map[string]int {
	j.mu.Lock()
	names := make([]string, 0, len(j.sweepers))
	for name := range j.sweepers {
		names = append(names, name)
	}
	sweepers := make(map[string]Sweeper, len(j.sweepers))
	for name, s := range j.sweepers {
		sweepers[name] = s
	}
	j.mu.Unlock()
	sort.Strings(names)

	removed := make(map[string]int, len(names))
	for _, name := range names {
		n := sweepers[name].Sweep()
		removed[name] = n
		if n > 0 {
			j.log.Debug("swept", "target", name, "removed", n)
		}
	}
	return removed
}

package process

import (
	"sort"
	"sync"
	"time"

	"github.com/winevat/winevat/internal/logging"
)

// Tracker maintains a registry of live runs keyed by run ID. Callers
// register a run once Started is observed and remove it once Terminated is
// observed; the tracker never outlives a run's event stream.
type Tracker struct {
	mu     sync.RWMutex
	runs   map[uint64]*trackedRun
	logger logging.Logger
}

// trackedRun pairs a run's metadata with its supervisor for cancellation.
type trackedRun struct {
	sup       *Supervisor
	name      string
	state     State
	pid       int
	startedAt time.Time
}

// NewTracker creates an empty run tracker.
func NewTracker(logger logging.Logger) *Tracker {
	return &Tracker{
		runs:   make(map[uint64]*trackedRun),
		logger: logger,
	}
}

// Add registers a started run.
func (t *Tracker) Add(sup *Supervisor, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[sup.RunID()] = &trackedRun{
		sup:       sup,
		name:      name,
		state:     StateRunning,
		pid:       sup.PID(),
		startedAt: time.Now(),
	}
}

// Remove deregisters a run once its stream has terminated.
func (t *Tracker) Remove(runID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.runs, runID)
}

// Get returns run info. Returns idle state if the run is not tracked.
func (t *Tracker) Get(runID uint64) Info {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, exists := t.runs[runID]
	if !exists {
		return Info{RunID: runID, State: StateIdle}
	}
	return tr.info(runID)
}

// List returns info for all live runs, ordered by run ID.
func (t *Tracker) List() []Info {
	t.mu.RLock()
	defer t.mu.RUnlock()

	infos := make([]Info, 0, len(t.runs))
	for id, tr := range t.runs {
		infos = append(infos, tr.info(id))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RunID < infos[j].RunID })
	return infos
}

// Cancel requests termination of a live run. Returns false if the run is
// not tracked. Cancelling an already-stopping run is a no-op.
func (t *Tracker) Cancel(runID uint64) bool {
	t.mu.Lock()
	tr, exists := t.runs[runID]
	if exists {
		tr.state = StateStopping
	}
	t.mu.Unlock()

	if !exists {
		return false
	}
	t.logger.Info("Cancelling run", "run_id", runID, "name", tr.name)
	tr.sup.Terminate()
	return true
}

// CancelAll requests termination of every live run. Used at daemon
// shutdown so no child process outlives the service.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	sups := make([]*Supervisor, 0, len(t.runs))
	for _, tr := range t.runs {
		tr.state = StateStopping
		sups = append(sups, tr.sup)
	}
	t.mu.Unlock()

	if len(sups) == 0 {
		return
	}
	t.logger.Info("Cancelling all runs", "count", len(sups))
	for _, sup := range sups {
		sup.Terminate()
	}
}

func (tr *trackedRun) info(id uint64) Info {
	return Info{
		RunID:     id,
		Name:      tr.name,
		State:     tr.state,
		PID:       tr.pid,
		StartedAt: tr.startedAt,
	}
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrlokans/jisho/internal/display"
	"github.com/mrlokans/jisho/internal/events"
	"github.com/mrlokans/jisho/internal/importer"
	"github.com/mrlokans/jisho/internal/lifecycle"
)

// InputFile is one uploaded dictionary archive.
type InputFile struct {
	Name    string
	Content []byte
}

// Status is the externally visible operation state a UI binds to.
type Status struct {
	Busy            bool           `json:"busy"`
	StepLabel       string         `json:"step_label,omitempty"`
	ProgressPercent float64        `json:"progress_percent"`
	Errors          []display.Line `json:"errors,omitempty"`
}

// OrchestratorConfig carries the orchestrator's collaborators.
// Notifier, Stats and Sessions are optional.
type OrchestratorConfig struct {
	Store      Store
	Importer   DictionaryImporter
	Settings   SettingsSynchronizer
	Notifier   UpdateNotifier
	Stats      StatsRefresher
	Sessions   SessionRecorder
	Normalizer *display.Normalizer
	Keeper     *lifecycle.Keeper
	Details    importer.Details
}

// Orchestrator is the single-flight controller for the two mutating
// operations, purge and import. At most one of either runs at a time;
// a second invocation while busy is a silent no-op. Failures never
// propagate past this boundary: they are rendered into the visible
// error panel and cleanup always runs.
type Orchestrator struct {
	store      Store
	importer   DictionaryImporter
	settings   SettingsSynchronizer
	notifier   UpdateNotifier
	stats      StatsRefresher
	sessions   SessionRecorder
	normalizer *display.Normalizer
	keeper     *lifecycle.Keeper
	details    importer.Details

	guard Guard

	mu    sync.Mutex
	state Status
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	normalizer := cfg.Normalizer
	if normalizer == nil {
		normalizer = display.NewNormalizer(nil)
	}
	keeper := cfg.Keeper
	if keeper == nil {
		keeper = lifecycle.NewKeeper()
	}
	return &Orchestrator{
		store:      cfg.Store,
		importer:   cfg.Importer,
		settings:   cfg.Settings,
		notifier:   cfg.Notifier,
		stats:      cfg.Stats,
		sessions:   cfg.Sessions,
		normalizer: normalizer,
		keeper:     keeper,
		details:    cfg.Details,
	}
}

// Busy reports whether a mutating operation is in flight.
func (o *Orchestrator) Busy() bool {
	return o.guard.Busy()
}

// Status returns a snapshot of the visible operation state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := o.state
	snapshot.Errors = append([]display.Line(nil), o.state.Errors...)
	return snapshot
}

// Purge deletes all dictionary data, then clears derived dictionary
// configuration on every profile. The settings cleanup is best-effort:
// partial failures are displayed but the purge is not rolled back.
// Silent no-op while another operation is running.
func (o *Orchestrator) Purge(ctx context.Context) {
	if !o.guard.TryAcquire() {
		return
	}
	token := o.keeper.Acquire()
	o.beginOperation()
	defer func() {
		token.Release()
		o.endOperation()
		o.refreshStats()
		o.guard.Release()
	}()

	if err := o.store.Purge(ctx); err != nil {
		o.displayErrors([]error{fmt.Errorf("failed to purge the database: %w", err)})
		return
	}

	o.notify(events.KindDictionary, events.ReasonPurge)

	settingsErrs, err := o.settings.ClearDictionaries(ctx)
	if err != nil {
		o.displayErrors([]error{err})
		return
	}
	if len(settingsErrs) > 0 {
		o.displayErrors(settingsErrs)
	}
}

// ImportFiles imports archives strictly in input order. One failing
// file does not stop the rest; errors accumulate in the panel for the
// whole batch. Silent no-op while another operation is running.
func (o *Orchestrator) ImportFiles(ctx context.Context, files []InputFile) {
	if !o.guard.TryAcquire() {
		return
	}
	token := o.keeper.Acquire()
	o.beginOperation()
	defer func() {
		token.Release()
		o.endOperation()
		o.refreshStats()
		o.guard.Release()
	}()

	for i, file := range files {
		if len(files) > 1 {
			o.setStepLabel(fmt.Sprintf("(%d of %d)", i+1, len(files)))
		}
		o.setProgressPercent(0)

		displayErrs, fatal := o.importOne(ctx, file)
		if len(displayErrs) > 0 {
			o.displayErrors(displayErrs)
		}
		if fatal != nil {
			// Plumbing is unreachable; remaining files would fail the
			// same way. Cleanup still runs.
			o.displayErrors([]error{fatal})
			return
		}
	}
}

func (o *Orchestrator) beginOperation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = Status{Busy: true}
}

func (o *Orchestrator) endOperation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Busy = false
	o.state.StepLabel = ""
	o.state.ProgressPercent = 0
}

func (o *Orchestrator) setStepLabel(label string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.StepLabel = label
}

func (o *Orchestrator) setProgressPercent(percent float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.ProgressPercent = percent
}

// displayErrors logs the errors and merges them into the visible
// panel, deduplicated by display text with counts. The panel persists
// until the next operation starts.
func (o *Orchestrator) displayErrors(errs []error) {
	lines := o.normalizer.Render(errs)

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, line := range lines {
		merged := false
		for i := range o.state.Errors {
			if o.state.Errors[i].Text == line.Text {
				o.state.Errors[i].Count += line.Count
				merged = true
				break
			}
		}
		if !merged {
			o.state.Errors = append(o.state.Errors, line)
		}
	}
}

func (o *Orchestrator) notify(kind, reason string) {
	if o.notifier != nil {
		o.notifier.Notify(kind, reason)
	}
}

func (o *Orchestrator) refreshStats() {
	if o.stats != nil {
		o.stats.Refresh()
	}
}

package hamper

import (
	"context"
	"time"

	"github.com/hamperhouse/storefront-backend/pkg/debounce"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/metrics"
)

const defaultSaveTimeout = 10 * time.Second

type autosaveMetrics interface {
	IncAutosave(outcome string)
}

// AutoSaver persists draft snapshots behind a trailing debounce. Saves are
// best effort: failures are logged and counted, never returned.
type AutoSaver struct {
	remote   Remote
	snapshot func() Draft
	debounce *debounce.Debouncer
	timeout  time.Duration
	logg     *logger.Logger
	metrics  autosaveMetrics
}

// NewAutoSaver builds a saver that reads the draft through snapshot when the
// debounce fires, so the latest state is what gets saved.
func NewAutoSaver(remote Remote, snapshot func() Draft, opts WizardOptions) *AutoSaver {
	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	return &AutoSaver{
		remote:   remote,
		snapshot: snapshot,
		debounce: debounce.New(delay),
		timeout:  timeout,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}
}

// Schedule (re)arms the debounce.
func (a *AutoSaver) Schedule() {
	a.debounce.Schedule(a.save)
}

// Cancel drops a pending save.
func (a *AutoSaver) Cancel() {
	a.debounce.Cancel()
}

// Stop drops a pending save and waits for one already in flight, so no save
// started before Stop lands after it.
func (a *AutoSaver) Stop() {
	a.debounce.CancelAndWait()
}

// Flush runs a pending save now and reports whether one was pending.
func (a *AutoSaver) Flush() bool {
	return a.debounce.Flush()
}

func (a *AutoSaver) save() {
	draft := a.snapshot()
	if !draft.HasOccasion() {
		a.record(metrics.AutosaveSkipped)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.remote.SaveHamper(ctx, draft.Payload()); err != nil {
		if a.logg != nil {
			a.logg.WarnErr(a.logg.WithField(ctx, "occasion", draft.Occasion), "hamper autosave failed", err)
		}
		a.record(metrics.AutosaveFailed)
		return
	}
	a.record(metrics.AutosaveSaved)
}

func (a *AutoSaver) record(outcome string) {
	if a.metrics != nil {
		a.metrics.IncAutosave(outcome)
	}
}

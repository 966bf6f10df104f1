package hamper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// DefaultAutosaveDelay is the trailing debounce applied to draft saves.
const DefaultAutosaveDelay = time.Second

// Remote is the draft store the wizard talks to.
type Remote interface {
	SaveHamper(ctx context.Context, payload Payload) error
	DiscardHamper(ctx context.Context) error
	CheckoutHamper(ctx context.Context, payload Payload) error
}

// WizardOptions configures a Wizard.
type WizardOptions struct {
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	Logger        *logger.Logger
	Metrics       autosaveMetrics
}

// Wizard drives the five-step hamper builder. Forward moves are guarded,
// backward moves never are, and every mutation schedules an autosave.
// A Wizard is safe for concurrent use.
type Wizard struct {
	mu     sync.Mutex
	draft  Draft
	remote Remote
	saver  *AutoSaver
}

// NewWizard starts an empty wizard.
func NewWizard(remote Remote, opts WizardOptions) *Wizard {
	return ResumeWizard(remote, NewDraft(), opts)
}

// ResumeWizard continues from a previously saved draft.
func ResumeWizard(remote Remote, draft Draft, opts WizardOptions) *Wizard {
	if !draft.CurrentStep.IsValid() {
		draft.CurrentStep = enums.HamperStepOccasion
	}
	w := &Wizard{draft: draft.Clone(), remote: remote}
	w.saver = NewAutoSaver(remote, w.Draft, opts)
	return w
}

// Draft returns a snapshot of the current state.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

// Step returns the current step.
func (w *Wizard) Step() enums.HamperStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.CurrentStep
}

// SetStep moves to target. Moving forward requires every step before target
// to satisfy its guard.
func (w *Wizard) SetStep(target enums.HamperStep) error {
	if !target.IsValid() {
		return pkgerrors.NewValidation("invalid step", pkgerrors.FieldErrors{"currentStep": "is out of range"})
	}
	w.mu.Lock()
	if target > w.draft.CurrentStep {
		if err := w.draft.CheckThrough(target - 1); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.draft.CurrentStep = target
	w.mu.Unlock()

	w.saver.Schedule()
	return nil
}

// Next advances one step.
func (w *Wizard) Next() error {
	return w.SetStep(w.Step() + 1)
}

// Back returns one step; it is a no-op on the first step.
func (w *Wizard) Back() {
	step := w.Step()
	if step > enums.HamperStepOccasion {
		_ = w.SetStep(step - 1)
	}
}

func (w *Wizard) mutate(fn func(d *Draft)) {
	w.mu.Lock()
	fn(&w.draft)
	w.mu.Unlock()
	w.saver.Schedule()
}

func (w *Wizard) SetOccasion(occasion string) {
	w.mutate(func(d *Draft) { d.Occasion = occasion })
}

func (w *Wizard) SelectBox(boxID uuid.UUID, variant string) {
	w.mutate(func(d *Draft) {
		d.BoxID = boxID
		d.BoxVariant = variant
	})
}

// ToggleProduct adds the product when absent and removes it when present.
func (w *Wizard) ToggleProduct(productID uuid.UUID) {
	w.mutate(func(d *Draft) {
		for i, id := range d.ProductIDs {
			if id == productID {
				d.ProductIDs = append(d.ProductIDs[:i:i], d.ProductIDs[i+1:]...)
				return
			}
		}
		d.ProductIDs = append(d.ProductIDs, productID)
	})
}

func (w *Wizard) SelectBag(bagID uuid.UUID, variant string) {
	w.mutate(func(d *Draft) {
		d.BagID = bagID
		d.BagVariant = variant
	})
}

func (w *Wizard) SetNotes(toCreator, toReceiver string) {
	w.mutate(func(d *Draft) {
		d.NotesToCreator = toCreator
		d.NotesToReceiver = toReceiver
	})
}

func (w *Wizard) SetAddRose(add bool) {
	w.mutate(func(d *Draft) { d.AddRose = add })
}

// Discard deletes the remote draft and resets the wizard. On failure the
// state is kept and the error is returned.
func (w *Wizard) Discard(ctx context.Context) error {
	w.saver.Stop()
	if err := w.remote.DiscardHamper(ctx); err != nil {
		w.saver.Schedule()
		return err
	}
	w.reset()
	return nil
}

// Checkout sends the current draft to be converted into cart lines. An
// incomplete draft is rejected before any remote call. On failure the state
// is kept.
func (w *Wizard) Checkout(ctx context.Context) error {
	if err := w.Draft().CheckComplete(); err != nil {
		return err
	}
	w.saver.Stop()
	draft := w.Draft()
	if err := draft.CheckComplete(); err != nil {
		w.saver.Schedule()
		return err
	}
	if err := w.remote.CheckoutHamper(ctx, draft.Payload()); err != nil {
		w.saver.Schedule()
		return err
	}
	w.reset()
	return nil
}

// Close runs any pending autosave immediately.
func (w *Wizard) Close() {
	w.saver.Flush()
}

func (w *Wizard) reset() {
	w.saver.Stop()
	w.mu.Lock()
	w.draft = NewDraft()
	w.mu.Unlock()
}

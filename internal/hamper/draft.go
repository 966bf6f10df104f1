// Package hamper implements the build-your-own gift hamper flow: the draft
// model and its step guards, the client-side wizard with debounced autosave,
// and the server-side draft store and checkout conversion.
package hamper

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

// Draft is the in-progress hamper selection.
type Draft struct {
	Occasion        string
	BoxID           uuid.UUID
	BoxVariant      string
	ProductIDs      []uuid.UUID
	BagID           uuid.UUID
	BagVariant      string
	NotesToCreator  string
	NotesToReceiver string
	AddRose         bool
	CurrentStep     enums.HamperStep
}

// NewDraft returns the initial empty draft positioned on the first step.
func NewDraft() Draft {
	return Draft{CurrentStep: enums.HamperStepOccasion}
}

// HasOccasion reports whether the draft is worth persisting.
func (d Draft) HasOccasion() bool {
	return strings.TrimSpace(d.Occasion) != ""
}

// Clone returns a copy that shares no slices with d.
func (d Draft) Clone() Draft {
	d.ProductIDs = slices.Clone(d.ProductIDs)
	return d
}

// guard returns the field problems blocking a move past step.
func (d Draft) guard(step enums.HamperStep) pkgerrors.FieldErrors {
	fields := pkgerrors.FieldErrors{}
	switch step {
	case enums.HamperStepOccasion:
		if !d.HasOccasion() {
			fields["occasion"] = "is required"
		}
	case enums.HamperStepBox:
		if d.BoxID == uuid.Nil {
			fields["boxId"] = "is required"
		}
		if strings.TrimSpace(d.BoxVariant) == "" {
			fields["boxVariantId"] = "is required"
		}
	case enums.HamperStepProducts:
		if len(d.ProductIDs) == 0 {
			fields["productIds"] = "select at least one product"
		}
	case enums.HamperStepBag:
		if d.BagID == uuid.Nil {
			fields["bagId"] = "is required"
		}
		if strings.TrimSpace(d.BagVariant) == "" {
			fields["bagVariantId"] = "is required"
		}
	}
	return fields
}

// CheckThrough verifies the guards of every step up to and including last.
func (d Draft) CheckThrough(last enums.HamperStep) error {
	for step := enums.HamperStepOccasion; step <= last; step++ {
		if fields := d.guard(step); len(fields) > 0 {
			return pkgerrors.NewValidation("complete the "+step.String()+" step first", fields)
		}
	}
	return nil
}

// CheckComplete verifies the draft can be converted into cart lines.
func (d Draft) CheckComplete() error {
	return d.CheckThrough(enums.HamperStepBag)
}

// Payload is the wire and storage shape of a draft.
type Payload struct {
	Occasion        string   `json:"occasion" bson:"occasion"`
	BoxID           string   `json:"boxId,omitempty" bson:"box_id,omitempty"`
	BoxVariantID    string   `json:"boxVariantId,omitempty" bson:"box_variant_id,omitempty"`
	BagID           string   `json:"bagId,omitempty" bson:"bag_id,omitempty"`
	BagVariantID    string   `json:"bagVariantId,omitempty" bson:"bag_variant_id,omitempty"`
	ProductIDs      []string `json:"productIds" bson:"product_ids"`
	NotesToCreator  string   `json:"notesToCreator" bson:"notes_to_creator"`
	NotesToReceiver string   `json:"notesToReceiver" bson:"notes_to_receiver"`
	AddRose         bool     `json:"addRose" bson:"add_rose"`
	CurrentStep     int      `json:"currentStep" bson:"current_step"`
}

// Payload serializes the draft for autosave.
func (d Draft) Payload() Payload {
	p := Payload{
		Occasion:        d.Occasion,
		BoxVariantID:    d.BoxVariant,
		BagVariantID:    d.BagVariant,
		ProductIDs:      make([]string, 0, len(d.ProductIDs)),
		NotesToCreator:  d.NotesToCreator,
		NotesToReceiver: d.NotesToReceiver,
		AddRose:         d.AddRose,
		CurrentStep:     int(d.CurrentStep),
	}
	if d.BoxID != uuid.Nil {
		p.BoxID = d.BoxID.String()
	}
	if d.BagID != uuid.Nil {
		p.BagID = d.BagID.String()
	}
	for _, id := range d.ProductIDs {
		p.ProductIDs = append(p.ProductIDs, id.String())
	}
	return p
}

// DraftFromPayload rebuilds a draft. Malformed ids are reported per field and
// an out-of-range step falls back to the first step.
func DraftFromPayload(p Payload) (Draft, error) {
	fields := pkgerrors.FieldErrors{}
	d := Draft{
		Occasion:        p.Occasion,
		BoxVariant:      p.BoxVariantID,
		BagVariant:      p.BagVariantID,
		NotesToCreator:  p.NotesToCreator,
		NotesToReceiver: p.NotesToReceiver,
		AddRose:         p.AddRose,
		CurrentStep:     enums.HamperStep(p.CurrentStep),
	}
	if !d.CurrentStep.IsValid() {
		d.CurrentStep = enums.HamperStepOccasion
	}
	d.BoxID = parseOptionalID(p.BoxID, "boxId", fields)
	d.BagID = parseOptionalID(p.BagID, "bagId", fields)
	if len(p.ProductIDs) > 0 {
		d.ProductIDs = make([]uuid.UUID, 0, len(p.ProductIDs))
	}
	for _, raw := range p.ProductIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			fields["productIds"] = "must contain valid ids"
			continue
		}
		d.ProductIDs = append(d.ProductIDs, id)
	}
	if len(fields) > 0 {
		return Draft{}, pkgerrors.NewValidation("invalid hamper draft", fields)
	}
	return d, nil
}

func parseOptionalID(raw, field string, fields pkgerrors.FieldErrors) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fields[field] = "must be a valid id"
		return uuid.Nil
	}
	return id
}

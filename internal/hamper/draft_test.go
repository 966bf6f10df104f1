package hamper

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func completeDraft() Draft {
	return Draft{
		Occasion:        "birthday",
		BoxID:           uuid.New(),
		BoxVariant:      "kraft",
		ProductIDs:      []uuid.UUID{uuid.New(), uuid.New()},
		BagID:           uuid.New(),
		BagVariant:      "red",
		NotesToCreator:  "no nuts please",
		NotesToReceiver: "Happy birthday!\nLove, A",
		AddRose:         true,
		CurrentStep:     enums.HamperStepNotes,
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	original := completeDraft()

	restored, err := DraftFromPayload(original.Payload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.Occasion != original.Occasion ||
		restored.BoxID != original.BoxID || restored.BoxVariant != original.BoxVariant ||
		restored.BagID != original.BagID || restored.BagVariant != original.BagVariant ||
		restored.NotesToCreator != original.NotesToCreator || restored.NotesToReceiver != original.NotesToReceiver ||
		restored.AddRose != original.AddRose || restored.CurrentStep != original.CurrentStep {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored, original)
	}
	if len(restored.ProductIDs) != 2 || restored.ProductIDs[0] != original.ProductIDs[0] || restored.ProductIDs[1] != original.ProductIDs[1] {
		t.Fatalf("product ids not preserved: %v", restored.ProductIDs)
	}
}

func TestPayloadRoundTripEmptyDraft(t *testing.T) {
	restored, err := DraftFromPayload(NewDraft().Payload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.BoxID != uuid.Nil || restored.BagID != uuid.Nil || len(restored.ProductIDs) != 0 {
		t.Fatalf("expected empty selections, got %+v", restored)
	}
	if restored.CurrentStep != enums.HamperStepOccasion {
		t.Fatalf("expected first step, got %s", restored.CurrentStep)
	}
}

func TestDraftFromPayloadRejectsBadIDs(t *testing.T) {
	_, err := DraftFromPayload(Payload{Occasion: "x", BoxID: "box-1", ProductIDs: []string{"nope"}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := pkgerrors.As(err).Fields()
	if _, ok := fields["boxId"]; !ok {
		t.Fatalf("expected boxId field error, got %v", fields)
	}
	if _, ok := fields["productIds"]; !ok {
		t.Fatalf("expected productIds field error, got %v", fields)
	}
}

func TestCheckThroughReportsFirstFailingStep(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Draft)
		field string
	}{
		{"occasion", func(d *Draft) { d.Occasion = "  " }, "occasion"},
		{"box variant", func(d *Draft) { d.BoxVariant = "" }, "boxVariantId"},
		{"products", func(d *Draft) { d.ProductIDs = nil }, "productIds"},
		{"bag", func(d *Draft) { d.BagID = uuid.Nil }, "bagId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := completeDraft()
			tc.edit(&d)
			err := d.CheckComplete()
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := pkgerrors.As(err).Fields()[tc.field]; !ok {
				t.Fatalf("expected %s field error, got %v", tc.field, pkgerrors.As(err).Fields())
			}
		})
	}

	d := completeDraft()
	d.NotesToCreator = ""
	d.NotesToReceiver = ""
	if err := d.CheckComplete(); err != nil {
		t.Fatalf("notes are optional, got %v", err)
	}
}

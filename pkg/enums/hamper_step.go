package enums

import "fmt"

// HamperStep is an ordinal position in the hamper builder.
type HamperStep int

const (
	HamperStepOccasion HamperStep = iota + 1
	HamperStepBox
	HamperStepProducts
	HamperStepBag
	HamperStepNotes
)

var hamperStepNames = map[HamperStep]string{
	HamperStepOccasion: "occasion",
	HamperStepBox:      "box",
	HamperStepProducts: "products",
	HamperStepBag:      "bag",
	HamperStepNotes:    "notes",
}

// String implements fmt.Stringer.
func (s HamperStep) String() string {
	if name, ok := hamperStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// IsValid reports whether the step is inside the builder range.
func (s HamperStep) IsValid() bool {
	return s >= HamperStepOccasion && s <= HamperStepNotes
}

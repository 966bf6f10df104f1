package enums

import (
	"fmt"
	"strings"
)

// ComponentKind tells the hamper builder which step a product belongs to.
type ComponentKind string

const (
	ComponentKindItem ComponentKind = "item"
	ComponentKindBox  ComponentKind = "box"
	ComponentKindBag  ComponentKind = "bag"
)

// IsValid reports whether the value is a known ComponentKind.
func (k ComponentKind) IsValid() bool {
	switch k {
	case ComponentKindItem, ComponentKindBox, ComponentKindBag:
		return true
	}
	return false
}

// ParseComponentKind converts raw input into a ComponentKind.
func ParseComponentKind(value string) (ComponentKind, error) {
	kind := ComponentKind(strings.ToLower(strings.TrimSpace(value)))
	if kind == "" {
		return ComponentKindItem, nil
	}
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid component kind %q", value)
	}
	return kind, nil
}

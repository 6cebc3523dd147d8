package variants

import (
	"fmt"
	"strings"

	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
)

// Axis is one named dimension of product variation (e.g. "colors", "sizes",
// or a free-form custom key) with an ordered option list. Option order is
// preserved for display; duplicates within an axis are rejected up front so
// the combination invariant cannot be corrupted at point of use.
type Axis struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// NewAxis validates and constructs an axis. The name must be non-empty after
// trimming; every option must be a non-empty string and unique within the
// axis. An axis with zero options is valid: it simply drops out of the
// cartesian product until options are added.
func NewAxis(name string, options []string) (Axis, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Axis{}, pkgerrors.New(pkgerrors.CodeValidation, "axis name is required")
	}

	seen := make(map[string]struct{}, len(options))
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		value := strings.TrimSpace(opt)
		if value == "" {
			return Axis{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("axis %q contains an empty option", trimmed))
		}
		if _, dup := seen[value]; dup {
			return Axis{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("axis %q contains duplicate option %q", trimmed, value))
		}
		seen[value] = struct{}{}
		cleaned = append(cleaned, value)
	}

	return Axis{Name: trimmed, Options: cleaned}, nil
}

// NewAxes constructs a validated axis list, rejecting duplicate axis names.
// Insertion order is the generation order.
func NewAxes(defs []Axis) ([]Axis, error) {
	axes := make([]Axis, 0, len(defs))
	names := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		axis, err := NewAxis(def.Name, def.Options)
		if err != nil {
			return nil, err
		}
		if _, dup := names[axis.Name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate axis %q", axis.Name))
		}
		names[axis.Name] = struct{}{}
		axes = append(axes, axis)
	}
	return axes, nil
}

// AxesFromCombinations reconstructs axis definitions from a persisted
// combination list by collecting distinct values per axis key. Axis and
// option order follow first appearance, which matches generation order for
// lists produced by Generate.
func AxesFromCombinations(combinations []Combination) []Axis {
	var order []string
	values := map[string][]string{}
	seen := map[string]map[string]struct{}{}

	for _, combo := range combinations {
		for _, name := range combo.axisOrder() {
			value := combo.AxisValues[name]
			if _, ok := seen[name]; !ok {
				seen[name] = map[string]struct{}{}
				order = append(order, name)
			}
			if _, ok := seen[name][value]; !ok {
				seen[name][value] = struct{}{}
				values[name] = append(values[name], value)
			}
		}
	}

	axes := make([]Axis, 0, len(order))
	for _, name := range order {
		axes = append(axes, Axis{Name: name, Options: values[name]})
	}
	return axes
}

package variants

import (
	"fmt"
	"strings"

	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
)

// Readiness classifies whether a combination carries enough data to be
// published to the external advertising catalog. Advisory only: generation
// and editing never block on it.
type Readiness string

const (
	ReadinessError        Readiness = "error"
	ReadinessMissingBrand Readiness = "missing-brand"
	ReadinessIncomplete   Readiness = "incomplete"
	ReadinessReady        Readiness = "ready"
)

// String implements fmt.Stringer.
func (r Readiness) String() string {
	return string(r)
}

// Editable field names accepted by EditField, matching the persisted
// contract keys.
const (
	FieldSKU        = "sku"
	FieldName       = "name"
	FieldPrice      = "price"
	FieldOfferPrice = "offer_price"
	FieldStock      = "stock"
	FieldImageURL   = "image_url"
)

// Generate produces the full cartesian product of the given axes, visiting
// axes in insertion order with the last axis varying fastest. Axes with zero
// options are excluded before the product is computed. Tuples whose id
// matches an entry in prior inherit that entry's editable fields, so
// in-progress edits survive adding or removing an unrelated axis or option;
// tuples with no prior match get empty defaults.
//
// The function is pure: it never mutates axes or prior, and the caller owns
// persistence and regeneration triggers.
func Generate(axes []Axis, prior []Combination) ([]Combination, error) {
	included := make([]Axis, 0, len(axes))
	for _, axis := range axes {
		if strings.TrimSpace(axis.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "axis name is required")
		}
		for _, opt := range axis.Options {
			if strings.TrimSpace(opt) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("axis %q contains an empty option", axis.Name))
			}
		}
		if len(axis.Options) > 0 {
			included = append(included, axis)
		}
	}
	if len(included) == 0 {
		return []Combination{}, nil
	}

	priorByID := make(map[string]Combination, len(prior))
	for _, combo := range prior {
		priorByID[combo.ID] = combo
	}

	total := 1
	for _, axis := range included {
		total *= len(axis.Options)
	}

	result := make([]Combination, 0, total)
	indexByID := make(map[string]int, total)

	indices := make([]int, len(included))
	for {
		values := make([]string, len(included))
		axisValues := make(map[string]string, len(included))
		axisNames := make([]string, len(included))
		for i, axis := range included {
			values[i] = axis.Options[indices[i]]
			axisValues[axis.Name] = values[i]
			axisNames[i] = axis.Name
		}

		combo := Combination{
			ID:         NormalizeID(values),
			AxisValues: axisValues,
			AxisNames:  axisNames,
			Name:       DefaultName(values),
		}
		if previous, ok := priorByID[combo.ID]; ok {
			combo.SKU = previous.SKU
			combo.Name = previous.Name
			combo.PriceCents = previous.PriceCents
			combo.OfferPriceCents = previous.OfferPriceCents
			combo.Stock = previous.Stock
			combo.ImageURL = previous.ImageURL
		}

		// Normalization collisions: the later tuple silently replaces the
		// earlier one at its original position, keeping ids unique.
		if at, dup := indexByID[combo.ID]; dup {
			result[at] = combo
		} else {
			indexByID[combo.ID] = len(result)
			result = append(result, combo)
		}

		// advance odometer, last axis fastest
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(included[i].Options) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			break
		}
	}

	return result, nil
}

// EditField returns a new list with the entry matching id having the named
// field set. Order is preserved and all other entries are untouched. Business
// validation (price ranges, offer vs. list price) is the form layer's
// concern, not this function's.
func EditField(combinations []Combination, id, field string, value any) ([]Combination, error) {
	updated := make([]Combination, len(combinations))
	copy(updated, combinations)

	for i := range updated {
		if updated[i].ID != id {
			continue
		}
		if err := applyEdit(&updated[i], field, value); err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("combination %q not found", id))
}

func applyEdit(combo *Combination, field string, value any) error {
	badType := func(expected string) error {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("field %q expects %s, got %T", field, expected, value))
	}

	switch field {
	case FieldSKU, FieldName, FieldImageURL:
		str, ok := value.(string)
		if !ok {
			return badType("string")
		}
		switch field {
		case FieldSKU:
			combo.SKU = str
		case FieldName:
			combo.Name = str
		case FieldImageURL:
			combo.ImageURL = str
		}
	case FieldPrice, FieldOfferPrice:
		cents, ok := toNullableCents(value)
		if !ok {
			return badType("integer or nil")
		}
		if field == FieldPrice {
			combo.PriceCents = cents
		} else {
			combo.OfferPriceCents = cents
		}
	case FieldStock:
		stock, ok := toInt(value)
		if !ok {
			return badType("integer")
		}
		combo.Stock = stock
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown combination field %q", field))
	}
	return nil
}

func toNullableCents(value any) (*int64, bool) {
	if value == nil {
		return nil, true
	}
	switch v := value.(type) {
	case *int64:
		return v, true
	case int64:
		return &v, true
	case int:
		cents := int64(v)
		return &cents, true
	}
	return nil, false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Remove returns the list without the entry matching id. There is no cascade
// to axes: if the same tuple becomes valid again later the generator recreates
// it with defaults, since identity derives from the tuple itself.
func Remove(combinations []Combination, id string) []Combination {
	result := make([]Combination, 0, len(combinations))
	for _, combo := range combinations {
		if combo.ID == id {
			continue
		}
		result = append(result, combo)
	}
	return result
}

// ClassifyReadiness evaluates the advertising-catalog rules in priority
// order; the first matching rule wins:
//
//  1. error         - price missing or not positive, or stock negative
//  2. missing-brand - the product-level brand is empty
//  3. incomplete    - no image
//  4. ready
func ClassifyReadiness(combo Combination, brand string) Readiness {
	if combo.PriceCents == nil || *combo.PriceCents <= 0 || combo.Stock < 0 {
		return ReadinessError
	}
	if strings.TrimSpace(brand) == "" {
		return ReadinessMissingBrand
	}
	if strings.TrimSpace(combo.ImageURL) == "" {
		return ReadinessIncomplete
	}
	return ReadinessReady
}

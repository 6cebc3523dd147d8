package variants

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Combination is one sellable variant: a concrete tuple of axis option
// selections plus the operator-editable sales fields. Identity is derived
// from the option values (see NormalizeID), not from a random identifier, so
// a regenerated tuple always merges back onto the same entry.
type Combination struct {
	ID              string
	AxisValues      map[string]string
	AxisNames       []string
	SKU             string
	Name            string
	PriceCents      *int64
	OfferPriceCents *int64
	Stock           int
	ImageURL        string
}

// reserved keys of the persisted combination object; axis keys are flattened
// alongside them and therefore may not collide.
var reservedComboKeys = map[string]struct{}{
	"id":          {},
	"sku":         {},
	"name":        {},
	"price":       {},
	"offer_price": {},
	"stock":       {},
	"image_url":   {},
}

// NormalizeID derives the merge key for a tuple of option values: lowercase,
// whitespace collapsed to underscores, values joined by underscores. Distinct
// tuples can normalize to the same id (e.g. "Red Wine" vs "red_wine"); the
// generator lets the later tuple win, mirroring the persisted contract.
func NormalizeID(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		normalized := strings.ToLower(strings.TrimSpace(v))
		normalized = strings.Join(strings.Fields(normalized), "_")
		parts = append(parts, normalized)
	}
	return strings.Join(parts, "_")
}

// DefaultName is the human label applied when a tuple first appears.
func DefaultName(values []string) string {
	return strings.Join(values, " - ")
}

func (c Combination) axisOrder() []string {
	if len(c.AxisNames) == len(c.AxisValues) {
		return c.AxisNames
	}
	names := make([]string, 0, len(c.AxisValues))
	for name := range c.AxisValues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON emits the persisted contract shape: the fixed sales fields plus
// one top-level key per axis holding the selected option.
func (c Combination) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	var sku any
	if c.SKU != "" {
		sku = c.SKU
	}
	var imageURL any
	if c.ImageURL != "" {
		imageURL = c.ImageURL
	}

	fields := []struct {
		key   string
		value any
	}{
		{"id", c.ID},
		{"sku", sku},
		{"name", c.Name},
		{"price", c.PriceCents},
		{"offer_price", c.OfferPriceCents},
		{"stock", c.Stock},
		{"image_url", imageURL},
	}
	for _, f := range fields {
		if err := writeField(f.key, f.value); err != nil {
			return nil, err
		}
	}
	for _, name := range c.axisOrder() {
		if _, clash := reservedComboKeys[name]; clash {
			return nil, fmt.Errorf("axis name %q collides with a reserved combination field", name)
		}
		if err := writeField(name, c.AxisValues[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flattened contract shape back, capturing axis key
// order as it appears in the document so axis definitions can be rebuilt.
func (c *Combination) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("combination: expected JSON object")
	}

	out := Combination{AxisValues: map[string]string{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		if _, fixed := reservedComboKeys[key]; fixed {
			if err := out.applyFixedField(key, raw); err != nil {
				return err
			}
			continue
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("combination: axis %q holds a non-string option: %w", key, err)
		}
		out.AxisValues[key] = value
		out.AxisNames = append(out.AxisNames, key)
	}

	*c = out
	return nil
}

func (c *Combination) applyFixedField(key string, raw json.RawMessage) error {
	switch key {
	case "id":
		return json.Unmarshal(raw, &c.ID)
	case "name":
		return json.Unmarshal(raw, &c.Name)
	case "sku":
		return unmarshalNullableString(raw, &c.SKU)
	case "image_url":
		return unmarshalNullableString(raw, &c.ImageURL)
	case "price":
		return unmarshalNullableCents(raw, &c.PriceCents)
	case "offer_price":
		return unmarshalNullableCents(raw, &c.OfferPriceCents)
	case "stock":
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			c.Stock = 0
			return nil
		}
		return json.Unmarshal(raw, &c.Stock)
	}
	return nil
}

func unmarshalNullableString(raw json.RawMessage, dest *string) error {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v != nil {
		*dest = *v
	}
	return nil
}

func unmarshalNullableCents(raw json.RawMessage, dest **int64) error {
	var v *int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dest = v
	return nil
}

// CombinationList is the JSONB column type persisted on the product record.
type CombinationList []Combination

// Value implements driver.Valuer.
func (l CombinationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]Combination(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *CombinationList) Scan(value any) error {
	if value == nil {
		*l = CombinationList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported variants column type %T", value)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*l = CombinationList{}
		return nil
	}
	var out []Combination
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

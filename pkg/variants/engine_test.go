package variants

import (
	"testing"
)

func mustAxes(t *testing.T, defs []Axis) []Axis {
	t.Helper()
	axes, err := NewAxes(defs)
	if err != nil {
		t.Fatalf("build axes: %v", err)
	}
	return axes
}

func colorSizeAxes(t *testing.T) []Axis {
	return mustAxes(t, []Axis{
		{Name: "colors", Options: []string{"Red", "Blue"}},
		{Name: "sizes", Options: []string{"S", "M"}},
	})
}

func int64Ptr(v int64) *int64 { return &v }

func TestGenerateCartesianCompleteness(t *testing.T) {
	cases := []struct {
		name string
		defs []Axis
		want int
	}{
		{"empty", nil, 0},
		{"single axis", []Axis{{Name: "colors", Options: []string{"Red", "Blue", "Green"}}}, 3},
		{"two axes", []Axis{
			{Name: "colors", Options: []string{"Red", "Blue"}},
			{Name: "sizes", Options: []string{"S", "M", "L"}},
		}, 6},
		{"three axes", []Axis{
			{Name: "colors", Options: []string{"Red", "Blue"}},
			{Name: "sizes", Options: []string{"S", "M"}},
			{Name: "straps", Options: []string{"Leather", "Steel", "Nato"}},
		}, 12},
		{"zero-option axis excluded", []Axis{
			{Name: "colors", Options: []string{"Red", "Blue"}},
			{Name: "sizes", Options: nil},
		}, 2},
		{"all axes empty", []Axis{
			{Name: "colors", Options: nil},
		}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			axes := mustAxes(t, tc.defs)
			combos, err := Generate(axes, nil)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(combos) != tc.want {
				t.Fatalf("expected %d combinations, got %d", tc.want, len(combos))
			}
			seen := map[string]struct{}{}
			for _, c := range combos {
				if _, dup := seen[c.ID]; dup {
					t.Fatalf("duplicate id %q in output", c.ID)
				}
				seen[c.ID] = struct{}{}
			}
		})
	}
}

func TestGenerateIDsAndOrdering(t *testing.T) {
	combos, err := Generate(colorSizeAxes(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// last axis varies fastest
	wantIDs := []string{"red_s", "red_m", "blue_s", "blue_m"}
	if len(combos) != len(wantIDs) {
		t.Fatalf("expected %d combinations, got %d", len(wantIDs), len(combos))
	}
	for i, want := range wantIDs {
		if combos[i].ID != want {
			t.Fatalf("expected id %q at %d, got %q", want, i, combos[i].ID)
		}
	}
	if combos[0].Name != "Red - S" {
		t.Fatalf("expected default name %q, got %q", "Red - S", combos[0].Name)
	}
	if combos[3].AxisValues["colors"] != "Blue" || combos[3].AxisValues["sizes"] != "M" {
		t.Fatalf("unexpected axis values %v", combos[3].AxisValues)
	}
}

func TestNormalizeIDCollapsesWhitespace(t *testing.T) {
	if got := NormalizeID([]string{"Rose  Gold", "38 mm"}); got != "rose_gold_38_mm" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	axes := colorSizeAxes(t)
	first, err := Generate(axes, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := Generate(axes, first)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("expected stable length, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Name != second[i].Name {
			t.Fatalf("entry %d drifted: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGeneratePreservesEditsThroughUnrelatedChanges(t *testing.T) {
	axes := colorSizeAxes(t)
	combos, err := Generate(axes, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	combos, err = EditField(combos, "red_m", FieldPrice, int64(199))
	if err != nil {
		t.Fatalf("edit price: %v", err)
	}
	combos, err = EditField(combos, "red_m", FieldStock, 5)
	if err != nil {
		t.Fatalf("edit stock: %v", err)
	}

	// add an unrelated option on the sizes axis and regenerate
	grown := mustAxes(t, []Axis{
		{Name: "colors", Options: []string{"Red", "Blue"}},
		{Name: "sizes", Options: []string{"S", "M", "L"}},
	})
	regenerated, err := Generate(grown, combos)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(regenerated) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(regenerated))
	}

	var redM *Combination
	for i := range regenerated {
		if regenerated[i].ID == "red_m" {
			redM = &regenerated[i]
		}
	}
	if redM == nil {
		t.Fatal("red_m missing after regeneration")
	}
	if redM.PriceCents == nil || *redM.PriceCents != 199 {
		t.Fatalf("expected preserved price 199, got %v", redM.PriceCents)
	}
	if redM.Stock != 5 {
		t.Fatalf("expected preserved stock 5, got %d", redM.Stock)
	}
}

// Removing an axis and re-adding it later regenerates the full matrix with
// defaults: edits do not survive the round trip through the collapsed state.
// That is the intended information loss of tuple-derived identity, not a bug.
func TestAxisRemovalRoundTripLosesEdits(t *testing.T) {
	axes := colorSizeAxes(t)
	combos, err := Generate(axes, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	combos, err = EditField(combos, "red_s", FieldPrice, int64(50000))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	colorsOnly := mustAxes(t, []Axis{{Name: "colors", Options: []string{"Red", "Blue"}}})
	collapsed, err := Generate(colorsOnly, combos)
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if len(collapsed) != 2 {
		t.Fatalf("expected 2 combinations after removing sizes, got %d", len(collapsed))
	}
	if collapsed[0].ID != "red" || collapsed[1].ID != "blue" {
		t.Fatalf("unexpected ids %q/%q", collapsed[0].ID, collapsed[1].ID)
	}

	restored, err := Generate(axes, collapsed)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(restored) != 4 {
		t.Fatalf("expected 4 combinations after re-adding sizes, got %d", len(restored))
	}
	for _, combo := range restored {
		if combo.ID == "red_s" && combo.PriceCents != nil {
			t.Fatalf("expected red_s price reset to default, got %d", *combo.PriceCents)
		}
	}
}

// Distinct tuples that normalize to the same id collapse to one entry with
// the later tuple winning. Whether this should instead be rejected or
// disambiguated is an open product decision; the test pins current behavior.
func TestGenerateNormalizationCollisionLastWins(t *testing.T) {
	axes := mustAxes(t, []Axis{
		{Name: "colors", Options: []string{"Red Wine", "red_wine"}},
	})
	combos, err := Generate(axes, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(combos) != 1 {
		t.Fatalf("expected collision to collapse to 1 entry, got %d", len(combos))
	}
	if combos[0].ID != "red_wine" {
		t.Fatalf("unexpected id %q", combos[0].ID)
	}
	if combos[0].AxisValues["colors"] != "red_wine" {
		t.Fatalf("expected later tuple to win, got %q", combos[0].AxisValues["colors"])
	}
}

func TestGenerateRejectsMalformedAxes(t *testing.T) {
	if _, err := Generate([]Axis{{Name: " ", Options: []string{"Red"}}}, nil); err == nil {
		t.Fatal("expected error for blank axis name")
	}
	if _, err := Generate([]Axis{{Name: "colors", Options: []string{"Red", " "}}}, nil); err == nil {
		t.Fatal("expected error for blank option")
	}
}

func TestNewAxisValidation(t *testing.T) {
	if _, err := NewAxis("colors", []string{"Red", "Red"}); err == nil {
		t.Fatal("expected duplicate option to be rejected")
	}
	if _, err := NewAxes([]Axis{
		{Name: "colors", Options: []string{"Red"}},
		{Name: "colors", Options: []string{"Blue"}},
	}); err == nil {
		t.Fatal("expected duplicate axis name to be rejected")
	}
}

func TestEditFieldAndRemove(t *testing.T) {
	combos, err := Generate(colorSizeAxes(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	updated, err := EditField(combos, "blue_s", FieldSKU, "HQ-BLU-S")
	if err != nil {
		t.Fatalf("edit sku: %v", err)
	}
	if combos[2].SKU != "" {
		t.Fatal("edit mutated the input slice")
	}
	if updated[2].SKU != "HQ-BLU-S" {
		t.Fatalf("expected sku on blue_s, got %q", updated[2].SKU)
	}

	if _, err := EditField(combos, "blue_s", "brand", "Casio"); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if _, err := EditField(combos, "nope", FieldSKU, "x"); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
	if _, err := EditField(combos, "blue_s", FieldPrice, "free"); err == nil {
		t.Fatal("expected type mismatch to be rejected")
	}

	remaining := Remove(updated, "red_s")
	if len(remaining) != 3 {
		t.Fatalf("expected 3 combinations after removal, got %d", len(remaining))
	}
	for _, combo := range remaining {
		if combo.ID == "red_s" {
			t.Fatal("red_s still present after removal")
		}
	}
}

func TestClassifyReadinessPriorityOrder(t *testing.T) {
	cases := []struct {
		name  string
		combo Combination
		brand string
		want  Readiness
	}{
		{
			name:  "error wins over everything",
			combo: Combination{PriceCents: int64Ptr(0), Stock: -1},
			brand: "",
			want:  ReadinessError,
		},
		{
			name:  "missing price",
			combo: Combination{Stock: 3, ImageURL: "http://x/y.png"},
			brand: "Casio",
			want:  ReadinessError,
		},
		{
			name:  "negative stock",
			combo: Combination{PriceCents: int64Ptr(100000), Stock: -2, ImageURL: "http://x/y.png"},
			brand: "Casio",
			want:  ReadinessError,
		},
		{
			name:  "missing brand",
			combo: Combination{PriceCents: int64Ptr(100000), Stock: 3, ImageURL: "http://x/y.png"},
			brand: "   ",
			want:  ReadinessMissingBrand,
		},
		{
			name:  "incomplete without image",
			combo: Combination{PriceCents: int64Ptr(100000), Stock: 3},
			brand: "Casio",
			want:  ReadinessIncomplete,
		},
		{
			name:  "ready",
			combo: Combination{PriceCents: int64Ptr(100000), Stock: 3, ImageURL: "http://x/y.png"},
			brand: "Casio",
			want:  ReadinessReady,
		},
		{
			name:  "zero stock is sellable out",
			combo: Combination{PriceCents: int64Ptr(100000), Stock: 0, ImageURL: "http://x/y.png"},
			brand: "Casio",
			want:  ReadinessReady,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyReadiness(tc.combo, tc.brand); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAxesFromCombinationsRoundTrip(t *testing.T) {
	axes := colorSizeAxes(t)
	combos, err := Generate(axes, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rebuilt := AxesFromCombinations(combos)
	if len(rebuilt) != 2 {
		t.Fatalf("expected 2 axes, got %d", len(rebuilt))
	}
	if rebuilt[0].Name != "colors" || rebuilt[1].Name != "sizes" {
		t.Fatalf("unexpected axis order %q/%q", rebuilt[0].Name, rebuilt[1].Name)
	}
	if len(rebuilt[0].Options) != 2 || rebuilt[0].Options[0] != "Red" || rebuilt[0].Options[1] != "Blue" {
		t.Fatalf("unexpected color options %v", rebuilt[0].Options)
	}
	if len(rebuilt[1].Options) != 2 || rebuilt[1].Options[0] != "S" || rebuilt[1].Options[1] != "M" {
		t.Fatalf("unexpected size options %v", rebuilt[1].Options)
	}
}

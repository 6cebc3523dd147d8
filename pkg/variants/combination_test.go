package variants

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCombinationJSONContractShape(t *testing.T) {
	combo := Combination{
		ID:         "red_m",
		AxisValues: map[string]string{"colors": "Red", "sizes": "M"},
		AxisNames:  []string{"colors", "sizes"},
		SKU:        "HQ-RED-M",
		Name:       "Red - M",
		PriceCents: int64Ptr(250000),
		Stock:      4,
		ImageURL:   "https://cdn.horologiq.com/red-m.png",
	}

	data, err := json.Marshal(combo)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("reparse: %v", err)
	}

	// axis keys are flattened alongside the fixed fields
	if raw["colors"] != "Red" || raw["sizes"] != "M" {
		t.Fatalf("expected flattened axis keys, got %v", raw)
	}
	if raw["price"] != float64(250000) {
		t.Fatalf("expected price 250000, got %v", raw["price"])
	}
	if _, present := raw["offer_price"]; !present {
		t.Fatal("offer_price should be serialized as explicit null")
	}
	if raw["offer_price"] != nil {
		t.Fatalf("expected null offer_price, got %v", raw["offer_price"])
	}

	var back Combination
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != combo.ID || back.SKU != combo.SKU || back.Stock != combo.Stock {
		t.Fatalf("round trip drifted: %+v", back)
	}
	if back.PriceCents == nil || *back.PriceCents != 250000 {
		t.Fatalf("expected price preserved, got %v", back.PriceCents)
	}
	if back.AxisValues["colors"] != "Red" || back.AxisValues["sizes"] != "M" {
		t.Fatalf("expected axis values restored, got %v", back.AxisValues)
	}
	if len(back.AxisNames) != 2 || back.AxisNames[0] != "colors" {
		t.Fatalf("expected axis key order captured, got %v", back.AxisNames)
	}
}

func TestCombinationUnmarshalRejectsNonStringAxisOption(t *testing.T) {
	payload := `{"id":"x","name":"x","price":null,"offer_price":null,"stock":0,"sku":null,"image_url":null,"colors":7}`
	var combo Combination
	err := json.Unmarshal([]byte(payload), &combo)
	if err == nil {
		t.Fatal("expected error for non-string axis option")
	}
	if !strings.Contains(err.Error(), "colors") {
		t.Fatalf("error should name the axis, got %v", err)
	}
}

func TestCombinationMarshalRejectsReservedAxisName(t *testing.T) {
	combo := Combination{
		ID:         "x",
		AxisValues: map[string]string{"price": "Red"},
		AxisNames:  []string{"price"},
	}
	if _, err := json.Marshal(combo); err == nil {
		t.Fatal("expected reserved axis name to be rejected")
	}
}

func TestCombinationListScanValueRoundTrip(t *testing.T) {
	combos, err := Generate([]Axis{
		{Name: "colors", Options: []string{"Red", "Blue"}},
	}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	list := CombinationList(combos)
	value, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned CombinationList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 2 || scanned[0].ID != "red" || scanned[1].ID != "blue" {
		t.Fatalf("unexpected scanned list %+v", scanned)
	}

	var empty CombinationList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list from nil column, got %+v", empty)
	}
}

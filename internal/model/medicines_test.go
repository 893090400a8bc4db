package model

import (
	"encoding/json"
	"testing"
)

func TestParseMedicines_Structured(t *testing.T) {
	raw := json.RawMessage(`[{"name":"Amoxicillin","dosage":"500mg","duration":"7 days","instructions":"after meals"}]`)

	meds, err := ParseMedicines(raw)
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 1 {
		t.Fatalf("got %d medicines, want 1", len(meds))
	}
	if meds[0].Name != "Amoxicillin" || meds[0].Dosage != "500mg" {
		t.Errorf("unexpected medicine: %+v", meds[0])
	}
}

func TestParseMedicines_NullAndEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", `""`} {
		meds, err := ParseMedicines(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("ParseMedicines(%q) failed: %v", raw, err)
		}
		if len(meds) != 0 {
			t.Errorf("ParseMedicines(%q) = %v, want empty", raw, meds)
		}
	}
}

func TestParseMedicines_NameArray(t *testing.T) {
	meds, err := ParseMedicines(json.RawMessage(`["Amoxicillin", " Ibuprofen ", ""]`))
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("got %d medicines, want 2", len(meds))
	}
	if meds[0].Name != "Amoxicillin" || meds[1].Name != "Ibuprofen" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
}

func TestParseMedicines_LegacyCommaString(t *testing.T) {
	meds, err := ParseMedicines(json.RawMessage(`"Amoxicillin, Ibuprofen"`))
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("got %d medicines, want 2", len(meds))
	}
	if meds[0].Name != "Amoxicillin" || meds[1].Name != "Ibuprofen" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
}

func TestParseMedicines_DoubleEncoded(t *testing.T) {
	meds, err := ParseMedicines(json.RawMessage(`"[{\"name\":\"Paracetamol\",\"dosage\":\"1g\"}]"`))
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Paracetamol" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
}

func TestParseMedicines_BareObject(t *testing.T) {
	meds, err := ParseMedicines(json.RawMessage(`{"name":"Cetirizine"}`))
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Cetirizine" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
}

func TestParseMedicines_MixedArray(t *testing.T) {
	meds, err := ParseMedicines(json.RawMessage(`["Aspirin", {"name":"Metformin","dosage":"850mg"}, null]`))
	if err != nil {
		t.Fatalf("ParseMedicines failed: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("got %d medicines, want 2", len(meds))
	}
	if meds[0].Name != "Aspirin" || meds[1].Dosage != "850mg" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
}

func TestParseMedicines_Invalid(t *testing.T) {
	if _, err := ParseMedicines(json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestMedicinesJSON_RoundTrip(t *testing.T) {
	in := []Medicine{{Name: "Amoxicillin", Dosage: "500mg"}}

	col, err := MedicinesJSON(in)
	if err != nil {
		t.Fatalf("MedicinesJSON failed: %v", err)
	}

	out := MedicinesFromColumn(col)
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestMedicinesJSON_NilSlice(t *testing.T) {
	col, err := MedicinesJSON(nil)
	if err != nil {
		t.Fatalf("MedicinesJSON failed: %v", err)
	}
	if string(col) != "[]" {
		t.Errorf("MedicinesJSON(nil) = %s, want []", col)
	}
}

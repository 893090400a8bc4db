package model

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Medicine is the single structured shape for prescription medicines.
type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// ParseMedicines converts any historical medicines payload into the
// structured shape. Accepted inputs:
//
//   - null / empty            -> empty slice
//   - ["Amoxicillin", ...]    -> names only
//   - [{"name": ...}, ...]    -> structured objects
//   - "Amoxicillin, Ibuprofen" -> comma-separated legacy string
//   - "[{\"name\": ...}]"     -> double-encoded JSON
//
// This is the only place legacy shapes are handled; rows are stored
// structured from here on.
func ParseMedicines(raw json.RawMessage) ([]Medicine, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []Medicine{}, nil
	}

	// Plain JSON string: either a double-encoded array or a legacy
	// comma-separated list.
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return []Medicine{}, nil
		}
		if strings.HasPrefix(s, "[") {
			return ParseMedicines(json.RawMessage(s))
		}
		return medicinesFromNames(strings.Split(s, ",")), nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}

		out := make([]Medicine, 0, len(items))
		for _, item := range items {
			it := strings.TrimSpace(string(item))
			if it == "" || it == "null" {
				continue
			}
			if it[0] == '"' {
				var name string
				if err := json.Unmarshal(item, &name); err != nil {
					return nil, err
				}
				if name = strings.TrimSpace(name); name != "" {
					out = append(out, Medicine{Name: name})
				}
				continue
			}
			var m Medicine
			if err := json.Unmarshal(item, &m); err != nil {
				return nil, err
			}
			if strings.TrimSpace(m.Name) != "" {
				m.Name = strings.TrimSpace(m.Name)
				out = append(out, m)
			}
		}
		return out, nil
	}

	// Single bare object.
	var m Medicine
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.Name) == "" {
		return []Medicine{}, nil
	}
	m.Name = strings.TrimSpace(m.Name)
	return []Medicine{m}, nil
}

func medicinesFromNames(names []string) []Medicine {
	out := make([]Medicine, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, Medicine{Name: n})
		}
	}
	return out
}

// MedicinesJSON marshals the structured slice into the column type.
func MedicinesJSON(meds []Medicine) (datatypes.JSON, error) {
	if meds == nil {
		meds = []Medicine{}
	}
	b, err := json.Marshal(meds)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// MedicinesFromColumn decodes the stored structured column. Rows written by
// this codebase are always structured, but the tolerant parser is used so
// pre-migration rows still read cleanly.
func MedicinesFromColumn(col datatypes.JSON) []Medicine {
	meds, err := ParseMedicines(json.RawMessage(col))
	if err != nil {
		return []Medicine{}
	}
	return meds
}

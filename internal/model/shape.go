package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Shape names one of the wire layouts a finding has had
type Shape string

const (
	ShapeFlat    Shape = "flat"    // v1: category/material/weight/brand on the record
	ShapeEntries Shape = "entries" // v2: entries list only (canonical)
	ShapeHybrid  Shape = "hybrid"  // v2 plus a cached projection of entries[0]
)

// ParseShape parses a shape name
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeFlat:
		return ShapeFlat, nil
	case ShapeEntries, "":
		return ShapeEntries, nil
	case ShapeHybrid:
		return ShapeHybrid, nil
	default:
		return "", fmt.Errorf("unknown shape %q (supported: flat, entries, hybrid)", s)
	}
}

// wireEntry accepts both the current weight_g_estimate key and the legacy weight key
type wireEntry struct {
	Category        *string  `json:"category"`
	Material        *string  `json:"material"`
	WeightGEstimate *float64 `json:"weight_g_estimate"`
	Weight          *float64 `json:"weight"`
	Brand           *string  `json:"brand"`
	Confidence      *float64 `json:"confidence"`
}

type wireFinding struct {
	ID      *string      `json:"id"`
	Lat     *float64     `json:"lat"`
	Lng     *float64     `json:"lng"`
	File    Payload      `json:"file"`
	Type    string       `json:"type"`
	Date    string       `json:"date"`
	Entries *[]wireEntry `json:"entries"`

	Category *string  `json:"category"`
	Material *string  `json:"material"`
	Weight   *float64 `json:"weight"`
	Brand    *string  `json:"brand"`

	Analysis
}

// decodeWire decodes a raw record and classifies it by the keys present.
// Presence matters, not value: "category": null still marks a flat record.
func decodeWire(data []byte) (wireFinding, Shape, error) {
	var w wireFinding
	if err := json.Unmarshal(data, &w); err != nil {
		return w, "", fmt.Errorf("decode finding: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return w, "", fmt.Errorf("decode finding: %w", err)
	}

	_, hasEntries := keys["entries"]
	_, hasCategory := keys["category"]
	_, hasMaterial := keys["material"]
	hasFlat := hasCategory || hasMaterial

	switch {
	case hasEntries && hasFlat:
		return w, ShapeHybrid, nil
	case hasFlat:
		return w, ShapeFlat, nil
	default:
		return w, ShapeEntries, nil
	}
}

// DetectShape reports which layout a raw record uses
func DetectShape(data []byte) (Shape, error) {
	_, shape, err := decodeWire(data)
	return shape, err
}

// DecodeFinding normalizes a record of any shape into the canonical
// entries form. Entries win over flat fields; the flat fields are only used
// when the record carries no entries.
func DecodeFinding(data []byte) (Finding, Shape, error) {
	w, shape, err := decodeWire(data)
	if err != nil {
		return Finding{}, "", err
	}

	if w.ID == nil || *w.ID == "" {
		return Finding{}, shape, malformed("", "missing id")
	}
	id := *w.ID
	if w.Lat == nil {
		return Finding{}, shape, malformed(id, "missing lat")
	}
	if w.Lng == nil {
		return Finding{}, shape, malformed(id, "missing lng")
	}

	f := Finding{
		ID:       id,
		Lat:      *w.Lat,
		Lng:      *w.Lng,
		File:     w.File,
		Type:     w.Type,
		Date:     w.Date,
		Entries:  []FindingEntry{},
		Analysis: w.Analysis,
	}

	if w.Entries != nil {
		for i, we := range *w.Entries {
			if we.Category == nil || we.Material == nil {
				return Finding{}, shape, malformed(id, "entry %d: category and material are required", i)
			}
			weight := we.WeightGEstimate
			if weight == nil {
				weight = we.Weight
			}
			f.Entries = append(f.Entries, FindingEntry{
				Category:   *we.Category,
				Material:   *we.Material,
				Weight:     weight,
				Brand:      we.Brand,
				Confidence: we.Confidence,
			})
		}
	}

	if len(f.Entries) == 0 && shape != ShapeEntries {
		if w.Category == nil || w.Material == nil {
			return Finding{}, shape, malformed(id, "flat record needs both category and material")
		}
		f.Entries = append(f.Entries, FindingEntry{
			Category: *w.Category,
			Material: *w.Material,
			Weight:   w.Weight,
			Brand:    w.Brand,
		})
	}

	if err := f.Validate(); err != nil {
		return Finding{}, shape, err
	}

	return f, shape, nil
}

// DecodeFindings decodes either a JSON array of records or a single record
func DecodeFindings(data []byte) ([]Finding, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		f, _, err := DecodeFinding(trimmed)
		if err != nil {
			return nil, err
		}
		return []Finding{f}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}

	findings := make([]Finding, 0, len(raws))
	for i, raw := range raws {
		f, _, err := DecodeFinding(raw)
		if err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

type hybridFinding struct {
	Finding
	Category string   `json:"category"`
	Material string   `json:"material"`
	Weight   *float64 `json:"weight"`
	Brand    *string  `json:"brand,omitempty"`
}

// EncodeFinding writes f in the requested shape. Flat and hybrid output
// need a primary entry.
func EncodeFinding(f Finding, shape Shape) ([]byte, error) {
	canonical := f.Clone()
	if canonical.Entries == nil {
		canonical.Entries = []FindingEntry{}
	}

	switch shape {
	case ShapeEntries, "":
		return json.Marshal(canonical)

	case ShapeFlat:
		flat, err := Flatten(canonical)
		if err != nil {
			return nil, err
		}
		return json.Marshal(flat)

	case ShapeHybrid:
		flat, err := Flatten(canonical)
		if err != nil {
			return nil, err
		}
		return json.Marshal(hybridFinding{
			Finding:  canonical,
			Category: flat.Category,
			Material: flat.Material,
			Weight:   flat.Weight,
			Brand:    flat.Brand,
		})

	default:
		return nil, fmt.Errorf("unknown shape %q", shape)
	}
}

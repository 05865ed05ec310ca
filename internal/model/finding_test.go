package model

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string  { return &v }

func sampleFinding() Finding {
	return Finding{
		ID:   "65f0c0ffee",
		Lat:  47.37,
		Lng:  8.54,
		File: Payload{1, 2, 3},
		Date: "2025-05-01 10:00:00.0 +00:00:00",
		Entries: []FindingEntry{
			{Category: "bottle", Material: "plastic", Weight: ptrFloat(25), Brand: ptrString("Acme"), Confidence: ptrFloat(0.8)},
			{Category: "can", Material: "aluminium", Confidence: ptrFloat(0.6)},
		},
	}
}

func TestFlatten_UsesFirstEntry(t *testing.T) {
	flat, err := Flatten(sampleFinding())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := FlatFinding{
		ID:       "65f0c0ffee",
		Lat:      47.37,
		Lng:      8.54,
		Weight:   ptrFloat(25),
		Category: "bottle",
		Material: "plastic",
		Brand:    ptrString("Acme"),
		File:     Payload{1, 2, 3},
		Date:     "2025-05-01 10:00:00.0 +00:00:00",
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_GlassShard(t *testing.T) {
	f := Finding{
		ID:      "f1",
		Lat:     1,
		Lng:     2,
		Entries: []FindingEntry{{Category: "glass", Material: "shard", Confidence: ptrFloat(0.9)}},
	}

	flat, err := Flatten(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat.Category != "glass" || flat.Material != "shard" {
		t.Errorf("expected glass/shard, got %s/%s", flat.Category, flat.Material)
	}
	if flat.Weight != nil {
		t.Errorf("expected no weight, got %v", *flat.Weight)
	}
	if flat.Brand != nil {
		t.Errorf("expected no brand, got %v", *flat.Brand)
	}
}

func TestFlatten_EmptyEntriesIsMalformed(t *testing.T) {
	f := Finding{ID: "f1", Lat: 1, Lng: 2, Entries: []FindingEntry{}}

	_, err := Flatten(f)
	if !errors.Is(err, ErrMalformedFinding) {
		t.Fatalf("expected ErrMalformedFinding, got %v", err)
	}

	var mf *MalformedFindingError
	if !errors.As(err, &mf) {
		t.Fatalf("expected *MalformedFindingError, got %T", err)
	}
	if mf.ID != "f1" {
		t.Errorf("expected id f1, got %q", mf.ID)
	}
}

func TestFlatten_BadIdentity(t *testing.T) {
	entries := []FindingEntry{{Category: "glass", Material: "shard"}}
	tests := []struct {
		name string
		f    Finding
	}{
		{"missing id", Finding{Lat: 1, Lng: 2, Entries: entries}},
		{"lat out of range", Finding{ID: "x", Lat: 91, Lng: 2, Entries: entries}},
		{"lng out of range", Finding{ID: "x", Lat: 1, Lng: -181, Entries: entries}},
		{"lat NaN", Finding{ID: "x", Lat: math.NaN(), Lng: 2, Entries: entries}},
		{"lng Inf", Finding{ID: "x", Lat: 1, Lng: math.Inf(1), Entries: entries}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Flatten(tt.f); !errors.Is(err, ErrMalformedFinding) {
				t.Errorf("expected ErrMalformedFinding, got %v", err)
			}
		})
	}
}

func TestFlatten_DoesNotAlias(t *testing.T) {
	f := sampleFinding()
	flat, err := Flatten(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*flat.Weight = 99
	*flat.Brand = "Other"
	flat.File[0] = 42

	if *f.Entries[0].Weight != 25 || *f.Entries[0].Brand != "Acme" || f.File[0] != 1 {
		t.Error("Flatten result shares memory with its input")
	}
}

func TestToEntries(t *testing.T) {
	flat := FlatFinding{ID: "f1", Lat: 1, Lng: 2, Category: "bag", Material: "paper", Weight: ptrFloat(4)}

	f := ToEntries(flat)

	if len(f.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(f.Entries))
	}
	e := f.Entries[0]
	if e.Category != "bag" || e.Material != "paper" || *e.Weight != 4 || e.Brand != nil || e.Confidence != nil {
		t.Errorf("unexpected entry: %+v", e)
	}

	*e.Weight = 5
	if *flat.Weight != 4 {
		t.Error("ToEntries result shares memory with its input")
	}
}

func TestRoundTripLaw(t *testing.T) {
	flats := []FlatFinding{
		{ID: "a", Lat: 0, Lng: 0, Category: "glass", Material: "shard"},
		{ID: "b", Lat: -33.9, Lng: 151.2, Category: "bottle", Material: "plastic", Weight: ptrFloat(12.5), Brand: ptrString("Acme")},
		{ID: "c", Lat: 90, Lng: -180, Category: "can", Material: "aluminium", File: Payload{0, 255}, Date: "2024-01-01"},
	}

	for _, flat := range flats {
		t.Run(flat.ID, func(t *testing.T) {
			once := ToEntries(flat)
			projected, err := Flatten(once)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			twice := ToEntries(projected)

			if diff := cmp.Diff(once, twice, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlattenAll(t *testing.T) {
	pending := Finding{ID: "p", Lat: 1, Lng: 1}
	flats, err := FlattenAll([]Finding{sampleFinding(), pending})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flats) != 1 || flats[0].ID != "65f0c0ffee" {
		t.Errorf("expected only the analyzed finding, got %+v", flats)
	}

	_, err = FlattenAll([]Finding{{Lat: 1, Lng: 1}})
	if !errors.Is(err, ErrMalformedFinding) {
		t.Errorf("expected ErrMalformedFinding for missing id, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   FindingEntry
		wantErr bool
	}{
		{"ok", FindingEntry{Category: "a", Material: "b", Confidence: ptrFloat(0.5)}, false},
		{"bounds", FindingEntry{Category: "a", Material: "b", Confidence: ptrFloat(1)}, false},
		{"confidence too high", FindingEntry{Category: "a", Material: "b", Confidence: ptrFloat(1.2)}, true},
		{"confidence negative", FindingEntry{Category: "a", Material: "b", Confidence: ptrFloat(-0.1)}, true},
		{"confidence NaN", FindingEntry{Category: "a", Material: "b", Confidence: ptrFloat(math.NaN())}, true},
		{"negative weight", FindingEntry{Category: "a", Material: "b", Weight: ptrFloat(-1)}, true},
		{"missing category", FindingEntry{Material: "b"}, true},
		{"missing material", FindingEntry{Category: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Finding{ID: "x", Lat: 1, Lng: 1, Entries: []FindingEntry{tt.entry}}
			err := f.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClone(t *testing.T) {
	f := sampleFinding()
	total := 2
	f.Analysis = Analysis{Counts: map[string]int{"bottle": 1}, TotalItems: &total}

	c := f.Clone()
	if diff := cmp.Diff(f, c); diff != "" {
		t.Fatalf("clone differs:\n%s", diff)
	}

	c.Entries[0].Category = "changed"
	c.Counts["bottle"] = 9
	*c.TotalItems = 9
	if f.Entries[0].Category != "bottle" || f.Counts["bottle"] != 1 || *f.TotalItems != 2 {
		t.Error("clone shares memory with original")
	}
}

func TestPrimaryAndPending(t *testing.T) {
	var f Finding
	if !f.Pending() {
		t.Error("finding without entries should be pending")
	}
	if _, ok := f.Primary(); ok {
		t.Error("pending finding has no primary entry")
	}

	p, ok := sampleFinding().Primary()
	if !ok || p.Category != "bottle" {
		t.Errorf("unexpected primary entry: %+v", p)
	}
}

package model

import "math"

// Finding is a geotagged observation with one or more categorized entries.
// Entries is the authoritative store of what was found; an empty list means
// the analysis has not been attached yet.
type Finding struct {
	ID      string         `json:"id"`             // Stable identifier
	Lat     float64        `json:"lat"`            // Latitude in degrees
	Lng     float64        `json:"lng"`            // Longitude in degrees
	File    Payload        `json:"file"`           // Raw capture, opaque here
	Type    string         `json:"type,omitempty"` // Capture type as sent by the client
	Entries []FindingEntry `json:"entries"`        // Ordered; entries[0] is the primary entry
	Date    string         `json:"date"`           // Opaque date stamp

	Analysis
}

// FindingEntry is one categorized item within a finding
type FindingEntry struct {
	Category   string   `json:"category"`
	Material   string   `json:"material"`
	Weight     *float64 `json:"weight_g_estimate,omitempty"` // Estimated grams
	Brand      *string  `json:"brand,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"` // Conventionally in [0,1]
}

// Analysis carries the optional metadata recorded by the image analyzer
type Analysis struct {
	Counts           map[string]int `json:"analysis_counts,omitempty"`
	TotalItems       *int           `json:"analysis_total_items,omitempty"`
	Notes            *string        `json:"analysis_notes,omitempty"`
	ProcessingTimeMs *float64       `json:"analysis_processing_time_ms,omitempty"`
	Model            *string        `json:"analysis_model,omitempty"`
}

// FlatFinding is the single-entry view for consumers that expect one
// category/material/weight/brand per record.
type FlatFinding struct {
	ID       string   `json:"id"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Weight   *float64 `json:"weight"` // Always emitted, null when unknown
	Category string   `json:"category"`
	Material string   `json:"material"`
	Brand    *string  `json:"brand,omitempty"`
	File     Payload  `json:"file,omitempty"`
	Date     string   `json:"date,omitempty"`
}

// Primary returns the first entry in stored order
func (f Finding) Primary() (FindingEntry, bool) {
	if len(f.Entries) == 0 {
		return FindingEntry{}, false
	}
	return f.Entries[0], true
}

// Pending reports whether no entries have been attached yet
func (f Finding) Pending() bool {
	return len(f.Entries) == 0
}

// Validate checks identity, coordinates and entry confidence
func (f Finding) Validate() error {
	if err := f.validateLocation(); err != nil {
		return err
	}
	for i, e := range f.Entries {
		if e.Category == "" {
			return malformed(f.ID, "entry %d: missing category", i)
		}
		if e.Material == "" {
			return malformed(f.ID, "entry %d: missing material", i)
		}
		if e.Confidence != nil {
			c := *e.Confidence
			if math.IsNaN(c) || c < 0 || c > 1 {
				return malformed(f.ID, "entry %d: confidence %v outside [0,1]", i, c)
			}
		}
		if e.Weight != nil && (math.IsNaN(*e.Weight) || *e.Weight < 0) {
			return malformed(f.ID, "entry %d: invalid weight %v", i, *e.Weight)
		}
	}
	return nil
}

func (f Finding) validateLocation() error {
	return validateLocation(f.ID, f.Lat, f.Lng)
}

func validateLocation(id string, lat, lng float64) error {
	if id == "" {
		return malformed("", "missing id")
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return malformed(id, "latitude %v out of range", lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return malformed(id, "longitude %v out of range", lng)
	}
	return nil
}

// Clone returns a deep copy
func (f Finding) Clone() Finding {
	out := f
	out.File = f.File.Clone()
	if f.Entries != nil {
		out.Entries = make([]FindingEntry, len(f.Entries))
		for i, e := range f.Entries {
			out.Entries[i] = e.Clone()
		}
	}
	out.Analysis = f.Analysis.Clone()
	return out
}

// Clone returns a deep copy
func (e FindingEntry) Clone() FindingEntry {
	return FindingEntry{
		Category:   e.Category,
		Material:   e.Material,
		Weight:     cloneFloat(e.Weight),
		Brand:      cloneString(e.Brand),
		Confidence: cloneFloat(e.Confidence),
	}
}

// Clone returns a deep copy
func (a Analysis) Clone() Analysis {
	out := Analysis{
		ProcessingTimeMs: cloneFloat(a.ProcessingTimeMs),
		Notes:            cloneString(a.Notes),
		Model:            cloneString(a.Model),
	}
	if a.TotalItems != nil {
		n := *a.TotalItems
		out.TotalItems = &n
	}
	if a.Counts != nil {
		out.Counts = make(map[string]int, len(a.Counts))
		for k, v := range a.Counts {
			out.Counts[k] = v
		}
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

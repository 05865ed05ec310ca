package model

// Flatten projects a finding onto its primary entry (the first one in stored
// order). A finding without entries, or with a broken identity, cannot be
// flattened and yields a *MalformedFindingError.
func Flatten(f Finding) (FlatFinding, error) {
	if err := f.validateLocation(); err != nil {
		return FlatFinding{}, err
	}

	primary, ok := f.Primary()
	if !ok {
		return FlatFinding{}, malformed(f.ID, "no entries to flatten")
	}

	return FlatFinding{
		ID:       f.ID,
		Lat:      f.Lat,
		Lng:      f.Lng,
		Weight:   cloneFloat(primary.Weight),
		Category: primary.Category,
		Material: primary.Material,
		Brand:    cloneString(primary.Brand),
		File:     f.File.Clone(),
		Date:     f.Date,
	}, nil
}

// ToEntries lifts a flat record into the canonical shape with a single
// entry. ToEntries(Flatten(ToEntries(flat))) equals ToEntries(flat).
func ToEntries(flat FlatFinding) Finding {
	return Finding{
		ID:   flat.ID,
		Lat:  flat.Lat,
		Lng:  flat.Lng,
		File: flat.File.Clone(),
		Date: flat.Date,
		Entries: []FindingEntry{{
			Category: flat.Category,
			Material: flat.Material,
			Weight:   cloneFloat(flat.Weight),
			Brand:    cloneString(flat.Brand),
		}},
	}
}

// FlattenAll flattens every finding for list views. Pending findings are
// skipped since they have nothing to show yet; any other malformed record
// aborts with its error.
func FlattenAll(findings []Finding) ([]FlatFinding, error) {
	out := make([]FlatFinding, 0, len(findings))
	for _, f := range findings {
		if err := f.validateLocation(); err != nil {
			return nil, err
		}
		if f.Pending() {
			continue
		}
		flat, err := Flatten(f)
		if err != nil {
			return nil, err
		}
		out = append(out, flat)
	}
	return out, nil
}

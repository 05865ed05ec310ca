package model

import (
	"encoding/json"
	"fmt"
)

// Payload is the raw file attached to a finding. On the wire it is a JSON
// array of byte values; a base64 string is accepted when decoding.
type Payload []byte

// MarshalJSON encodes the payload as an array of integers
func (p Payload) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(p))
	for i, b := range p {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes an integer array (or base64 string)
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw []byte
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("file: %w", err)
		}
		*p = raw
		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("file: %w", err)
	}

	out := make(Payload, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("file: byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*p = out
	return nil
}

// Clone returns an independent copy
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	copy(out, p)
	return out
}

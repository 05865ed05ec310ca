package store

import "encoding/json"

// Codec converts a store value to and from its slot representation.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(raw string) (T, error)
}

// StringCodec stores strings verbatim.
type StringCodec struct{}

func (StringCodec) Encode(value string) (string, error) { return value, nil }

func (StringCodec) Decode(raw string) (string, error) { return raw, nil }

// JSONCodec stores values as JSON documents.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(value T) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (JSONCodec[T]) Decode(raw string) (T, error) {
	var value T
	err := json.Unmarshal([]byte(raw), &value)
	return value, err
}

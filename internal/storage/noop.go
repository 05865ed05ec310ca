package storage

// Noop is the backend used when durable storage is unavailable.
// Reads always miss and writes are dropped.
type Noop struct{}

func (Noop) Get(string) (string, bool, error) { return "", false, nil }

func (Noop) Set(string, string) error { return nil }

func (Noop) Delete(string) error { return nil }

package storage

// Layered fronts a durable backend with an in-memory copy of each slot.
type Layered struct {
	memory  *Memory
	durable Storage
}

// NewLayered wraps durable with a memory layer
func NewLayered(durable Storage) *Layered {
	return &Layered{
		memory:  NewMemory(),
		durable: durable,
	}
}

// Get checks memory first, then the durable backend
func (l *Layered) Get(key string) (string, bool, error) {
	if val, found, _ := l.memory.Get(key); found {
		return val, true, nil
	}

	val, found, err := l.durable.Get(key)
	if err != nil || !found {
		return "", false, err
	}

	// Promote so the next read skips the durable backend
	_ = l.memory.Set(key, val)
	return val, true, nil
}

// Set writes the durable backend first; memory only follows a successful write
func (l *Layered) Set(key, value string) error {
	if err := l.durable.Set(key, value); err != nil {
		_ = l.memory.Delete(key)
		return err
	}
	return l.memory.Set(key, value)
}

// Delete removes the slot from both layers
func (l *Layered) Delete(key string) error {
	_ = l.memory.Delete(key)
	return l.durable.Delete(key)
}

// Close closes the durable backend
func (l *Layered) Close() error {
	return Close(l.durable)
}

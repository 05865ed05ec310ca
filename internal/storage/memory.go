package storage

import (
	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps slots in process memory only
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates an empty in-memory backend whose slots never expire
func NewMemory() *Memory {
	return &Memory{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a slot
func (m *Memory) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	if val, found := m.cache.Get(key); found {
		return val.(string), true, nil
	}
	return "", false, nil
}

// Set stores a slot
func (m *Memory) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

// Delete removes a slot
func (m *Memory) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

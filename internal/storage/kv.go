package storage

import "sync"

// KV is the cache store port: a flat string key/value surface, the same
// shape the browser script used against localStorage. Get never errors;
// any miss or backend hiccup reads as absence.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemKV is a mutex-guarded in-memory KV, used in tests and as a fallback
// when no durable backend is wanted.
type MemKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemKV() *MemKV { return &MemKV{m: map[string]string{}} }

func (s *MemKV) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemKV) Set(key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

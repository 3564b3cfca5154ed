package loader

import (
	"sync"

	"hyinit/internal/manifest"
)

// SourceMeta describes where a code source came from.
type SourceMeta struct {
	EarlyPlugin bool
	Manifest    *manifest.Manifest
}

// MetaStore maps normalized source paths to their metadata.
type MetaStore struct {
	mu sync.RWMutex
	m  map[string]SourceMeta
}

func NewMetaStore() *MetaStore { return &MetaStore{m: make(map[string]SourceMeta)} }

func (s *MetaStore) Put(path string, meta SourceMeta) {
	s.mu.Lock()
	s.m[Normalize(path)] = meta
	s.mu.Unlock()
}

func (s *MetaStore) Get(path string) (SourceMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.m[Normalize(path)]
	return meta, ok
}

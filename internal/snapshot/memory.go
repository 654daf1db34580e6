package snapshot

import (
	"context"
	"sync"

	"github.com/petresgate/feedcore/domain"
)

// MemoryStore retains the snapshot in process memory. This is the
// default for a single on-device client.
type MemoryStore struct {
	mu   sync.RWMutex
	pubs []domain.Publication
	set  bool
}

var _ domain.SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) ([]domain.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, domain.ErrSnapshotMiss
	}
	return append([]domain.Publication(nil), s.pubs...), nil
}

func (s *MemoryStore) Set(_ context.Context, pubs []domain.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pubs = append([]domain.Publication(nil), pubs...)
	s.set = true
	return nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/macrat/cfmon/internal/region"
)

// MemoryStore is a snapshot store on memory.
type MemoryStore struct {
	sync.Mutex

	Snapshot region.Snapshot
	Saved    int
}

func (s *MemoryStore) Load(ctx context.Context) (region.Snapshot, error) {
	s.Lock()
	defer s.Unlock()

	if s.Snapshot == nil {
		return region.Snapshot{}, nil
	}
	return s.Snapshot, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap region.Snapshot) error {
	s.Lock()
	defer s.Unlock()

	s.Snapshot = snap
	s.Saved++
	return nil
}

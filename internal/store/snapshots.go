package store

import (
	"fmt"

	"github.com/sadopc/taskboard/internal/board"
)

// Snapshots persists board snapshots as one JSON value under Key.
type Snapshots struct {
	KV  KV
	Key string
}

func NewSnapshots(kv KV) *Snapshots {
	return &Snapshots{KV: kv, Key: board.StorageKey}
}

func (s *Snapshots) Load() (*board.Snapshot, error) {
	raw, ok, err := s.KV.Get(s.Key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return board.UnmarshalSnapshot([]byte(raw))
}

func (s *Snapshots) Save(snap board.Snapshot) error {
	b, err := board.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.KV.Set(s.Key, string(b))
}

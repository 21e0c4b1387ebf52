package session

import (
	"encoding/json"
	"time"
)

// snapshot is the wire form of the store contents. Persistence itself is a
// collaborator concern; the store only serializes and restores.
type snapshot struct {
	TakenAt  time.Time `json:"takenAt"`
	Sessions []Record  `json:"sessions"`
}

// Snapshot serializes every live session for process-restart continuity
func (s *Store) Snapshot(now time.Time) ([]byte, error) {
	snap := snapshot{TakenAt: now}

	for _, shard := range s.shards {
		shard.mu.Lock()
		for _, rec := range shard.records {
			snap.Sessions = append(snap.Sessions, *rec)
		}
		shard.mu.Unlock()
	}

	return json.Marshal(snap)
}

// Restore loads a snapshot into an empty store, dropping sessions that
// expired while the process was down. Returns the number of sessions
// restored.
func (s *Store) Restore(data []byte, now time.Time) (int, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, err
	}

	idle, absolute := s.config.IdleTimeout(), s.config.AbsoluteTimeout()
	restored := 0

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	for i := range snap.Sessions {
		rec := snap.Sessions[i]
		if rec.ID == "" || rec.UserID == "" {
			continue
		}
		if rec.idleExpired(now, idle) || rec.absoluteExpired(now, absolute) {
			continue
		}

		shard := s.shardFor(rec.ID)
		shard.mu.Lock()
		shard.records[rec.ID] = &rec
		shard.mu.Unlock()

		if s.index[rec.UserID] == nil {
			s.index[rec.UserID] = make(map[string]struct{})
		}
		s.index[rec.UserID][rec.ID] = struct{}{}
		restored++
	}

	return restored, nil
}

// Package session is the in-memory authoritative session registry with
// anomaly scoring. Records are sharded by session id so validations of
// unrelated sessions never contend; the user index has its own lock and is
// only touched on create, regenerate and terminate.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/trustcore/log"
)

const (
	shardCount        = 32
	idBytes           = 16
	minDistinctBytes  = 8
	maxGenerateTries  = 5
	maxRiskScore      = 100
)

type recordShard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Store holds all live sessions.
//
// Lock ordering: indexMu before any shard mutex. Create, regenerate and
// terminate take both so the record map and the user index always move as a
// unit; the Validate hot path takes only its shard.
type Store struct {
	config *Config
	logger *log.Logger

	shards [shardCount]*recordShard

	indexMu sync.Mutex
	index   map[string]map[string]struct{} // userId -> active session ids

	pool *ants.Pool
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a session store. Call Close to release the sweep pool.
func NewStore(config *Config, opts ...StoreOption) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	s := &Store{
		config: config,
		logger: log.G,
		index:  make(map[string]map[string]struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &recordShard{records: make(map[string]*Record)}
	}

	for _, opt := range opts {
		opt(s)
	}

	pool, err := ants.NewPool(config.SweepWorkers)
	if err != nil {
		return nil, err
	}
	s.pool = pool

	return s, nil
}

// Close releases the sweep worker pool
func (s *Store) Close() {
	s.pool.Release()
}

// Create registers a new session and returns its id. When the user already
// holds the maximum number of sessions the oldest one is terminated first.
func (s *Store) Create(userID, originIP, userAgent string, now time.Time) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	id, err := generateID()
	if err != nil {
		return "", err
	}

	rec := &Record{
		ID:             id,
		UserID:         userID,
		CreatedAt:      now,
		LastActivityAt: now,
		OriginIP:       originIP,
		UserAgentHash:  HashUserAgent(userAgent),
		Level:          LevelNormal,
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if evicted := s.evictOldestLocked(userID); evicted != "" {
		s.logger.Info().
			Str("user_id", userID).
			Str("evicted_session", evicted).
			Msg("concurrent session limit reached, oldest session evicted")
	}

	shard := s.shardFor(id)
	shard.mu.Lock()
	shard.records[id] = rec
	shard.mu.Unlock()

	if s.index[userID] == nil {
		s.index[userID] = make(map[string]struct{})
	}
	s.index[userID][id] = struct{}{}

	return id, nil
}

// Validate checks a session against its timeouts and scores the request
// context against the session origin. An expired session is removed before
// ErrExpired is returned; later lookups see ErrNotFound.
func (s *Store) Validate(sessionID, currentIP, userAgent string, now time.Time) (*ValidationResult, error) {
	shard := s.shardFor(sessionID)

	shard.mu.Lock()
	rec, ok := shard.records[sessionID]
	if !ok {
		shard.mu.Unlock()
		return nil, ErrNotFound
	}

	if rec.idleExpired(now, s.config.IdleTimeout()) || rec.absoluteExpired(now, s.config.AbsoluteTimeout()) {
		userID := rec.UserID
		shard.mu.Unlock()
		s.removeSession(sessionID)
		s.logger.Debug().Str("user_id", userID).Msg("session expired")
		return nil, ErrExpired
	}

	delta := s.riskDelta(rec, currentIP, HashUserAgent(userAgent))
	rec.RiskScore = clampRisk(rec.RiskScore + delta)
	rec.LastActivityAt = now
	rec.ConsecutiveFailures = 0

	stepUp := false
	if rec.RiskScore >= s.config.RiskEscalationThreshold {
		switch rec.Level {
		case LevelNormal:
			stepUp = true
		case LevelElevated:
			// Already verified a second factor; renewed risk is recorded
			// rather than challenged again
			rec.Level = LevelHigh
		}
	}

	result := &ValidationResult{
		UserID:         rec.UserID,
		Level:          rec.Level,
		RiskScore:      rec.RiskScore,
		RiskDelta:      delta,
		StepUpRequired: stepUp,
	}
	shard.mu.Unlock()

	return result, nil
}

// Regenerate moves a session to a fresh id, defeating session fixation. The
// old id is invalid the instant the new one exists.
func (s *Store) Regenerate(oldID string, now time.Time) (string, error) {
	newID, err := generateID()
	if err != nil {
		return "", err
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	oldIdx, newIdx := shardIndex(oldID), shardIndex(newID)
	oldShard, newShard := s.shards[oldIdx], s.shards[newIdx]
	lockShardPair(oldShard, newShard, oldIdx < newIdx)
	defer unlockShardPair(oldShard, newShard)

	rec, ok := oldShard.records[oldID]
	if !ok {
		return "", ErrNotFound
	}
	if rec.idleExpired(now, s.config.IdleTimeout()) || rec.absoluteExpired(now, s.config.AbsoluteTimeout()) {
		s.unindexLocked(rec.UserID, oldID)
		delete(oldShard.records, oldID)
		return "", ErrExpired
	}

	fresh := *rec
	fresh.ID = newID
	fresh.LastActivityAt = now

	s.unindexLocked(rec.UserID, oldID)
	delete(oldShard.records, oldID)

	newShard.records[newID] = &fresh
	if s.index[fresh.UserID] == nil {
		s.index[fresh.UserID] = make(map[string]struct{})
	}
	s.index[fresh.UserID][newID] = struct{}{}

	return newID, nil
}

// Terminate removes one session. Unknown ids are a no-op.
func (s *Store) Terminate(sessionID string) bool {
	return s.removeSession(sessionID)
}

// TerminateAll removes every session of a user and returns how many were
// removed
func (s *Store) TerminateAll(userID string) int {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids := s.index[userID]
	removed := 0
	for id := range ids {
		shard := s.shardFor(id)
		shard.mu.Lock()
		if _, ok := shard.records[id]; ok {
			delete(shard.records, id)
			removed++
		}
		shard.mu.Unlock()
	}
	delete(s.index, userID)

	return removed
}

// MarkFailure records a failed sensitive operation against a session,
// raising its risk score by the failure-streak weight
func (s *Store) MarkFailure(sessionID string) {
	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	rec, ok := shard.records[sessionID]
	if !ok {
		return
	}
	rec.ConsecutiveFailures++
	rec.RiskScore = clampRisk(rec.RiskScore + s.config.FailureStreakWeight)
}

// Elevate raises a session to the elevated security level after successful
// step-up authentication and clears accumulated risk
func (s *Store) Elevate(sessionID string) error {
	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	rec, ok := shard.records[sessionID]
	if !ok {
		return ErrNotFound
	}
	rec.Level = LevelElevated
	rec.RiskScore = 0
	rec.ConsecutiveFailures = 0
	return nil
}

// Get returns a copy of a live record, for audit and introspection
func (s *Store) Get(sessionID string) (Record, error) {
	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	rec, ok := shard.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return *rec, nil
}

// SweepExpired scans every shard on the worker pool and removes sessions
// past either timeout. Returns the number of sessions removed.
func (s *Store) SweepExpired(now time.Time) int {
	idle, absolute := s.config.IdleTimeout(), s.config.AbsoluteTimeout()

	var (
		mu      sync.Mutex
		expired []string
		wg      sync.WaitGroup
	)

	for _, shard := range s.shards {
		shard := shard
		wg.Add(1)
		scan := func() {
			defer wg.Done()
			var found []string
			shard.mu.Lock()
			for id, rec := range shard.records {
				if rec.idleExpired(now, idle) || rec.absoluteExpired(now, absolute) {
					found = append(found, id)
				}
			}
			shard.mu.Unlock()
			if len(found) > 0 {
				mu.Lock()
				expired = append(expired, found...)
				mu.Unlock()
			}
		}
		if err := s.pool.Submit(scan); err != nil {
			scan()
		}
	}
	wg.Wait()

	removed := 0
	for _, id := range expired {
		if s.removeSession(id) {
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("expired sessions swept")
	}
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.records)
		shard.mu.Unlock()
	}
	return total
}

// UserSessions returns the ids of a user's active sessions
func (s *Store) UserSessions(userID string) []string {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids := make([]string, 0, len(s.index[userID]))
	for id := range s.index[userID] {
		ids = append(ids, id)
	}
	return ids
}

// removeSession deletes the index entry and the record as a unit
func (s *Store) removeSession(sessionID string) bool {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	shard := s.shardFor(sessionID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	rec, ok := shard.records[sessionID]
	if !ok {
		return false
	}
	s.unindexLocked(rec.UserID, sessionID)
	delete(shard.records, sessionID)
	return true
}

// evictOldestLocked enforces the concurrent-session cap for a user. Caller
// holds indexMu.
func (s *Store) evictOldestLocked(userID string) string {
	ids := s.index[userID]
	if len(ids) < s.config.MaxConcurrentSessions {
		return ""
	}

	oldestID := ""
	var oldestAt time.Time
	for id := range ids {
		shard := s.shardFor(id)
		shard.mu.Lock()
		rec, ok := shard.records[id]
		if ok && (oldestID == "" || rec.CreatedAt.Before(oldestAt)) {
			oldestID = id
			oldestAt = rec.CreatedAt
		}
		shard.mu.Unlock()
	}
	if oldestID == "" {
		return ""
	}

	shard := s.shardFor(oldestID)
	shard.mu.Lock()
	delete(shard.records, oldestID)
	shard.mu.Unlock()
	s.unindexLocked(userID, oldestID)

	return oldestID
}

// unindexLocked removes one index entry. Caller holds indexMu.
func (s *Store) unindexLocked(userID, sessionID string) {
	ids, ok := s.index[userID]
	if !ok {
		return
	}
	delete(ids, sessionID)
	if len(ids) == 0 {
		delete(s.index, userID)
	}
}

func (s *Store) shardFor(sessionID string) *recordShard {
	return s.shards[shardIndex(sessionID)]
}

func shardIndex(sessionID string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(sessionID); i++ {
		h ^= uint32(sessionID[i])
		h *= 16777619
	}
	return h % shardCount
}

// lockShardPair locks two shards in a consistent index order so concurrent
// regenerations cannot deadlock
func lockShardPair(a, b *recordShard, aFirst bool) {
	if a == b {
		a.mu.Lock()
		return
	}
	if aFirst {
		a.mu.Lock()
		b.mu.Lock()
	} else {
		b.mu.Lock()
		a.mu.Lock()
	}
}

func unlockShardPair(a, b *recordShard) {
	if a == b {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	b.mu.Unlock()
}

func clampRisk(score int) int {
	if score > maxRiskScore {
		return maxRiskScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// generateID produces a 128-bit hex session id, retrying when the random
// bytes fail the minimum-entropy self-check
func generateID() (string, error) {
	buf := make([]byte, idBytes)
	for attempt := 0; attempt < maxGenerateTries; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if entropyOK(buf) {
			return hex.EncodeToString(buf), nil
		}
	}
	return "", ErrWeakEntropy
}

// entropyOK rejects degenerate outputs such as all-zero buffers from a
// broken random source
func entropyOK(buf []byte) bool {
	distinct := make(map[byte]struct{}, len(buf))
	for _, b := range buf {
		distinct[b] = struct{}{}
	}
	return len(distinct) >= minDistinctBytes
}

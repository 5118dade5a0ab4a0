package store

import (
	"errors"
	"sync"
	"time"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

var (
	// ErrNotFound is returned when no snapshot has been captured for a region.
	ErrNotFound = errors.New("no snapshots for region")
)

// SnapshotHistory holds a time-ordered list of captured snapshots for a region.
type SnapshotHistory struct {
	Records []crowd.SnapshotRecord
}

// MemoryStore is a concurrency-safe in-memory history of captured snapshots.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized region, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of records per region
	maxAge     time.Duration // optional max age for records
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a record to its region's history and enforces retention.
func (s *MemoryStore) Save(rec crowd.SnapshotRecord) {
	key := common.NormalizeName(rec.Region)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Records = append(history.Records, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Records) > s.maxHistory {
		over := len(history.Records) - s.maxHistory
		history.Records = history.Records[over:]
	}

	// Enforce retention by age. Records are in capture order, so everything
	// before the first fresh one goes, possibly the whole history.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for i < len(history.Records) && history.Records[i].TakenAt.Before(cutoff) {
			i++
		}
		history.Records = history.Records[i:]
	}
}

// Latest returns the most recent record for a region.
func (s *MemoryStore) Latest(region string) (crowd.SnapshotRecord, error) {
	key := common.NormalizeName(region)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Records) == 0 {
		return crowd.SnapshotRecord{}, ErrNotFound
	}
	return history.Records[len(history.Records)-1], nil
}

// Range returns all records for a region taken between from and to (inclusive).
func (s *MemoryStore) Range(region string, from, to time.Time) ([]crowd.SnapshotRecord, error) {
	key := common.NormalizeName(region)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Records) == 0 {
		return nil, ErrNotFound
	}

	var result []crowd.SnapshotRecord
	for _, rec := range history.Records {
		if (rec.TakenAt.Equal(from) || rec.TakenAt.After(from)) &&
			(rec.TakenAt.Equal(to) || rec.TakenAt.Before(to)) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}



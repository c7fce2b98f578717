// Package leaderboard keeps an ordered top-N register of finished runs.
package leaderboard

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity is the top-N cap used when none is configured.
const DefaultCapacity = 100

// Entry is an immutable snapshot of a finalized run.
type Entry struct {
	PlayerName    string    `json:"player_name"`
	CharacterID   string    `json:"character_id"`
	Score         int       `json:"score"`
	Moves         int       `json:"moves"`
	CitiesVisited int       `json:"cities_visited"`
	DistanceKm    float64   `json:"distance_km"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Stats are aggregates over a slice of entries.
type Stats struct {
	Count       int     `json:"count"`
	AvgScore    float64 `json:"avg_score"`
	AvgMoves    float64 `json:"avg_moves"`
	AvgDistance float64 `json:"avg_distance_km"`
}

// Aggregate computes stats over the given entries.
func Aggregate(entries []Entry) Stats {
	s := Stats{Count: len(entries)}
	if s.Count == 0 {
		return s
	}
	for _, e := range entries {
		s.AvgScore += float64(e.Score)
		s.AvgMoves += float64(e.Moves)
		s.AvgDistance += e.DistanceKm
	}
	n := float64(s.Count)
	s.AvgScore /= n
	s.AvgMoves /= n
	s.AvgDistance /= n
	return s
}

// Register is an in-memory top-N leaderboard. It is safe for
// concurrent use; multiple sessions may complete at the same time.
type Register struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewRegister creates a register capped at the given size.
// A capacity <= 0 falls back to DefaultCapacity.
func NewRegister(capacity int) *Register {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Register{capacity: capacity}
}

// Record inserts an entry, keeping the register sorted descending by
// score and truncated to capacity.
func (r *Register) Record(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Score > r.entries[j].Score
	})
	if len(r.entries) > r.capacity {
		r.entries = r.entries[:r.capacity]
	}
}

// TopK returns the first k entries and aggregate stats over them.
// k <= 0 or k beyond the register size returns everything.
func (r *Register) TopK(k int) ([]Entry, Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k <= 0 || k > len(r.entries) {
		k = len(r.entries)
	}
	out := make([]Entry, k)
	copy(out, r.entries[:k])
	return out, Aggregate(out)
}

// Len returns the number of recorded entries.
func (r *Register) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

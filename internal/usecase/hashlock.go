package usecase

import (
	"sync"

	"bitserve/internal/domain"
)

// HashLocks serializes operations per info hash: an add and a remove for the
// same torrent never interleave, while operations on different hashes run
// concurrently. Entries are reference counted and dropped when the last
// holder unlocks, so the map does not grow with torrent churn.
type HashLocks struct {
	mu    sync.Mutex
	locks map[domain.InfoHash]*hashLock
}

type hashLock struct {
	mu   sync.Mutex
	refs int
}

func NewHashLocks() *HashLocks {
	return &HashLocks{locks: make(map[domain.InfoHash]*hashLock)}
}

// Lock acquires the per-hash mutex and returns the matching unlock func.
func (h *HashLocks) Lock(hash domain.InfoHash) func() {
	h.mu.Lock()
	l, ok := h.locks[hash]
	if !ok {
		l = &hashLock{}
		h.locks[hash] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, hash)
		}
		h.mu.Unlock()
	}
}

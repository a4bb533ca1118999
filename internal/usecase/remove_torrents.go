package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"bitserve/internal/domain"
	"bitserve/internal/domain/ports"
)

// RemoveResult reports the outcome for a single hash in a batch removal.
type RemoveResult struct {
	InfoHash domain.InfoHash
	Err      error
}

// RemoveTorrents drops torrents from the engine and the session store, in
// that order: a crash between the two leaves a store record whose engine
// session is gone, which startup reconciliation repairs by re-adding it.
type RemoveTorrents struct {
	Engine      ports.Engine
	Repo        ports.TorrentRepository
	Events      ports.EventPublisher
	Locks       *HashLocks
	Now         func() time.Time
	Timeout     time.Duration
	Parallelism int64
}

func (uc RemoveTorrents) Execute(ctx context.Context, hashes []domain.InfoHash, deleteFiles bool) []RemoveResult {
	results := make([]RemoveResult, len(hashes))
	sem := semaphore.NewWeighted(uc.parallelism())
	var wg sync.WaitGroup

	for i, hash := range hashes {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = RemoveResult{InfoHash: hash, Err: wrapEngine(err)}
			continue
		}
		wg.Add(1)
		go func(i int, hash domain.InfoHash) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = RemoveResult{InfoHash: hash, Err: uc.removeOne(ctx, hash, deleteFiles)}
		}(i, hash)
	}

	wg.Wait()
	return results
}

func (uc RemoveTorrents) removeOne(ctx context.Context, hash domain.InfoHash, deleteFiles bool) error {
	unlock := uc.Locks.Lock(hash)
	defer unlock()

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout())
	defer cancel()

	record, err := uc.Repo.Get(opCtx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapRepo(err)
	}

	// Engine first. The engine not knowing the hash is fine (for instance
	// when startup re-add failed and the record sits in error state); any
	// other engine failure retains the record so removal is never partially
	// applied.
	if err := uc.Engine.Remove(opCtx, hash, deleteFiles); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return wrapEngine(err)
	}

	if err := uc.Repo.Delete(opCtx, hash); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return wrapRepo(err)
	}

	if uc.Events != nil {
		now := uc.now()
		uc.Events.Publish(domain.LifecycleEvent{
			Type:     domain.EventTorrentRemoved,
			InfoHash: hash,
			Payload: domain.SessionState{
				InfoHash:  hash,
				Name:      record.Name,
				Status:    domain.TorrentRemoved,
				UpdatedAt: now,
			},
			OccurredAt: now,
		})
	}

	return nil
}

func (uc RemoveTorrents) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc RemoveTorrents) timeout() time.Duration {
	if uc.Timeout > 0 {
		return uc.Timeout
	}
	return defaultOpTimeout
}

func (uc RemoveTorrents) parallelism() int64 {
	if uc.Parallelism > 0 {
		return uc.Parallelism
	}
	return defaultParallelism
}

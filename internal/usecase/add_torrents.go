package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"golang.org/x/sync/semaphore"

	"bitserve/internal/domain"
	"bitserve/internal/domain/ports"
)

const (
	defaultOpTimeout   = 30 * time.Second
	defaultParallelism = 8
)

// TorrentUpload is one uploaded .torrent file from a batch add request.
type TorrentUpload struct {
	FileName string
	Data     []byte
}

// AddResult reports the outcome for a single upload. Exactly one of Record or
// Err is meaningful; a duplicate add is a success that returns the existing
// record.
type AddResult struct {
	FileName  string
	InfoHash  domain.InfoHash
	Record    domain.TorrentRecord
	Duplicate bool
	Err       error
}

// AddTorrents registers uploaded torrents with the engine and the session
// store. Each file's outcome is independent: a malformed upload never aborts
// the rest of the batch.
type AddTorrents struct {
	Engine      ports.Engine
	Repo        ports.TorrentRepository
	Events      ports.EventPublisher
	Locks       *HashLocks
	Now         func() time.Time
	Timeout     time.Duration
	Parallelism int64
}

func (uc AddTorrents) Execute(ctx context.Context, uploads []TorrentUpload) []AddResult {
	results := make([]AddResult, len(uploads))
	sem := semaphore.NewWeighted(uc.parallelism())
	var wg sync.WaitGroup

	for i, upload := range uploads {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = AddResult{FileName: upload.FileName, Err: wrapEngine(err)}
			continue
		}
		wg.Add(1)
		go func(i int, upload TorrentUpload) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = uc.addOne(ctx, upload)
		}(i, upload)
	}

	wg.Wait()
	return results
}

func (uc AddTorrents) addOne(ctx context.Context, upload TorrentUpload) AddResult {
	result := AddResult{FileName: upload.FileName}

	mi, err := metainfo.Load(bytes.NewReader(upload.Data))
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
		return result
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
		return result
	}

	hash := domain.InfoHash(mi.HashInfoBytes().HexString())
	result.InfoHash = hash

	unlock := uc.Locks.Lock(hash)
	defer unlock()

	// Engine and store calls run on a detached context: a client disconnect
	// must not abandon an add half way, leaving the engine and the store
	// disagreeing about the torrent.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout())
	defer cancel()

	// Idempotent: a second add for a known hash returns the existing record
	// without touching the engine.
	existing, getErr := uc.Repo.Get(opCtx, hash)
	if getErr == nil {
		result.Record = existing
		result.Duplicate = true
		return result
	}

	state, err := uc.Engine.Add(opCtx, upload.Data)
	if err != nil {
		result.Err = wrapEngine(err)
		return result
	}

	now := uc.now()
	record := domain.TorrentRecord{
		InfoHash:  hash,
		Name:      info.Name,
		Status:    domain.TorrentPending,
		Source:    upload.Data,
		AddedAt:   now,
		UpdatedAt: now,
	}
	if record.Name == "" {
		record.Name = state.Name
	}

	if err := uc.Repo.Put(opCtx, record); err != nil {
		// Roll the engine back so a subsequent List sees a consistent
		// "absent" view on both sides.
		_ = uc.Engine.Remove(opCtx, hash, false)
		result.Err = wrapRepo(err)
		return result
	}

	result.Record = record

	if uc.Events != nil {
		state.InfoHash = hash
		if state.Name == "" {
			state.Name = record.Name
		}
		uc.Events.Publish(domain.LifecycleEvent{
			Type:       domain.EventTorrentAdded,
			InfoHash:   hash,
			Payload:    state,
			OccurredAt: now,
		})
	}

	return result
}

func (uc AddTorrents) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc AddTorrents) timeout() time.Duration {
	if uc.Timeout > 0 {
		return uc.Timeout
	}
	return defaultOpTimeout
}

func (uc AddTorrents) parallelism() int64 {
	if uc.Parallelism > 0 {
		return uc.Parallelism
	}
	return defaultParallelism
}

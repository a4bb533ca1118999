package ports

import (
	"context"

	"bitserve/internal/domain"
)

// Engine is the facade over the external torrent engine. Implementations may
// be slow or fallible; callers bound every call with a context deadline.
type Engine interface {
	// Add registers a torrent from raw .torrent metadata and returns the
	// initial session state. Adding an already-registered torrent returns
	// the existing session's state.
	Add(ctx context.Context, meta []byte) (domain.SessionState, error)
	// Remove drops the live session. When deleteFiles is set the downloaded
	// payload is deleted from disk as well. Returns domain.ErrNotFound when
	// the engine holds no session for the hash.
	Remove(ctx context.Context, hash domain.InfoHash, deleteFiles bool) error
	State(ctx context.Context, hash domain.InfoHash) (domain.SessionState, error)
	List(ctx context.Context) ([]domain.InfoHash, error)
	Close() error
}

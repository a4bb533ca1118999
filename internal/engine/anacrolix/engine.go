package anacrolix

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"

	"bitserve/internal/domain"
)

var ErrSessionNotFound = domain.ErrNotFound

// addTimeout bounds how long we wait for the anacrolix client to accept a
// torrent before the caller's deadline kicks in.
const addTimeout = 15 * time.Second

type Config struct {
	DataDir    string
	ListenAddr string // e.g. "0.0.0.0:6881"
	MaxConns   int    // per-torrent connection cap; 0 = library default
}

// Engine adapts the anacrolix torrent client to the ports.Engine contract.
// It tracks one live session per info hash; the client itself holds no state
// across process restarts.
type Engine struct {
	client   *torrent.Client
	dataDir  string
	maxConns int

	mu       sync.RWMutex
	sessions map[domain.InfoHash]*torrent.Torrent

	speedMu     sync.Mutex
	speeds      map[domain.InfoHash]speedSample
	completedAt map[domain.InfoHash]time.Time
}

type speedSample struct {
	read    int64
	written int64
	at      time.Time
}

func New(cfg Config) (*Engine, error) {
	clientConfig := torrent.NewDefaultClientConfig()
	if cfg.DataDir != "" {
		clientConfig.DataDir = cfg.DataDir
	}
	if cfg.ListenAddr != "" {
		clientConfig.SetListenAddr(cfg.ListenAddr)
	}

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	e := newEngine(client)
	e.dataDir = clientConfig.DataDir
	e.maxConns = cfg.MaxConns
	return e, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client *torrent.Client, dataDir string) *Engine {
	e := newEngine(client)
	e.dataDir = dataDir
	return e
}

func newEngine(client *torrent.Client) *Engine {
	return &Engine{
		client:      client,
		sessions:    make(map[domain.InfoHash]*torrent.Torrent),
		speeds:      make(map[domain.InfoHash]speedSample),
		completedAt: make(map[domain.InfoHash]time.Time),
	}
}

func (e *Engine) Add(ctx context.Context, meta []byte) (domain.SessionState, error) {
	if e.client == nil {
		return domain.SessionState{}, errors.New("torrent client not configured")
	}

	mi, err := metainfo.Load(bytes.NewReader(meta))
	if err != nil {
		return domain.SessionState{}, err
	}

	// Run AddTorrent with a timeout so a busy client never hangs the HTTP
	// handler. The goroutine may still finish the add after we give up; the
	// cleanup goroutine drops the orphan.
	type addResult struct {
		t   *torrent.Torrent
		err error
	}
	ch := make(chan addResult, 1)
	go func() {
		t, err := e.client.AddTorrent(mi)
		ch <- addResult{t, err}
	}()

	var t *torrent.Torrent
	select {
	case res := <-ch:
		if res.err != nil {
			return domain.SessionState{}, res.err
		}
		t = res.t
	case <-time.After(addTimeout):
		go func() {
			if res := <-ch; res.t != nil {
				res.t.Drop()
			}
		}()
		return domain.SessionState{}, context.DeadlineExceeded
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.t != nil {
				res.t.Drop()
			}
		}()
		return domain.SessionState{}, ctx.Err()
	}

	hash := domain.InfoHash(t.InfoHash().HexString())

	e.mu.Lock()
	_, existed := e.sessions[hash]
	e.sessions[hash] = t
	e.mu.Unlock()

	if !existed {
		if e.maxConns > 0 {
			t.SetMaxEstablishedConns(e.maxConns)
		}
		// Uploaded .torrent files carry the info dict, so metadata is
		// available immediately and downloading can start right away.
		select {
		case <-t.GotInfo():
			t.DownloadAll()
		default:
		}
	}

	return e.snapshot(hash, t), nil
}

func (e *Engine) Remove(ctx context.Context, hash domain.InfoHash, deleteFiles bool) error {
	e.mu.Lock()
	t, ok := e.sessions[hash]
	if !ok {
		e.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(e.sessions, hash)
	e.mu.Unlock()

	var paths []string
	if deleteFiles && t.Info() != nil {
		for _, f := range t.Files() {
			paths = append(paths, f.Path())
		}
	}

	t.Drop()

	e.speedMu.Lock()
	delete(e.speeds, hash)
	delete(e.completedAt, hash)
	e.speedMu.Unlock()

	if deleteFiles {
		return removeDataFiles(e.dataDir, paths)
	}
	return nil
}

func (e *Engine) State(ctx context.Context, hash domain.InfoHash) (domain.SessionState, error) {
	e.mu.RLock()
	t, ok := e.sessions[hash]
	e.mu.RUnlock()
	if !ok {
		return domain.SessionState{}, ErrSessionNotFound
	}
	return e.snapshot(hash, t), nil
}

func (e *Engine) List(ctx context.Context) ([]domain.InfoHash, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	hashes := make([]domain.InfoHash, 0, len(e.sessions))
	for hash := range e.sessions {
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	errList := e.client.Close()
	if len(errList) > 0 {
		return errList[0]
	}
	return nil
}

func (e *Engine) snapshot(hash domain.InfoHash, t *torrent.Torrent) domain.SessionState {
	now := time.Now().UTC()
	state := domain.SessionState{
		InfoHash:  hash,
		Name:      t.Name(),
		UpdatedAt: now,
	}

	if t.Info() == nil {
		state.Status = domain.TorrentPending
		return state
	}

	length := t.Length()
	completed := t.BytesCompleted()
	if length > 0 {
		state.Progress = 100 * float64(completed) / float64(length)
	}

	stats := t.Stats()
	state.Peers = stats.ActivePeers
	state.DownloadRate, state.UploadRate = e.sampleSpeed(hash, stats, now)

	if t.BytesMissing() == 0 {
		state.Status = domain.TorrentSeeding
		state.SeedingSeconds = int64(now.Sub(e.seedingSince(hash, now)).Seconds())
	} else {
		state.Status = domain.TorrentDownloading
	}
	return state
}

// sampleSpeed derives byte-per-second rates from successive stat reads.
func (e *Engine) sampleSpeed(hash domain.InfoHash, stats torrent.TorrentStats, now time.Time) (int64, int64) {
	return e.sampleRaw(hash, stats.BytesReadUsefulData.Int64(), stats.BytesWrittenData.Int64(), now)
}

func (e *Engine) sampleRaw(hash domain.InfoHash, read, written int64, now time.Time) (int64, int64) {
	e.speedMu.Lock()
	defer e.speedMu.Unlock()

	prev, ok := e.speeds[hash]
	e.speeds[hash] = speedSample{read: read, written: written, at: now}

	if !ok || !now.After(prev.at) {
		return 0, 0
	}
	seconds := now.Sub(prev.at).Seconds()
	if seconds <= 0 {
		return 0, 0
	}

	down := int64(float64(read-prev.read) / seconds)
	up := int64(float64(written-prev.written) / seconds)
	if down < 0 {
		down = 0
	}
	if up < 0 {
		up = 0
	}
	return down, up
}

func (e *Engine) seedingSince(hash domain.InfoHash, now time.Time) time.Time {
	e.speedMu.Lock()
	defer e.speedMu.Unlock()
	since, ok := e.completedAt[hash]
	if !ok {
		since = now
		e.completedAt[hash] = since
	}
	return since
}

// removeDataFiles deletes downloaded payload files, refusing any path that
// would escape the data directory.
func removeDataFiles(baseDir string, paths []string) error {
	if strings.TrimSpace(baseDir) == "" {
		return errors.New("data dir not configured")
	}

	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}
	baseAbs = filepath.Clean(baseAbs)

	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			return errors.New("invalid file path")
		}
		if filepath.IsAbs(path) {
			return errors.New("invalid file path")
		}
		fullPath := filepath.Clean(filepath.Join(baseAbs, filepath.FromSlash(path)))

		if !strings.HasPrefix(fullPath, baseAbs+string(os.PathSeparator)) && fullPath != baseAbs {
			return errors.New("invalid file path")
		}

		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

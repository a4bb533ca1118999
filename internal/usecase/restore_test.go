package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"bitserve/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRestoreReaddsAllRecords(t *testing.T) {
	engine := newFakeEngine()
	repo := newFakeRepo()
	var hashes []domain.InfoHash
	for _, name := range []string{"one.iso", "two.iso", "three.iso"} {
		data := testTorrentBytes(t, name)
		hash := infoHashOf(t, data)
		hashes = append(hashes, hash)
		repo.records[hash] = domain.TorrentRecord{
			InfoHash: hash,
			Name:     name,
			Status:   domain.TorrentDownloading,
			Source:   data,
			AddedAt:  fixedNow(),
		}
	}

	uc := Restore{Engine: engine, Repo: repo, Logger: discardLogger()}
	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, hash := range hashes {
		if !engine.has(hash) {
			t.Errorf("hash %s not re-added to engine", hash)
		}
	}
	if repo.count() != 3 {
		t.Errorf("store holds %d records after restore, want 3", repo.count())
	}
}

func TestRestoreMarksFailedReaddsAsErrorButKeepsThem(t *testing.T) {
	engine := newFakeEngine()
	engine.addErr = errors.New("tracker exploded")
	repo := newFakeRepo()
	data := testTorrentBytes(t, "broken.iso")
	hash := infoHashOf(t, data)
	repo.records[hash] = domain.TorrentRecord{
		InfoHash: hash,
		Name:     "broken.iso",
		Status:   domain.TorrentDownloading,
		Source:   data,
		AddedAt:  fixedNow(),
	}

	uc := Restore{Engine: engine, Repo: repo, Logger: discardLogger()}
	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("re-add failure must not be fatal, got: %v", err)
	}

	record, err := repo.Get(context.Background(), hash)
	if err != nil {
		t.Fatal("record dropped; broken entries must stay visible to operators")
	}
	if record.Status != domain.TorrentError {
		t.Errorf("status: got %q, want error", record.Status)
	}
}

func TestRestoreRecoversErrorRecordsOnSuccessfulReadd(t *testing.T) {
	engine := newFakeEngine()
	repo := newFakeRepo()
	data := testTorrentBytes(t, "healed.iso")
	hash := infoHashOf(t, data)
	repo.records[hash] = domain.TorrentRecord{
		InfoHash: hash,
		Name:     "healed.iso",
		Status:   domain.TorrentError,
		Source:   data,
		AddedAt:  fixedNow(),
	}

	uc := Restore{Engine: engine, Repo: repo, Logger: discardLogger()}
	if err := uc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, _ := repo.Get(context.Background(), hash)
	if record.Status != domain.TorrentPending {
		t.Errorf("status: got %q, want pending after successful re-add", record.Status)
	}
}

func TestRestoreFailsFastOnUnreadableStore(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("store corrupted")

	uc := Restore{Engine: newFakeEngine(), Repo: repo, Logger: discardLogger()}
	err := uc.Run(context.Background())

	if !errors.Is(err, ErrRepository) {
		t.Errorf("got %v, want ErrRepository (fatal startup)", err)
	}
}

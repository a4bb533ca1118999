package usecase

import (
	"context"
	"testing"

	"bitserve/internal/domain"
)

func TestListTorrentsMergesEngineState(t *testing.T) {
	engine := newFakeEngine()
	repo := newFakeRepo()
	hash := seedTorrent(t, engine, repo, "live.iso")

	engine.setState(hash, domain.SessionState{
		InfoHash:     hash,
		Name:         "live.iso",
		Status:       domain.TorrentDownloading,
		Progress:     42.5,
		DownloadRate: 1 << 20,
		Peers:        12,
	})

	uc := ListTorrents{Engine: engine, Repo: repo}
	views, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}

	view := views[0]
	if view.Status != domain.TorrentDownloading {
		t.Errorf("status: got %q, want downloading (engine state must win)", view.Status)
	}
	if view.Progress != 42.5 {
		t.Errorf("progress: got %v, want 42.5", view.Progress)
	}
	if view.Peers != 12 {
		t.Errorf("peers: got %d, want 12", view.Peers)
	}
	if !view.AddedAt.Equal(fixedNow()) {
		t.Errorf("addedAt lost in merge: got %v", view.AddedAt)
	}
}

func TestListTorrentsFallsBackToPersistedState(t *testing.T) {
	engine := newFakeEngine()
	repo := newFakeRepo()
	hash := seedTorrent(t, engine, repo, "stale.iso")

	// The engine lost the session (for example before startup re-add
	// finished); the last persisted state must be shown.
	if err := engine.Remove(context.Background(), hash, false); err != nil {
		t.Fatalf("setup remove: %v", err)
	}

	uc := ListTorrents{Engine: engine, Repo: repo}
	views, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].Status != domain.TorrentPending {
		t.Errorf("status: got %q, want persisted pending", views[0].Status)
	}
	if views[0].Name != "stale.iso" {
		t.Errorf("name: got %q, want stale.iso", views[0].Name)
	}
}

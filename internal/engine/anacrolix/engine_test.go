package anacrolix

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitserve/internal/domain"
)

func TestRemoveDataFilesDeletesWithinBaseDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "show")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "episode.mkv")
	if err := os.WriteFile(file, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := removeDataFiles(dir, []string{"show/episode.mkv"}); err != nil {
		t.Fatalf("removeDataFiles: %v", err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
}

func TestRemoveDataFilesIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := removeDataFiles(dir, []string{"gone.bin"}); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}

func TestRemoveDataFilesRejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "..", "victim.txt")
	if err := os.WriteFile(filepath.Clean(outside), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(filepath.Clean(outside)) })

	cases := []string{
		"../victim.txt",
		"a/../../victim.txt",
		"/etc/passwd",
		"",
		"   ",
	}
	for _, path := range cases {
		if err := removeDataFiles(dir, []string{path}); err == nil {
			t.Errorf("path %q should be rejected", path)
		}
	}
	if _, err := os.Stat(filepath.Clean(outside)); err != nil {
		t.Fatalf("file outside data dir must survive: %v", err)
	}
}

func TestRemoveDataFilesRequiresBaseDir(t *testing.T) {
	if err := removeDataFiles("", []string{"a.bin"}); err == nil {
		t.Fatal("empty base dir should error")
	}
}

func TestSampleSpeedFirstReadIsZero(t *testing.T) {
	e := newEngine(nil)
	now := time.Now()

	down, up := e.sampleRaw("abc", 1000, 500, now)
	if down != 0 || up != 0 {
		t.Fatalf("first sample should be zero, got %d/%d", down, up)
	}
}

func TestSampleSpeedComputesRates(t *testing.T) {
	e := newEngine(nil)
	start := time.Now()

	e.sampleRaw("abc", 1000, 500, start)
	down, up := e.sampleRaw("abc", 3000, 1500, start.Add(2*time.Second))
	if down != 1000 {
		t.Fatalf("download rate = %d, want 1000", down)
	}
	if up != 500 {
		t.Fatalf("upload rate = %d, want 500", up)
	}
}

func TestSampleSpeedClampsNegativeDeltas(t *testing.T) {
	e := newEngine(nil)
	start := time.Now()

	e.sampleRaw("abc", 1000, 500, start)
	down, up := e.sampleRaw("abc", 100, 50, start.Add(time.Second))
	if down != 0 || up != 0 {
		t.Fatalf("negative deltas should clamp to zero, got %d/%d", down, up)
	}
}

func TestSeedingSinceIsStable(t *testing.T) {
	e := newEngine(nil)
	first := time.Now()

	since := e.seedingSince("abc", first)
	if !since.Equal(first) {
		t.Fatalf("first call should record now, got %v", since)
	}
	later := e.seedingSince("abc", first.Add(time.Minute))
	if !later.Equal(first) {
		t.Fatalf("subsequent calls should return the original time, got %v", later)
	}
}

func TestListAndStateWithoutSessions(t *testing.T) {
	e := newEngine(nil)
	ctx := context.Background()

	hashes, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("expected no sessions, got %d", len(hashes))
	}

	if _, err := e.State(ctx, domain.InfoHash("deadbeef")); err != ErrSessionNotFound {
		t.Fatalf("State on unknown hash = %v, want ErrSessionNotFound", err)
	}
}

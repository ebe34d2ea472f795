package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subshift/internal/logging"
)

func newTestManager(t *testing.T, smallKeep, largeKeep int) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	manager := NewManager(dir, smallKeep, largeKeep, 150, logging.NewNop())
	return manager, dir
}

func writeSubtitle(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.srt")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", size)), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}
	return path
}

func TestCreateBackup(t *testing.T) {
	manager, dir := newTestManager(t, 50, 25)
	manager.now = func() time.Time {
		return time.Date(2026, 8, 30, 14, 30, 45, 0, time.UTC)
	}

	source := writeSubtitle(t, 100)
	backupPath, err := manager.Create(source)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	wantName := "episode.2026-08-30T14-30-45.srt"
	if filepath.Base(backupPath) != wantName {
		t.Errorf("backup name = %q, want %q", filepath.Base(backupPath), wantName)
	}
	if filepath.Dir(backupPath) != dir {
		t.Errorf("backup dir = %q, want %q", filepath.Dir(backupPath), dir)
	}

	original, _ := os.ReadFile(source)
	copied, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(copied) != string(original) {
		t.Error("backup content differs from original")
	}
}

func TestCreateMissingFile(t *testing.T) {
	manager, _ := newTestManager(t, 50, 25)
	if _, err := manager.Create(filepath.Join(t.TempDir(), "nope.srt")); err == nil {
		t.Fatal("expected error backing up missing file")
	}
}

func TestRetentionKeepsNewest(t *testing.T) {
	manager, dir := newTestManager(t, 3, 25)

	source := writeSubtitle(t, 100)
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		manager.now = func() time.Time { return tick }
		if _, err := manager.Create(source); err != nil {
			t.Fatalf("Create() #%d error: %v", i, err)
		}
	}

	remaining, err := filepath.Glob(filepath.Join(dir, "episode.*.srt"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("remaining backups = %d, want 3", len(remaining))
	}
	for _, path := range remaining {
		name := filepath.Base(path)
		if name == "episode.2026-08-30T10-00-00.srt" || name == "episode.2026-08-30T10-01-00.srt" {
			t.Errorf("oldest backup %s should have been pruned", name)
		}
	}
}

func TestRetentionUsesLargeFileLimit(t *testing.T) {
	// 200 KiB is over the 150 KiB threshold, so the large-file limit applies.
	manager, dir := newTestManager(t, 50, 2)

	source := writeSubtitle(t, 200*1024)
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		manager.now = func() time.Time { return tick }
		if _, err := manager.Create(source); err != nil {
			t.Fatalf("Create() #%d error: %v", i, err)
		}
	}

	remaining, _ := filepath.Glob(filepath.Join(dir, "episode.*.srt"))
	if len(remaining) != 2 {
		t.Fatalf("remaining backups = %d, want 2", len(remaining))
	}
}

func TestRetentionIgnoresOtherFiles(t *testing.T) {
	manager, dir := newTestManager(t, 1, 25)

	// A backup of a different subtitle and a file with a malformed timestamp
	// must not count against episode.srt's retention.
	otherFiles := []string{
		"movie.2026-08-30T09-00-00.srt",
		"episode.not-a-timestamp.srt",
	}
	for _, name := range otherFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	source := writeSubtitle(t, 100)
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		manager.now = func() time.Time { return tick }
		if _, err := manager.Create(source); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	for _, name := range otherFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("unrelated file %s was removed: %v", name, err)
		}
	}
	remaining, _ := filepath.Glob(filepath.Join(dir, "episode.????-??-??T??-??-??.srt"))
	if len(remaining) != 1 {
		t.Errorf("episode backups = %d, want 1", len(remaining))
	}
}

func TestStats(t *testing.T) {
	manager, dir := newTestManager(t, 50, 25)

	if err := os.WriteFile(filepath.Join(dir, "a.2026-08-30T10-00-00.srt"), []byte(strings.Repeat("x", 100)), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.2026-08-30T10-00-00.srt"), []byte(strings.Repeat("x", 200*1024)), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	stats, err := manager.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.TotalBackups != 2 {
		t.Errorf("TotalBackups = %d, want 2", stats.TotalBackups)
	}
	if stats.SmallFiles != 1 || stats.LargeFiles != 1 {
		t.Errorf("size classes = (%d small, %d large), want (1, 1)", stats.SmallFiles, stats.LargeFiles)
	}
	if stats.TotalBytes != int64(100+200*1024) {
		t.Errorf("TotalBytes = %d", stats.TotalBytes)
	}
}

func TestCleanupEmpty(t *testing.T) {
	manager, dir := newTestManager(t, 50, 25)

	if err := os.WriteFile(filepath.Join(dir, "a.2026-08-30T10-00-00.srt"), nil, 0o644); err != nil {
		t.Fatalf("write empty backup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.2026-08-30T10-00-00.srt"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	removed, err := manager.CleanupEmpty()
	if err != nil {
		t.Fatalf("CleanupEmpty() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.2026-08-30T10-00-00.srt")); !os.IsNotExist(err) {
		t.Error("empty backup still present")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.2026-08-30T10-00-00.srt")); err != nil {
		t.Errorf("non-empty backup removed: %v", err)
	}
}

func TestStatsMissingDirectory(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "absent"), 50, 25, 150, logging.NewNop())
	stats, err := manager.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.TotalBackups != 0 {
		t.Errorf("TotalBackups = %d, want 0", stats.TotalBackups)
	}
}

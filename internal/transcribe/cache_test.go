package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "transcript:missing"); err != nil {
		t.Fatalf("Get() error: %v", err)
	} else if ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := cache.Put(ctx, "transcript:abc", "some spoken words", "en"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	text, ok, err := cache.Get(ctx, "transcript:abc")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok || text != "some spoken words" {
		t.Fatalf("Get() = (%q, %v), want hit", text, ok)
	}

	// overwrite
	if err := cache.Put(ctx, "transcript:abc", "revised words", "en"); err != nil {
		t.Fatalf("Put() overwrite error: %v", err)
	}
	text, _, _ = cache.Get(ctx, "transcript:abc")
	if text != "revised words" {
		t.Fatalf("after overwrite Get() = %q", text)
	}
}

func TestCacheReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	if err := cache.Put(ctx, "transcript:persist", "it survives", ""); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()
	text, ok, err := reopened.Get(ctx, "transcript:persist")
	if err != nil || !ok || text != "it survives" {
		t.Fatalf("Get() after reopen = (%q, %v, %v)", text, ok, err)
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	media := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(media, []byte("fake media"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	base := CacheKey(media, 300, 60, "whisper-1", "en")
	variants := []string{
		CacheKey(media, 360, 60, "whisper-1", "en"),
		CacheKey(media, 300, 90, "whisper-1", "en"),
		CacheKey(media, 300, 60, "other-model", "en"),
		CacheKey(media, 300, 60, "whisper-1", "fr"),
	}
	for i, variant := range variants {
		if variant == base {
			t.Errorf("variant %d produced same key as base", i)
		}
	}

	if again := CacheKey(media, 300, 60, "whisper-1", "en"); again != base {
		t.Error("identical inputs should produce identical keys")
	}
}

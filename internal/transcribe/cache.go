package transcribe

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// cacheSchemaVersion is bumped when the cache layout changes; mismatched
// databases are rejected rather than migrated, the cache is disposable.
const cacheSchemaVersion = 1

const cacheSchemaSQL = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE transcripts (
    cache_key  TEXT PRIMARY KEY,
    text       TEXT NOT NULL,
    language   TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`

// ErrCacheSchemaMismatch indicates the cache database was written by a
// different version; delete it and let it rebuild.
var ErrCacheSchemaMismatch = errors.New("transcript cache schema mismatch")

// Cache stores transcripts keyed by a fingerprint of the source media and
// clip window, backed by SQLite.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the transcript cache database.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "transcripts.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: dbPath}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, cacheSchemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", cacheSchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != cacheSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrCacheSchemaMismatch, version, cacheSchemaVersion, c.path)
	}
	return nil
}

// Get returns the cached transcript for key, if present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := c.db.QueryRowContext(ctx, "SELECT text FROM transcripts WHERE cache_key = ?", key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read transcript: %w", err)
	}
	return text, true, nil
}

// Put stores a transcript under key, replacing any previous value.
func (c *Cache) Put(ctx context.Context, key, text, language string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO transcripts (cache_key, text, language, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET text = excluded.text,
             language = excluded.language, created_at = excluded.created_at`,
		key, text, language, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// CacheKey fingerprints a clip: source identity (path, size, mtime), window,
// model, and language all participate so a re-encoded file or different model
// never reuses a stale transcript.
func CacheKey(source string, startSeconds float64, durationSeconds int, model, language string) string {
	info, err := os.Stat(source)
	size := int64(0)
	mod := int64(0)
	if err == nil {
		size = info.Size()
		mod = info.ModTime().UnixNano()
	}
	raw := strings.Join([]string{
		"transcript_v1",
		source,
		strconv.FormatInt(size, 10),
		strconv.FormatInt(mod, 10),
		strconv.FormatInt(int64(startSeconds*1000), 10),
		strconv.Itoa(durationSeconds),
		strings.ToLower(strings.TrimSpace(model)),
		strings.ToLower(strings.TrimSpace(language)),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return "transcript:" + hex.EncodeToString(sum[:])
}

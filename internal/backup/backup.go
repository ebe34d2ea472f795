// Package backup creates timestamped copies of subtitle files before they are
// modified, and prunes old copies according to a size-based retention policy.
package backup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"subshift/internal/logging"
)

// backupTimeLayout is ISO-8601 to second precision with colons replaced so
// the timestamp is safe in filenames on every platform.
const backupTimeLayout = "2006-01-02T15-04-05"

// Manager writes pre-modification backups into a single directory and keeps
// the newest N copies per file. Small files keep more history than large ones.
type Manager struct {
	dir            string
	smallFileKeep  int
	largeFileKeep  int
	thresholdBytes int64
	now            func() time.Time
	logger         *slog.Logger
}

// NewManager builds a backup manager rooted at dir. sizeThresholdKiB splits
// the retention policy: files under the threshold keep smallFileKeep copies,
// files at or over it keep largeFileKeep.
func NewManager(dir string, smallFileKeep, largeFileKeep, sizeThresholdKiB int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		dir:            dir,
		smallFileKeep:  smallFileKeep,
		largeFileKeep:  largeFileKeep,
		thresholdBytes: int64(sizeThresholdKiB) * 1024,
		now:            time.Now,
		logger:         logging.NewComponentLogger(logger, "backup"),
	}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies path into the backup directory under a timestamped name and
// applies the retention policy. It returns the backup file's path.
func (m *Manager) Create(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file to back up: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backup directory: %w", err)
	}

	backupPath := filepath.Join(m.dir, m.backupName(path))
	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	m.logger.Info("created backup",
		logging.String("file", filepath.Base(path)),
		logging.String("backup", filepath.Base(backupPath)),
	)

	if err := m.applyRetention(path, info.Size()); err != nil {
		m.logger.Warn("backup retention failed", logging.Error(err))
	}
	if removed, err := m.CleanupEmpty(); err != nil {
		m.logger.Warn("empty backup cleanup failed", logging.Error(err))
	} else if removed > 0 {
		m.logger.Debug("removed empty backups", logging.Int("removed", removed))
	}
	return backupPath, nil
}

func (m *Manager) backupName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s.%s%s", stem, m.now().Format(backupTimeLayout), ext)
}

type backupFile struct {
	path    string
	created time.Time
}

// existingBackups lists timestamped backups of path, oldest first. Files in
// the backup directory whose names do not parse are left alone.
func (m *Manager) existingBackups(path string) ([]backupFile, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	pattern := filepath.Join(m.dir, stem+".????-??-??T??-??-??"+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan backup directory: %w", err)
	}

	backups := make([]backupFile, 0, len(matches))
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), ext)
		stamp := strings.TrimPrefix(name, stem+".")
		created, parseErr := time.Parse(backupTimeLayout, stamp)
		if parseErr != nil {
			m.logger.Debug("skipping malformed backup name", logging.String("file", filepath.Base(match)))
			continue
		}
		backups = append(backups, backupFile{path: match, created: created})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].created.Before(backups[j].created)
	})
	return backups, nil
}

func (m *Manager) applyRetention(path string, currentSize int64) error {
	backups, err := m.existingBackups(path)
	if err != nil {
		return err
	}

	keep := m.smallFileKeep
	if currentSize >= m.thresholdBytes {
		keep = m.largeFileKeep
	}
	if keep < 1 || len(backups) <= keep {
		return nil
	}

	removed := 0
	for _, old := range backups[:len(backups)-keep] {
		if err := os.Remove(old.path); err != nil {
			m.logger.Warn("could not remove old backup",
				logging.String("file", filepath.Base(old.path)),
				logging.Error(err),
			)
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Info("pruned old backups", logging.Int("removed", removed))
	}
	return nil
}

// Stats summarizes the backup directory contents.
type Stats struct {
	TotalBackups int
	TotalBytes   int64
	SmallFiles   int
	LargeFiles   int
}

// Stats walks the backup directory and counts backups by size class.
func (m *Manager) Stats() (Stats, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("read backup directory: %w", err)
	}

	var stats Stats
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		stats.TotalBackups++
		stats.TotalBytes += info.Size()
		if info.Size() < m.thresholdBytes {
			stats.SmallFiles++
		} else {
			stats.LargeFiles++
		}
	}
	return stats, nil
}

// CleanupEmpty removes zero-byte backup files, which only appear after an
// interrupted copy. Returns how many were removed.
func (m *Manager) CleanupEmpty() (int, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil || info.Size() != 0 {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
			m.logger.Warn("could not remove empty backup",
				logging.String("file", entry.Name()),
				logging.Error(err),
			)
			continue
		}
		removed++
	}
	return removed, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backup writes a timestamped copy of the database file next to the
// original and returns its path. Pending WAL writes are checkpointed first
// so the copy is complete. Must not run concurrently with an in-flight
// reconciliation from the same process; safe between runs.
func (s *Store) Backup() (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if s.path == ":memory:" {
		return "", ErrBackupSourceMissing
	}

	// Flush pending WAL writes into the main database file before copying.
	// The pragma returns a (busy, log, checkpointed) row.
	var busy, logFrames, checkpointed int
	if err := s.db.QueryRow("PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &logFrames, &checkpointed); err != nil {
		return "", fmt.Errorf("checkpoint: %w", err)
	}

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrBackupSourceMissing
		}
		return "", fmt.Errorf("stat db file: %w", err)
	}

	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(s.path, ext)
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format(time.RFC3339))
	dest := fmt.Sprintf("%s.backup-%s%s", base, stamp, ext)

	if err := copyFile(s.path, dest); err != nil {
		return "", fmt.Errorf("copy db file: %w", err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

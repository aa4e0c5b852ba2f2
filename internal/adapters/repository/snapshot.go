package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halden/reelrank/internal/domain/session"
	"github.com/halden/reelrank/pkg/logger"
	"github.com/halden/reelrank/pkg/metrics"
)

// SanitizeSnapshotName rewrites name to a safe identifier: only alphanumerics,
// '_' and '-' survive, runs of anything else collapse to a single '_', and
// leading/trailing separators are trimmed. An empty result means the caller
// must substitute a generated name.
func SanitizeSnapshotName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			pendingSep = false
		default:
			if !pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = true
		}
	}
	return strings.Trim(b.String(), "_-")
}

// generatedSnapshotName derives a default snapshot id from the current time,
// with a short random suffix to dodge same-second collisions.
func generatedSnapshotName() string {
	return fmt.Sprintf("snap-%s-%s", time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// CreateSnapshot copies the live artifacts into a new snapshot directory.
// Snapshots are immutable once created; a name collision is a conflict, not
// an overwrite.
func (s *FileStore) CreateSnapshot(ctx context.Context, name string) (SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := SanitizeSnapshotName(name)
	if id == "" {
		id = generatedSnapshotName()
	}

	if _, err := os.Stat(s.statePath()); errors.Is(err, fs.ErrNotExist) {
		return SnapshotInfo{}, ErrNoSession
	}

	dest := filepath.Join(s.snapshotRoot(), id)
	if _, err := os.Stat(dest); err == nil {
		return SnapshotInfo{}, fmt.Errorf("%w: %s", ErrSnapshotExists, id)
	}
	if err := os.MkdirAll(dest, dirPerm); err != nil {
		return SnapshotInfo{}, fmt.Errorf("create snapshot dir: %w", err)
	}

	if err := copyFile(s.statePath(), filepath.Join(dest, s.stateFile)); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot session artifact: %w", err)
	}
	// Swipe state, movie list, and posters are captured when present; the
	// session artifact alone is the required core.
	if err := copyFileIfExists(s.swipePath(), filepath.Join(dest, s.swipeFile)); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot swipe artifact: %w", err)
	}
	if err := copyFileIfExists(s.moviePath(), filepath.Join(dest, s.movieCSV)); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot movie list: %w", err)
	}
	if err := copyDirIfExists(s.posterPath(), filepath.Join(dest, s.posterDir)); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot posters: %w", err)
	}

	s.logInfo(ctx, "snapshot created", logger.String("name", id))
	metrics.RecordSnapshotCreated()
	return SnapshotInfo{Name: id, CreatedAt: time.Now()}, nil
}

// LoadSnapshot overwrites the live artifacts with the named snapshot's copies
// and returns the freshly normalized session. Poster assets are fully
// replaced, never merged: the live directory is cleared first.
func (s *FileStore) LoadSnapshot(ctx context.Context, name string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := SanitizeSnapshotName(name)
	if id == "" {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	src := filepath.Join(s.snapshotRoot(), id)
	srcState := filepath.Join(src, s.stateFile)
	if _, err := os.Stat(srcState); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	if err := copyFile(srcState, s.statePath()); err != nil {
		return nil, fmt.Errorf("restore session artifact: %w", err)
	}
	if err := copyFileIfExists(filepath.Join(src, s.swipeFile), s.swipePath()); err != nil {
		return nil, fmt.Errorf("restore swipe artifact: %w", err)
	}
	if err := copyFileIfExists(filepath.Join(src, s.movieCSV), s.moviePath()); err != nil {
		return nil, fmt.Errorf("restore movie list: %w", err)
	}

	s.clearPostersLocked(ctx)
	if err := copyDirIfExists(filepath.Join(src, s.posterDir), s.posterPath()); err != nil {
		return nil, fmt.Errorf("restore posters: %w", err)
	}

	s.logInfo(ctx, "snapshot loaded", logger.String("name", id))
	metrics.RecordSnapshotLoaded()
	return s.loadSessionLocked()
}

// ListSnapshots returns known snapshots ordered newest first by directory
// modification time, ties broken by name.
func (s *FileStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.snapshotRoot())
	if errors.Is(err, fs.ErrNotExist) {
		return []SnapshotInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, SnapshotInfo{Name: entry.Name(), CreatedAt: fi.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
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
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyFileIfExists(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return copyFile(src, dst)
}

// copyDirIfExists copies the regular files of src into dst, creating dst.
// Poster directories are flat; nested directories are skipped.
func copyDirIfExists(src, dst string) error {
	entries, err := os.ReadDir(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, dirPerm); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/rating"
	"github.com/halden/reelrank/internal/domain/session"
	"github.com/halden/reelrank/internal/domain/swipe"
	"github.com/halden/reelrank/pkg/logger"
	"github.com/halden/reelrank/pkg/metrics"
)

// Default artifact layout within the data directory.
const (
	defaultDataDir     = "data"
	defaultStateFile   = "state.json"
	defaultSwipeFile   = "swipe_state.json"
	defaultSnapshotDir = "snapshots"
	defaultPosterDir   = "images"
	defaultMovieCSV    = "movies.csv"
	defaultPersons     = 1

	dirPerm = 0o755
)

// FileStore implements Store over JSON file artifacts. A single RWMutex
// serializes writers; the store is designed for one logical writer per
// session, not for multi-process mutation.
type FileStore struct {
	mu sync.RWMutex

	dataDir     string
	stateFile   string
	swipeFile   string
	snapshotDir string
	posterDir   string
	movieCSV    string

	ratingDefaults rating.Config
	personCount    int

	logger logger.Logger
}

// NewFileStore creates a file-backed session store with configuration options.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		dataDir:        defaultDataDir,
		stateFile:      defaultStateFile,
		swipeFile:      defaultSwipeFile,
		snapshotDir:    defaultSnapshotDir,
		posterDir:      defaultPosterDir,
		movieCSV:       defaultMovieCSV,
		ratingDefaults: rating.DefaultConfig(),
		personCount:    defaultPersons,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) statePath() string    { return filepath.Join(s.dataDir, s.stateFile) }
func (s *FileStore) swipePath() string    { return filepath.Join(s.dataDir, s.swipeFile) }
func (s *FileStore) snapshotRoot() string { return filepath.Join(s.dataDir, s.snapshotDir) }
func (s *FileStore) posterPath() string   { return filepath.Join(s.dataDir, s.posterDir) }
func (s *FileStore) moviePath() string    { return filepath.Join(s.dataDir, s.movieCSV) }

// Bootstrap prepares the artifact directories and writes an empty swipe state
// if none exists, mirroring the behavior expected at server startup.
func (s *FileStore) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dir := range []string{s.dataDir, s.posterPath(), s.snapshotRoot()} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("prepare %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(s.swipePath()); errors.Is(err, fs.ErrNotExist) {
		if err := writeFileAtomic(s.swipePath(), swipe.Empty()); err != nil {
			return fmt.Errorf("bootstrap swipe state: %w", err)
		}
		s.logInfo(ctx, "bootstrapped empty swipe state", logger.String("path", s.swipePath()))
	}
	return nil
}

// LoadSession returns the normalized live session.
func (s *FileStore) LoadSession(ctx context.Context) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadSessionLocked()
}

// UpdateSession runs one load-normalize-mutate-save unit under the write
// lock. If save fails the caller must re-load to get ground truth; the
// returned session is only valid on nil error.
func (s *FileStore) UpdateSession(ctx context.Context, fn func(*session.Session) error) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSessionLocked()
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	// Re-normalize so derived state (coverage, rater buckets) reflects the
	// mutation before it hits disk.
	sess = session.Normalize(sess, s.ratingDefaults, s.personCount)
	if err := s.saveSessionLocked(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ReplaceSession overwrites the live session wholesale.
func (s *FileStore) ReplaceSession(ctx context.Context, sess *session.Session) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess = session.Normalize(sess, s.ratingDefaults, s.personCount)
	if err := s.saveSessionLocked(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// LoadSwipeState returns the live swipe state with progress ensured for
// every registered person.
func (s *FileStore) LoadSwipeState(ctx context.Context) (*swipe.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadSwipeLocked()
}

// UpdateSwipeState runs one load-mutate-save unit over the swipe artifact.
func (s *FileStore) UpdateSwipeState(ctx context.Context, fn func(*swipe.State) error) (*swipe.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSwipeLocked()
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.swipePath(), st); err != nil {
		return nil, fmt.Errorf("save swipe state: %w", err)
	}
	return st, nil
}

// ReplaceSwipeState overwrites the live swipe state wholesale.
func (s *FileStore) ReplaceSwipeState(ctx context.Context, st *swipe.State) (*swipe.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st == nil {
		st = swipe.Empty()
	}
	swipe.EnsureProgress(st)
	if err := writeFileAtomic(s.swipePath(), st); err != nil {
		return nil, fmt.Errorf("save swipe state: %w", err)
	}
	return st, nil
}

// WriteMovieList exports the display titles as a one-column CSV, the same
// artifact the original list generation produced.
func (s *FileStore) WriteMovieList(ctx context.Context, items []item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.moviePath())
	if err != nil {
		return fmt.Errorf("create movie list: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"title"}); err != nil {
		return fmt.Errorf("write movie list header: %w", err)
	}
	for _, it := range items {
		title := it.Display
		if title == "" {
			title = it.Title
		}
		if err := w.Write([]string{title}); err != nil {
			return fmt.Errorf("write movie list row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush movie list: %w", err)
	}
	return nil
}

// ClearPosters empties the poster directory. Failures must not block a
// ranking action from completing, so they are logged and swallowed.
func (s *FileStore) ClearPosters(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPostersLocked(ctx)
}

func (s *FileStore) clearPostersLocked(ctx context.Context) {
	dir := s.posterPath()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logWarn(ctx, "reading poster dir failed", logger.String("dir", dir), logger.Error(err))
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			s.logWarn(ctx, "removing poster failed", logger.String("name", entry.Name()), logger.Error(err))
		}
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		s.logWarn(ctx, "recreating poster dir failed", logger.String("dir", dir), logger.Error(err))
	}
}

// loadSessionLocked reads and normalizes the live session artifact. Callers
// hold at least the read lock.
func (s *FileStore) loadSessionLocked() (*session.Session, error) {
	data, err := os.ReadFile(s.statePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session artifact: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session artifact: %w", err)
	}
	return session.Normalize(&sess, s.ratingDefaults, s.personCount), nil
}

// saveSessionLocked persists the session. Callers hold the write lock.
func (s *FileStore) saveSessionLocked(sess *session.Session) error {
	start := time.Now()
	if err := writeFileAtomic(s.statePath(), sess); err != nil {
		metrics.RecordSessionSaveError()
		return fmt.Errorf("save session: %w", err)
	}
	metrics.RecordSessionSave(float64(time.Since(start).Milliseconds()))
	metrics.UpdateItemCount(len(sess.Movies))
	metrics.UpdateTotalVotes(sess.TotalVotes)
	metrics.UpdateCoverageRatio(sess.Coverage.Global.Ratio)
	return nil
}

func (s *FileStore) loadSwipeLocked() (*swipe.State, error) {
	data, err := os.ReadFile(s.swipePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSwipeState
	}
	if err != nil {
		return nil, fmt.Errorf("read swipe artifact: %w", err)
	}
	var st swipe.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode swipe artifact: %w", err)
	}
	swipe.EnsureProgress(&st)
	return &st, nil
}

// writeFileAtomic marshals v and replaces path via a temp file rename so a
// crashed write never leaves a truncated artifact behind.
func writeFileAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func (s *FileStore) logInfo(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Info(ctx, msg, fields...)
	}
}

func (s *FileStore) logWarn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.logger != nil {
		s.logger.Warn(ctx, msg, fields...)
	}
}

package cardcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"ydkpoints/internal/fileutil"
)

const (
	fileFormatVersion = 1
	lockRetryDelay    = 50 * time.Millisecond
)

type fileDocument struct {
	FormatVersion int `json:"format_version"`
	Snapshot
}

// FileBackend stores the snapshot as a JSON document. Access from separate
// processes is serialized through a lock file next to it.
type FileBackend struct {
	path string
	lock *flock.Flock
}

// NewFileBackend returns a backend for the document at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, lock: flock.New(path + ".lock")}
}

// Describe implements Backend.
func (b *FileBackend) Describe() string {
	return "json:" + b.path
}

// Load implements Backend. A missing document is an empty snapshot.
func (b *FileBackend) Load(ctx context.Context) (Snapshot, error) {
	if _, err := os.Stat(filepath.Dir(b.path)); errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err := b.acquire(ctx, false); err != nil {
		return Snapshot{}, err
	}
	defer b.lock.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return Snapshot{}, nil
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("parse cache file: %w", err)
	}
	if doc.FormatVersion != fileFormatVersion {
		return Snapshot{}, fmt.Errorf("unsupported cache format %d", doc.FormatVersion)
	}
	return doc.Snapshot, nil
}

// Save implements Backend by writing a temp file and renaming it into place.
func (b *FileBackend) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(fileDocument{FormatVersion: fileFormatVersion, Snapshot: snap}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := b.acquire(ctx, true); err != nil {
		return err
	}
	defer b.lock.Unlock()

	if err := fileutil.WriteAtomic(b.path, data, 0o644); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// Remove implements Backend.
func (b *FileBackend) Remove(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := b.acquire(ctx, true); err != nil {
		return err
	}
	defer b.lock.Unlock()
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) acquire(ctx context.Context, exclusive bool) error {
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = b.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = b.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache file: %s busy", b.path)
	}
	return nil
}

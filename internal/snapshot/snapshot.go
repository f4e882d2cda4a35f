// Package snapshot persists the last known statuses of regions.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/region"
)

// FileStore is a snapshot store backed by a JSON file.
type FileStore struct {
	path string
}

// NewFileStore makes a FileStore for the path.
// The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns path to the snapshot file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the last saved snapshot.
// It returns an empty snapshot if the file does not exist yet.
func (s *FileStore) Load(ctx context.Context) (region.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return region.Snapshot{}, nil
	} else if err != nil {
		return nil, cferr.New(cferr.ErrPersist, err, "failed to read snapshot")
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return region.Snapshot{}, nil
	}

	var snap region.Snapshot
	if err := json.UnmarshalContext(ctx, raw, &snap); err != nil {
		return nil, cferr.New(cferr.ErrPersist, err, "failed to parse snapshot %s", s.path)
	}
	if snap == nil {
		snap = region.Snapshot{}
	}

	return snap, nil
}

// Save replaces the snapshot file with snap.
//
// The new content is written to a temporary file in the same directory and then renamed, so the old file stays intact if it fails halfway.
func (s *FileStore) Save(_ context.Context, snap region.Snapshot) error {
	if snap == nil {
		snap = region.Snapshot{}
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return cferr.New(cferr.ErrPersist, err, "failed to encode snapshot")
	}
	raw = append(raw, '\n')

	dir, name := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return cferr.New(cferr.ErrPersist, err, "failed to create temporary file")
	}
	tmp := f.Name()

	cleanup := func(err error, message string) error {
		f.Close()
		os.Remove(tmp)
		return cferr.New(cferr.ErrPersist, err, message)
	}

	if _, err := f.Write(raw); err != nil {
		return cleanup(err, "failed to write snapshot")
	}
	if err := f.Sync(); err != nil {
		return cleanup(err, "failed to sync snapshot")
	}
	if err := f.Chmod(0644); err != nil {
		return cleanup(err, "failed to set permission of snapshot")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return cferr.New(cferr.ErrPersist, err, "failed to close snapshot")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return cferr.New(cferr.ErrPersist, err, "failed to replace snapshot")
	}

	return nil
}

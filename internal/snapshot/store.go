// Package snapshot persists fitted models so a restarted process can skip refitting.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gcbaptista/go-skillmatch/internal/persistence"
	"github.com/gcbaptista/go-skillmatch/internal/vectorize"
)

// ErrNotFound is returned by Load when no snapshot exists for a fingerprint.
var ErrNotFound = errors.New("snapshot not found")

// Store saves and loads fitted models keyed by corpus fingerprint.
type Store interface {
	Load(ctx context.Context, fingerprint string) (*vectorize.Model, error)
	Save(ctx context.Context, m *vectorize.Model) error
}

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

// validateFingerprint keeps fingerprints usable as file names and cache keys.
func validateFingerprint(fingerprint string) error {
	if !fingerprintPattern.MatchString(fingerprint) {
		return fmt.Errorf("invalid model fingerprint %q", fingerprint)
	}
	return nil
}

// FileStore keeps one gob file per model in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(fingerprint string) string {
	return filepath.Join(s.dir, "model-"+fingerprint+".gob")
}

// Load reads the model for fingerprint.
func (s *FileStore) Load(ctx context.Context, fingerprint string) (*vectorize.Model, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &vectorize.Model{}
	if err := persistence.LoadGob(s.path(fingerprint), m); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.Fingerprint() != fingerprint {
		return nil, fmt.Errorf("snapshot %s holds model %s", s.path(fingerprint), m.Fingerprint())
	}
	return m, nil
}

// Save writes m, replacing any previous snapshot of the same fingerprint.
func (s *FileStore) Save(ctx context.Context, m *vectorize.Model) error {
	if err := validateFingerprint(m.Fingerprint()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return persistence.SaveGob(s.path(m.Fingerprint()), m)
}

package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gcbaptista/go-skillmatch/internal/errors"
)

// Source is a tabular dataset of job postings.
// Identity must change whenever the content may have changed; the loader
// caches corpora by identity.
type Source interface {
	Identity() (string, error)
	Open() (io.ReadCloser, error)
}

// FileSource reads a CSV file from disk. Its identity combines the absolute
// path with the file size and modification time, so an edited file is re-read.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

func (s FileSource) Identity() (string, error) {
	absPath, err := filepath.Abs(s.Path)
	if err != nil {
		return "", errors.NewDataSourceError(s.Path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", errors.NewDataSourceError(s.Path, err)
	}
	if info.IsDir() {
		return "", errors.NewDataSourceError(s.Path, fmt.Errorf("path is a directory"))
	}
	return fmt.Sprintf("file:%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano()), nil
}

func (s FileSource) Open() (io.ReadCloser, error) {
	file, err := os.Open(s.Path) // #nosec G304 -- path comes from application config
	if err != nil {
		return nil, errors.NewDataSourceError(s.Path, err)
	}
	return file, nil
}

func (s FileSource) String() string {
	return s.Path
}

// ReaderSource serves a dataset from any io.Reader under a caller-chosen
// identity, e.g. an uploaded file or a test fixture. The reader is consumed by
// the first Open; the loader cache keeps the parsed corpus afterwards.
type ReaderSource struct {
	ID     string
	Reader io.Reader
}

// NewReaderSource creates a ReaderSource.
func NewReaderSource(id string, r io.Reader) ReaderSource {
	return ReaderSource{ID: id, Reader: r}
}

func (s ReaderSource) Identity() (string, error) {
	if s.ID == "" {
		return "", errors.NewDataSourceError("<reader>", fmt.Errorf("source identity is empty"))
	}
	return "reader:" + s.ID, nil
}

func (s ReaderSource) Open() (io.ReadCloser, error) {
	if s.Reader == nil {
		return nil, errors.NewDataSourceError(s.ID, fmt.Errorf("no reader"))
	}
	if rc, ok := s.Reader.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.Reader), nil
}

func (s ReaderSource) String() string {
	return s.ID
}

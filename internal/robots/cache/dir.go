package cache

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/robotx/pkg/failure"
	"github.com/rohmanhakim/robotx/pkg/fileutil"
)

// DirStore keeps each entry as a regular file below a root directory.
// The root is chosen by the embedder; DirStore creates subordinate
// directories for a key on write but never removes anything.
//
// Entry timestamps are the files' modification times.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) Stat(key string) (Entry, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return Entry{}, false, err
	}

	info, statErr := os.Stat(path)
	if errors.Is(statErr, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if statErr != nil {
		return Entry{}, false, &StoreError{
			Message:   statErr.Error(),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
			Key:       key,
		}
	}
	if info.IsDir() {
		return Entry{}, false, &StoreError{
			Message:   "entry path is a directory",
			Retryable: false,
			Cause:     ErrCauseReadFailure,
			Key:       key,
		}
	}

	return Entry{
		Key:      key,
		Location: path,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, true, nil
}

func (s *DirStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, openErr := os.Open(path)
	if errors.Is(openErr, fs.ErrNotExist) {
		return nil, &StoreError{
			Message:   openErr.Error(),
			Retryable: false,
			Cause:     ErrCauseNotFound,
			Key:       key,
		}
	}
	if openErr != nil {
		return nil, &StoreError{
			Message:   openErr.Error(),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
			Key:       key,
		}
	}
	return f, nil
}

// Write streams r into a temporary sibling file and renames it over the entry.
func (s *DirStore) Write(key string, r io.Reader) (Entry, error) {
	path, err := s.path(key)
	if err != nil {
		return Entry{}, err
	}

	if _, writeErr := fileutil.WriteFileAtomic(path, r); writeErr != nil {
		return Entry{}, &StoreError{
			Message:   writeErr.Error(),
			Retryable: failure.IsRecoverable(writeErr),
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		}
	}

	entry, found, statErr := s.Stat(key)
	if statErr != nil {
		return Entry{}, statErr
	}
	if !found {
		return Entry{}, &StoreError{
			Message:   "entry vanished after write",
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		}
	}
	return entry, nil
}

// path maps a slash-separated key below the root, rejecting keys that are
// absolute or that climb out of the root.
func (s *DirStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", &StoreError{Message: "key must be a relative path", Cause: ErrCauseInvalidKey, Key: key}
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", &StoreError{Message: "key has an empty or relative segment", Cause: ErrCauseInvalidKey, Key: key}
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

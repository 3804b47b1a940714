package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rohmanhakim/robotx/pkg/failure"
)

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	fullDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// WriteFileAtomic streams r into a temporary file next to target and renames it
// over target once every byte has been written and flushed.
// Readers of target observe either the previous content or the new content, never a mix.
// On failure the temporary file is removed and target is left untouched.
func WriteFileAtomic(target string, r io.Reader) (int64, failure.ClassifiedError) {
	dir := filepath.Dir(target)
	if err := EnsureDir(dir); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return 0, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseCreateFailure,
		}
	}
	tmpName := tmp.Name()

	written, copyErr := io.Copy(tmp, r)
	if copyErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return written, &FileError{
			Message:   fmt.Sprintf("%v", copyErr),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return written, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return written, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return written, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseRenameFailure,
		}
	}

	return written, nil
}

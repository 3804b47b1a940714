package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/robotx/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError     FileErrorCause = "path error"
	ErrCauseCreateFailure FileErrorCause = "create failure"
	ErrCauseWriteFailure  FileErrorCause = "write failure"
	ErrCauseRenameFailure FileErrorCause = "rename failure"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

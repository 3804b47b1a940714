package cache

import (
	"fmt"

	"github.com/rohmanhakim/robotx/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseInvalidKey   StoreErrorCause = "invalid key"
	ErrCauseNotFound     StoreErrorCause = "entry not found"
	ErrCauseReadFailure  StoreErrorCause = "read failure"
	ErrCauseWriteFailure StoreErrorCause = "write failure"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	Key       string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache store error: %s (%s): %s", e.Cause, e.Key, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

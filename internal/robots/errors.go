package robots

import (
	"fmt"

	"github.com/rohmanhakim/robotx/internal/metadata"
	"github.com/rohmanhakim/robotx/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCausePreFetchFailure  RobotsErrorCause = "pre-fetch failure"
	ErrCauseHttpFetchFailure RobotsErrorCause = "http fetch failure"
	ErrCauseHttpStatus       RobotsErrorCause = "unexpected http status"
	ErrCauseEmptyStream      RobotsErrorCause = "stream source returned no stream"
	ErrCauseCacheRefresh     RobotsErrorCause = "cache refresh failure"
	ErrCauseCacheRead        RobotsErrorCause = "cache read failure"
	ErrCauseParseError       RobotsErrorCause = "parse error"
)

type RobotsError struct {
	Message   string
	Retryable bool
	Cause     RobotsErrorCause
	// StatusCode is set when the failure came from an HTTP response.
	StatusCode int
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RobotsError) IsRetryable() bool {
	return e.Retryable
}

// mapRobotsErrorToMetadataCause maps robots-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRobotsErrorToMetadataCause(err *RobotsError) metadata.ErrorCause {
	if err == nil {
		return metadata.CauseUnknown
	}
	switch err.Cause {
	case ErrCausePreFetchFailure, ErrCauseHttpFetchFailure, ErrCauseHttpStatus, ErrCauseEmptyStream:
		return metadata.CauseNetworkFailure
	case ErrCauseCacheRefresh, ErrCauseCacheRead:
		return metadata.CauseStorageFailure
	case ErrCauseParseError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}

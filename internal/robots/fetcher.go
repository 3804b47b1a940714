package robots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/robotx/internal/metadata"
	"github.com/rohmanhakim/robotx/pkg/failure"
	"github.com/rohmanhakim/robotx/pkg/retry"
)

/*
StreamSource

Responsibilities:
- Open a readable byte stream for a declaration address
- Report failure as an error; never interpret the content

Sources do not parse, cache or decide. The caller owns the returned
stream and must close it.
*/
type StreamSource interface {
	Open(ctx context.Context, address url.URL) (io.ReadCloser, error)
}

// StreamSourceFunc adapts an ordinary function to a StreamSource.
type StreamSourceFunc func(ctx context.Context, address url.URL) (io.ReadCloser, error)

func (f StreamSourceFunc) Open(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	return f(ctx, address)
}

// maxDeclarationSize caps how much of a declaration body is read.
// Bytes past the cap are dropped.
const maxDeclarationSize = 500 * 1024

// HTTPSource fetches declarations with net/http.
type HTTPSource struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
}

// NewHTTPSource creates an HTTPSource whose client gives up after timeout.
func NewHTTPSource(
	metadataSink metadata.MetadataSink,
	userAgent string,
	timeout time.Duration,
) *HTTPSource {
	return NewHTTPSourceWithClient(metadataSink, userAgent, &http.Client{Timeout: timeout})
}

// NewHTTPSourceWithClient creates an HTTPSource with a custom HTTP client.
// This is useful for testing.
func NewHTTPSourceWithClient(
	metadataSink metadata.MetadataSink,
	userAgent string,
	httpClient *http.Client,
) *HTTPSource {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &HTTPSource{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		userAgent:    userAgent,
	}
}

func (s *HTTPSource) UserAgent() string {
	return s.userAgent
}

func (s *HTTPSource) HttpClient() *http.Client {
	return s.httpClient
}

// Open issues a GET for address. Any status outside 2xx is a failure;
// 429 and 5xx are marked retryable.
func (s *HTTPSource) Open(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address.String(), nil)
	if err != nil {
		return nil, &RobotsError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCausePreFetchFailure,
		}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.metadataSink.RecordFetch(address.String(), 0, time.Since(start), "", 1)
		return nil, &RobotsError{
			Message:   fmt.Sprintf("failed to fetch robots.txt: %v", err),
			Retryable: true,
			Cause:     ErrCauseHttpFetchFailure,
		}
	}
	s.metadataSink.RecordFetch(
		address.String(),
		resp.StatusCode,
		time.Since(start),
		resp.Header.Get("Content-Type"),
		1,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &RobotsError{
			Message:    fmt.Sprintf("unexpected status code %d for %s", resp.StatusCode, address.String()),
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Cause:      ErrCauseHttpStatus,
			StatusCode: resp.StatusCode,
		}
	}

	return limitedBody{
		Reader: io.LimitReader(resp.Body, maxDeclarationSize),
		Closer: resp.Body,
	}, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

// RetryingSource retries a StreamSource while its failures are retryable.
type RetryingSource struct {
	source     StreamSource
	retryParam retry.RetryParam
}

func NewRetryingSource(source StreamSource, retryParam retry.RetryParam) *RetryingSource {
	return &RetryingSource{
		source:     source,
		retryParam: retryParam,
	}
}

func (s *RetryingSource) Open(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	result := retry.Retry(ctx, s.retryParam, func() (io.ReadCloser, failure.ClassifiedError) {
		stream, err := s.source.Open(ctx, address)
		if err != nil {
			return nil, classifySourceError(err)
		}
		return stream, nil
	})
	if result.IsFailure() {
		return nil, result.Err()
	}
	return result.Value(), nil
}

// classifySourceError keeps classified errors as they are. Anything else
// is an unclassified transport failure and may be retried.
func classifySourceError(err error) failure.ClassifiedError {
	var classified failure.ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	return &RobotsError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseHttpFetchFailure,
	}
}

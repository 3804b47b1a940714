package robots_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/robotx/internal/metadata"
)

// recordingSink is a metadata.MetadataSink that keeps what it was given.
type recordingSink struct {
	mu        sync.Mutex
	errors    []recordedError
	fetches   []string
	artifacts []recordedArtifact
}

type recordedError struct {
	action string
	cause  metadata.ErrorCause
}

type recordedArtifact struct {
	kind  metadata.ArtifactKind
	path  string
	attrs []metadata.Attribute
}

func (s *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, recordedError{action: action, cause: cause})
}

func (s *recordingSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	attempts int,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, fetchUrl)
}

func (s *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, recordedArtifact{kind: kind, path: path, attrs: attrs})
}

func (s *recordingSink) errorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}

func (s *recordingSink) artifactList() []recordedArtifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedArtifact(nil), s.artifacts...)
}

// countingSource serves a fixed declaration body and counts opens.
type countingSource struct {
	mu      sync.Mutex
	body    string
	fail    bool
	opens   atomic.Int32
	lastURL url.URL
	delay   time.Duration
}

var errSourceDown = errors.New("source down")

func newCountingSource(body string) *countingSource {
	return &countingSource{body: body}
}

func (s *countingSource) Open(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	s.opens.Add(1)
	s.mu.Lock()
	s.lastURL = address
	body, fail, delay := s.body, s.fail, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, errSourceDown
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (s *countingSource) setBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *countingSource) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *countingSource) openCount() int {
	return int(s.opens.Load())
}

func (s *countingSource) address() url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// closeTracker records whether Close was called on a stream.
type closeTracker struct {
	io.Reader
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

func trackedStream(body string) *closeTracker {
	return &closeTracker{Reader: strings.NewReader(body)}
}

// fakeClock is a settable clock shared between stores and engines.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", raw, err)
	}
	return *u
}

package robots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/rohmanhakim/robotx/internal/metadata"
	"github.com/rohmanhakim/robotx/internal/robots/cache"
	"github.com/rohmanhakim/robotx/pkg/timeutil"
)

/*
Responsibilities

- Derive the declaration address for a target URL
- Retrieve the declaration, through the cache when one is configured
- Select the group for an agent and answer allow / crawl-delay queries

Every query fails open: retrieval and parse problems are recorded to the
metadata sink and the target is treated as having no declaration.
*/

type Engine struct {
	source       StreamSource
	cache        *DeclarationCache
	metadataSink metadata.MetadataSink
	now          func() time.Time
}

type engineOptions struct {
	store        cache.Store
	expiry       time.Duration
	now          func() time.Time
	metadataSink metadata.MetadataSink
}

type Option func(*engineOptions)

// WithCache routes retrieval through store.
func WithCache(store cache.Store) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithCacheDir caches declarations as files below dir. An empty dir
// disables caching.
func WithCacheDir(dir string) Option {
	return func(o *engineOptions) {
		if dir == "" {
			o.store = nil
			return
		}
		o.store = cache.NewDirStore(dir)
	}
}

func WithExpiry(expiry time.Duration) Option {
	return func(o *engineOptions) {
		o.expiry = expiry
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.now = now
	}
}

func WithMetadataSink(metadataSink metadata.MetadataSink) Option {
	return func(o *engineOptions) {
		o.metadataSink = metadataSink
	}
}

// NewEngine builds an Engine reading declarations from source.
// It panics when source is nil.
func NewEngine(source StreamSource, opts ...Option) *Engine {
	if source == nil {
		panic("robots: NewEngine called with nil StreamSource")
	}

	options := engineOptions{
		expiry:       DefaultExpiry,
		now:          time.Now,
		metadataSink: &metadata.NoopSink{},
	}
	for _, opt := range opts {
		opt(&options)
	}

	engine := &Engine{
		source:       source,
		metadataSink: options.metadataSink,
		now:          options.now,
	}
	if options.store != nil {
		engine.cache = NewDeclarationCache(options.store, source, options.metadataSink).
			WithExpiry(options.expiry).
			WithClock(options.now)
	}
	return engine
}

// Get returns the groups of the declaration governing target. ok is false
// when the scheme is unsupported or the declaration could not be retrieved.
// The caller must exhaust or Close the iterator.
func (e *Engine) Get(ctx context.Context, target url.URL) (*GroupIterator, bool) {
	address, ok := DeclarationAddress(target)
	if !ok {
		return nil, false
	}

	stream, err := e.open(ctx, address)
	if err != nil {
		e.recordError("Engine.Get", target, err)
		return nil, false
	}
	return Parse(stream), true
}

// open reads through the cache and falls back to the source when the
// cache has nothing to serve.
func (e *Engine) open(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	if e.cache != nil {
		if stream, err := e.cache.Fetch(ctx, address); err == nil {
			return stream, nil
		}
	}

	stream, err := e.source.Open(ctx, address)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, &RobotsError{
			Message:   fmt.Sprintf("stream source returned nothing for %s", address.String()),
			Retryable: false,
			Cause:     ErrCauseEmptyStream,
		}
	}
	return stream, nil
}

// Select returns the group governing agent on target's site: the first
// group naming the agent, otherwise the default group.
func (e *Engine) Select(ctx context.Context, target url.URL, agent string) (*RuleGroup, bool) {
	group, _ := e.resolve(ctx, target, agent)
	return group, group != nil
}

// resolve is Select that also reports whether a declaration was read.
func (e *Engine) resolve(ctx context.Context, target url.URL, agent string) (*RuleGroup, bool) {
	groups, ok := e.Get(ctx, target)
	if !ok {
		return nil, false
	}
	group := selectGroup(groups, agent)
	if err := groups.Err(); err != nil {
		e.recordError("Engine.Select", target, err)
	}
	return group, true
}

// Allows reports whether agent may fetch target.
func (e *Engine) Allows(ctx context.Context, target url.URL, agent string) bool {
	return e.Decide(ctx, target, agent).Allowed
}

// CrawlDelay returns the delay in seconds agent should keep between
// requests to target's site, 0 when none applies.
func (e *Engine) CrawlDelay(ctx context.Context, target url.URL, agent string) int {
	group, ok := e.Select(ctx, target, agent)
	if !ok {
		return 0
	}
	return group.CrawlDelay()
}

// Decide answers Allows together with the reason and the crawl delay.
func (e *Engine) Decide(ctx context.Context, target url.URL, agent string) Decision {
	if !IsSupportedScheme(target.Scheme) {
		return Decision{Url: target, Allowed: true, Reason: UnsupportedScheme}
	}
	if isDeclarationResource(target) {
		return Decision{Url: target, Allowed: true, Reason: DeclarationResource}
	}

	group, found := e.resolve(ctx, target, agent)
	if !found {
		return Decision{Url: target, Allowed: true, Reason: NoDeclaration}
	}
	if group == nil {
		return Decision{Url: target, Allowed: true, Reason: UserAgentNotMatched}
	}

	decision := Decision{Url: target, Allowed: true, Reason: AllowedByRobots}
	if !group.Allows(requestPath(target)) {
		decision.Allowed = false
		decision.Reason = DisallowedByRobots
	}
	if group.HasCrawlDelay() {
		decision.CrawlDelay = timeutil.DurationPtr(time.Duration(group.CrawlDelay()) * time.Second)
	}
	return decision
}

func (e *Engine) recordError(action string, target url.URL, err error) {
	var robotsError *RobotsError
	cause := metadata.CauseUnknown
	if errors.As(err, &robotsError) {
		cause = mapRobotsErrorToMetadataCause(robotsError)
	}
	e.metadataSink.RecordError(
		e.now(),
		"robots",
		action,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, target.String()),
			metadata.NewAttr(metadata.AttrHost, target.Host),
		},
	)
}

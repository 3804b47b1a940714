package robots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/rohmanhakim/robotx/internal/metadata"
	"github.com/rohmanhakim/robotx/internal/robots/cache"
	"github.com/rohmanhakim/robotx/pkg/hashutil"
	"golang.org/x/sync/singleflight"
)

// DefaultExpiry is how long a cached declaration is considered fresh.
const DefaultExpiry = 7 * 24 * time.Hour

/*
DeclarationCache

Responsibilities:
- Serve declarations from a Store, refreshing entries that are absent or expired
- Collapse concurrent refreshes of the same key into one source open
- Keep serving the previous entry when a refresh fails

Expiry is checked on read. Expired entries are overwritten, never deleted.
*/
type DeclarationCache struct {
	store        cache.Store
	source       StreamSource
	metadataSink metadata.MetadataSink
	expiry       time.Duration
	now          func() time.Time
	refreshes    singleflight.Group
}

func NewDeclarationCache(
	store cache.Store,
	source StreamSource,
	metadataSink metadata.MetadataSink,
) *DeclarationCache {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &DeclarationCache{
		store:        store,
		source:       source,
		metadataSink: metadataSink,
		expiry:       DefaultExpiry,
		now:          time.Now,
	}
}

func (c *DeclarationCache) WithExpiry(expiry time.Duration) *DeclarationCache {
	c.expiry = expiry
	return c
}

func (c *DeclarationCache) WithClock(now func() time.Time) *DeclarationCache {
	c.now = now
	return c
}

func (c *DeclarationCache) Expiry() time.Duration {
	return c.expiry
}

// Fetch returns a stream over the cached declaration for address,
// refreshing it first when needed. It fails only when no entry exists
// after the refresh attempt.
func (c *DeclarationCache) Fetch(ctx context.Context, address url.URL) (io.ReadCloser, error) {
	key := CacheKey(address)

	if !c.isFresh(key) {
		c.refresh(ctx, key, address)
	}

	stream, err := c.store.Open(key)
	if err != nil {
		return nil, &RobotsError{
			Message:   fmt.Sprintf("no cached declaration for %s: %v", key, err),
			Retryable: false,
			Cause:     ErrCauseCacheRead,
		}
	}
	return stream, nil
}

func (c *DeclarationCache) isFresh(key string) bool {
	entry, found, err := c.store.Stat(key)
	if err != nil {
		c.recordError("DeclarationCache.Stat", key, metadata.CauseStorageFailure, err)
		return false
	}
	return found && entry.Age(c.now()) <= c.expiry
}

// refresh pulls the declaration into the store. Callers racing on the same
// key share one pull; a caller arriving after a pull finished sees a fresh
// entry and skips it.
func (c *DeclarationCache) refresh(ctx context.Context, key string, address url.URL) {
	// The shared pull outlives any single caller's cancellation; each caller
	// still stops waiting on its own context.
	results := c.refreshes.DoChan(key, func() (any, error) {
		if c.isFresh(key) {
			return nil, nil
		}
		return nil, c.pull(context.WithoutCancel(ctx), key, address)
	})

	var err error
	select {
	case result := <-results:
		err = result.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return
	}

	cause := metadata.CauseStorageFailure
	var robotsErr *RobotsError
	if errors.As(err, &robotsErr) {
		cause = mapRobotsErrorToMetadataCause(robotsErr)
	}
	c.recordError("DeclarationCache.refresh", key, cause, err)
}

func (c *DeclarationCache) pull(ctx context.Context, key string, address url.URL) error {
	stream, err := c.source.Open(ctx, address)
	if err != nil {
		return err
	}
	if stream == nil {
		return &RobotsError{
			Message:   fmt.Sprintf("stream source returned nothing for %s", address.String()),
			Retryable: false,
			Cause:     ErrCauseEmptyStream,
		}
	}
	defer stream.Close()

	hasher, err := hashutil.NewHasher(hashutil.HashAlgoBLAKE3)
	if err != nil {
		return err
	}
	entry, err := c.store.Write(key, io.TeeReader(stream, hasher))
	if err != nil {
		return err
	}

	c.metadataSink.RecordArtifact(
		metadata.ArtifactDeclaration,
		entry.Location,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, address.String()),
			metadata.NewAttr(metadata.AttrCacheKey, key),
			metadata.NewAttr(metadata.AttrContentHash, hashutil.Hex(hasher)),
			metadata.NewAttr(metadata.AttrBytes, strconv.FormatInt(entry.Size, 10)),
		},
	)
	return nil
}

func (c *DeclarationCache) recordError(action, key string, cause metadata.ErrorCause, err error) {
	c.metadataSink.RecordError(
		c.now(),
		"robots",
		action,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, key),
		},
	)
}

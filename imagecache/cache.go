// =========================================================================
// MEMOIZED IMAGE LOADING. A GIVEN URL IS FETCHED AT MOST ONCE PER SESSION
// NO MATTER HOW MANY PANELS ASK FOR IT OR HOW CONCURRENTLY THEY ASK.
// FAILED LOADS ARE REMEMBERED TOO AND NEVER RETRIED UNLESS THE CACHE IS
// CLEARED.
// =========================================================================

package imagecache

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"gwmap/utils/requests"
)

// ImageLoadError reports a failed image fetch. It is only ever surfaced in
// the specific image slot that wanted the picture, never fatal to anything.
type ImageLoadError struct {
	URL string
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.URL, e.Err)
}

func (e *ImageLoadError) Unwrap() error {
	return e.Err
}

// FetchFunc retrieves the raw bytes behind an image URL.
type FetchFunc func(url string) ([]byte, error)

// A settled load, success or failure. Stored forever (until Clear).
type outcome struct {
	data []byte
	err  error
}

// Cache memoizes image loads by URL for one session.
//
// Callers racing on the same URL share a single in-flight fetch. An optional
// disk store is consulted before the network and written through after a
// successful fetch, so images survive the process; the per-session dedup
// contract is unaffected by it.
type Cache struct {
	mu    sync.RWMutex
	memo  map[string]*outcome
	group singleflight.Group
	fetch FetchFunc
	check func(url string) error
	disk  *DiskStore
}

// New creates an empty cache. disk may be nil for memory-only operation.
func New(disk *DiskStore) *Cache {
	return &Cache{
		memo:  make(map[string]*outcome),
		fetch: requests.Get,
		check: headOK,
		disk:  disk,
	}
}

// SetFetcher swaps the transport. Call before the session starts handing the
// cache around; loads already settled are unaffected. The warm-up HEAD
// pre-check belongs to the default HTTP transport, so swapping also drops it;
// install a replacement with [Cache.SetHeadCheck] if warming should still
// filter candidates.
func (c *Cache) SetFetcher(f FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetch = f
	c.check = nil
}

// SetHeadCheck swaps the cheap pre-check Warm runs before spending a fetch on
// a candidate URL. nil disables the check.
func (c *Cache) SetHeadCheck(f func(url string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.check = f
}

// Load returns the bytes for url, fetching at most once per session.
// Concurrent callers for the same URL share one fetch. A failure settles as
// an [ImageLoadError] and every later Load for that URL gets the same error
// back without a retry.
func (c *Cache) Load(url string) ([]byte, error) {
	if url == "" {
		return nil, &ImageLoadError{URL: url, Err: fmt.Errorf("empty image URL")}
	}

	c.mu.RLock()
	o, ok := c.memo[url]
	c.mu.RUnlock()
	if ok {
		return o.data, o.err
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		// A racer may have settled this URL between our memo check and Do.
		c.mu.RLock()
		o, ok := c.memo[url]
		c.mu.RUnlock()
		if ok {
			return o.data, o.err
		}

		data, err := c.lookup(url)
		if err != nil {
			err = &ImageLoadError{URL: url, Err: err}
		}

		c.settle(url, data, err)
		return data, err
	})

	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// lookup goes disk first, network second, writing the disk layer through on a
// network success. Disk failures fall through to the network silently.
func (c *Cache) lookup(url string) ([]byte, error) {
	if c.disk != nil {
		if data, err := c.disk.Get(url); err == nil && len(data) > 0 {
			return data, nil
		}
	}

	data, err := c.fetch(url)
	if err != nil {
		return nil, err
	}

	if c.disk != nil {
		c.disk.Put(url, data) // best effort
	}

	return data, nil
}

func (c *Cache) settle(url string, data []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[url] = &outcome{data: data, err: err}
}

// Cached reports whether url has a settled outcome (success or failure).
func (c *Cache) Cached(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.memo[url]
	return ok
}

// Clear forgets every settled outcome, including negative memos. The next
// Load for any URL fetches again.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo = make(map[string]*outcome)
}

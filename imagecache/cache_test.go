package imagecache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingFetcher hands out canned bytes and counts calls per URL.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
	}
}

func (f *countingFetcher) fetch(url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	failed := f.fail[url]
	f.mu.Unlock()

	if failed {
		return nil, errors.New("synthetic fetch failure")
	}

	return []byte("bytes:" + url), nil
}

func (f *countingFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[url]
}

func TestLoadFetchesOncePerURL(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)

	for n := 0; n < 5; n++ {
		data, err := c.Load("http://img/a.png")
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "bytes:http://img/a.png" {
			t.Fatalf("unexpected bytes: %s", data)
		}
	}

	if n := f.count("http://img/a.png"); n != 1 {
		t.Errorf("expected exactly 1 underlying fetch, got %d", n)
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)

	var wg sync.WaitGroup
	var failures atomic.Int32

	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load("http://img/b.png"); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d concurrent loads failed", failures.Load())
	}
	if n := f.count("http://img/b.png"); n != 1 {
		t.Errorf("expected concurrent callers to share one fetch, got %d", n)
	}
}

func TestDistinctURLsFetchIndependently(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)

	for i := 0; i < 3; i++ {
		url := fmt.Sprintf("http://img/%d.png", i)
		if _, err := c.Load(url); err != nil {
			t.Fatal(err)
		}
		if n := f.count(url); n != 1 {
			t.Errorf("url %s: expected 1 fetch, got %d", url, n)
		}
	}
}

func TestFailureIsNegativeMemo(t *testing.T) {
	f := newCountingFetcher()
	f.fail["http://img/broken.png"] = true

	c := New(nil)
	c.SetFetcher(f.fetch)

	_, err1 := c.Load("http://img/broken.png")
	_, err2 := c.Load("http://img/broken.png")

	var ile *ImageLoadError
	if !errors.As(err1, &ile) {
		t.Fatalf("expected ImageLoadError, got %v", err1)
	}
	if err2 == nil {
		t.Fatal("expected the memoized failure on the second load")
	}

	// The failed fetch must not be retried.
	if n := f.count("http://img/broken.png"); n != 1 {
		t.Errorf("expected no retry after a failed load, got %d fetches", n)
	}
}

func TestClearAllowsRetry(t *testing.T) {
	f := newCountingFetcher()
	f.fail["http://img/flaky.png"] = true

	c := New(nil)
	c.SetFetcher(f.fetch)

	c.Load("http://img/flaky.png")

	f.mu.Lock()
	f.fail["http://img/flaky.png"] = false
	f.mu.Unlock()

	c.Clear()

	data, err := c.Load("http://img/flaky.png")
	if err != nil {
		t.Fatalf("expected the cleared cache to refetch, got %v", err)
	}
	if len(data) == 0 {
		t.Error("expected bytes after retry")
	}
	if n := f.count("http://img/flaky.png"); n != 2 {
		t.Errorf("expected exactly 2 fetches across the clear, got %d", n)
	}
}

func TestEmptyURLFailsFast(t *testing.T) {
	c := New(nil)
	if _, err := c.Load(""); err == nil {
		t.Error("expected an error for an empty URL")
	}
}

func TestDiskStoreServesWithoutNetwork(t *testing.T) {
	disk, err := OpenMemoryStore()
	if err != nil {
		t.Fatal(err)
	}
	defer disk.Close()

	// First session populates the store through a working fetcher.
	f := newCountingFetcher()
	c1 := New(disk)
	c1.SetFetcher(f.fetch)
	if _, err := c1.Load("http://img/persisted.png"); err != nil {
		t.Fatal(err)
	}

	// Second session finds the bytes on disk; its fetcher must never fire.
	c2 := New(disk)
	c2.SetFetcher(func(url string) ([]byte, error) {
		t.Errorf("unexpected network fetch for %s", url)
		return nil, errors.New("offline")
	})

	data, err := c2.Load("http://img/persisted.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "bytes:http://img/persisted.png" {
		t.Errorf("unexpected bytes from disk: %s", data)
	}
}

func TestWarmRespectsLimit(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)

	urls := []string{
		"http://img/w1.png",
		"http://img/w1.png", // duplicate candidate, counted once
		"",                  // skipped
		"http://img/w2.png",
		"http://img/w3.png",
	}
	c.Warm(urls, 2)

	deadline := time.Now().Add(2 * time.Second)
	for !(c.Cached("http://img/w1.png") && c.Cached("http://img/w2.png")) {
		if time.Now().After(deadline) {
			t.Fatal("warm never loaded the first two candidates")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Give the worker a beat to overrun the limit if it were going to.
	time.Sleep(2 * WARM_INTERVAL)

	if c.Cached("http://img/w3.png") {
		t.Error("warm exceeded its limit")
	}
	if n := f.count("http://img/w1.png"); n != 1 {
		t.Errorf("expected the duplicate candidate to warm once, got %d", n)
	}
}

func TestWarmSkipsCached(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)

	if _, err := c.Load("http://img/hot.png"); err != nil {
		t.Fatal(err)
	}

	c.Warm([]string{"http://img/hot.png", "http://img/cold.png"}, 5)

	deadline := time.Now().Add(2 * time.Second)
	for !c.Cached("http://img/cold.png") {
		if time.Now().After(deadline) {
			t.Fatal("warm never reached the cold candidate")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if n := f.count("http://img/hot.png"); n != 1 {
		t.Errorf("expected warm to skip the already-cached URL, got %d fetches", n)
	}
}

// A candidate failing the cheap pre-check must not consume a warm slot, a
// fetch, or a negative memo; a later foreground load still gets the real
// error path.
func TestWarmHeadCheckFiltersCandidates(t *testing.T) {
	f := newCountingFetcher()
	c := New(nil)
	c.SetFetcher(f.fetch)
	c.SetHeadCheck(func(url string) error {
		if url == "http://img/dead.png" {
			return errors.New("synthetic head failure")
		}
		return nil
	})

	c.Warm([]string{"http://img/dead.png", "http://img/live.png"}, 1)

	deadline := time.Now().Add(2 * time.Second)
	for !c.Cached("http://img/live.png") {
		if time.Now().After(deadline) {
			t.Fatal("warm never reached the live candidate")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if n := f.count("http://img/dead.png"); n != 0 {
		t.Errorf("expected the dead candidate skipped before fetching, got %d fetches", n)
	}
	if c.Cached("http://img/dead.png") {
		t.Error("a skipped candidate must not settle in the cache")
	}
}

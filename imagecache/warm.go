package imagecache

import (
	"time"

	log "github.com/sirupsen/logrus"

	"gwmap/utils/requests"
	"gwmap/utils/sets"
)

// Gap between prefetches. Go has no idle-callback scheduling the way a
// browser does, so a timer spacing the fetches out is the fallback the
// contract allows.
const WARM_INTERVAL = 150 * time.Millisecond

// Warm proactively loads up to limit not-yet-cached URLs from candidates, in
// a background goroutine. It returns immediately, never blocks the calling
// flow, and swallows individual failures (which still settle as negative
// memos, same as a foreground load).
func (c *Cache) Warm(candidates []string, limit int) {
	if limit <= 0 || len(candidates) == 0 {
		return
	}

	c.mu.RLock()
	check := c.check
	c.mu.RUnlock()

	go func() {
		seen := sets.New[string]()
		warmed := 0

		for _, url := range candidates {
			if warmed >= limit {
				return
			}
			if url == "" || !seen.AppendIfUnseen(url) || c.Cached(url) {
				continue
			}

			// A dead URL is not worth a warm slot or a negative memo; a
			// foreground load will still surface the real error later.
			if check != nil {
				if err := check(url); err != nil {
					log.Debugf("warm: skipping %s: %v", url, err)
					continue
				}
			}

			if warmed > 0 {
				time.Sleep(WARM_INTERVAL)
			}

			if _, err := c.Load(url); err != nil {
				log.Debugf("warm: %v", err)
			}

			warmed++
		}
	}()
}

// headOK is the default warm pre-check: one cheap HEAD against the URL,
// rejecting transport failures and error status codes.
func headOK(url string) error {
	r, err := requests.Head(url)
	if err != nil {
		return err
	}

	if r.StatusCode >= 400 {
		return &requests.StatusError{Code: r.StatusCode, Status: r.Status, URL: url}
	}

	return nil
}

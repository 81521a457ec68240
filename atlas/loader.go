package atlas

import (
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"gwmap/utils/requests"
	"gwmap/worldmap"
)

// DataLoadError reports a failed document load: the transport returned a
// non-success status or the payload was not parseable. The previous data (if
// any) stays installed when this comes back.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load map data from %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Loader fetches the source document and installs it into an [Atlas].
//
// Loads are tagged with a monotonically increasing token when they start. A
// slow load whose token is no longer current by the time its fetch resolves
// is discarded instead of clobbering newer data -- the original behaviour
// left this to luck, here out-of-order completion is guarded explicitly.
type Loader struct {
	atlas *Atlas
	fetch func(url string) ([]byte, error)

	loads    atomic.Uint64
	commitMu sync.Mutex

	// OnReplaced fires after a successful install, on the loading goroutine.
	// The session uses it to rebuild markers and re-render the sidebar.
	OnReplaced func(cats []worldmap.Category, gen uint64)
}

func NewLoader(a *Atlas) *Loader {
	return &Loader{
		atlas: a,
		fetch: requests.Get,
	}
}

// SetFetcher swaps the document transport. Meant for tests and for sessions
// reading from somewhere other than plain HTTP.
func (l *Loader) SetFetcher(f func(url string) ([]byte, error)) {
	l.fetch = f
}

// LoadData fetches source, parses it and replaces the atlas contents
// atomically. Returns a [DataLoadError] on transport or parse failure, in
// which case nothing is replaced. A load that went stale while fetching is
// dropped silently.
func (l *Loader) LoadData(source string) error {
	token := l.loads.Add(1)

	body, err := l.fetch(source)
	if err != nil {
		return &DataLoadError{Source: source, Err: err}
	}

	cats, err := worldmap.ParseDocument(body)
	if err != nil {
		return &DataLoadError{Source: source, Err: err}
	}

	l.commitMu.Lock()
	defer l.commitMu.Unlock()

	if token != l.loads.Load() {
		log.Debugf("loader: discarding stale load %d of %s (current is %d)", token, source, l.loads.Load())
		return nil
	}

	gen := l.atlas.Replace(cats)
	log.Infof("loader: installed %d categories / %d locations from %s (gen %d)",
		len(cats), worldmap.CountLocations(cats), source, gen)

	if l.OnReplaced != nil {
		l.OnReplaced(cats, gen)
	}

	return nil
}

// =========================================================================
// THE SESSION DATA MODEL. HOLDS THE CURRENT CATEGORY->LOCATIONS DOCUMENT
// AS THE SINGLE SOURCE OF TRUTH, REPLACED WHOLESALE ON EVERY RELOAD AND
// NEVER PARTIALLY MUTATED (MARKER BACK-REFERENCES ASIDE).
// =========================================================================

package atlas

import (
	"sync"

	"gwmap/worldmap"
)

// Atlas owns the loaded category set for one viewer session.
//
// Readers get a consistent snapshot; Replace swaps the whole set atomically
// so no intermediate state is ever visible. The generation counter increases
// with every replace and lets asynchronous work detect it went stale.
type Atlas struct {
	mu   sync.RWMutex
	cats []worldmap.Category
	gen  uint64
}

func New() *Atlas {
	return &Atlas{}
}

// Replace installs a freshly parsed category set wholesale and returns the
// new generation.
func (a *Atlas) Replace(cats []worldmap.Category) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cats = cats
	a.gen++
	return a.gen
}

// Snapshot returns the current category slice and its generation. The slice
// must be treated as read-only; it is shared with every other reader until
// the next Replace.
func (a *Atlas) Snapshot() ([]worldmap.Category, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.cats, a.gen
}

func (a *Atlas) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.gen
}

// IsEmpty reports whether any document has been loaded yet.
func (a *Atlas) IsEmpty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.cats) == 0
}

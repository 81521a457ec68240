package worldmap

import (
	"sync"
	"testing"
)

type stubHandle struct {
	id string
}

func (h *stubHandle) ID() string {
	return h.id
}

// The session rewrites the back-reference while camera timer goroutines read
// it, so both accessors must be safe for concurrent use.
func TestHandleAccessorsAreConcurrencySafe(t *testing.T) {
	loc := &Location{Name: "Vault", Lat: "1", Lng: "2"}
	h := &stubHandle{id: "marker-1"}

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				loc.SetHandle(h)
				loc.SetHandle(nil)
			}
		}()

		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := loc.Handle(); got != nil && got.ID() != "marker-1" {
					t.Errorf("unexpected handle %v", got)
				}
			}
		}()
	}
	wg.Wait()
}

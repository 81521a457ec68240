package worldmap

import (
	"strconv"
	"strings"
	"sync"

	"gwmap/surface"
)

// Coordinate is a lat/lng component as it appears on the wire. Source
// documents are hand-maintained and carry coordinates as strings, bare
// numbers or garbage, so parsing is deferred until placement and a bad value
// only ever skips its own location.
type Coordinate string

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))

	// Accept both "12.3" and 12.3 document flavours.
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}

	*c = Coordinate(strings.TrimSpace(s))
	return nil
}

// Float parses the coordinate. ok is false for anything that is not a finite number.
func (c Coordinate) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(c), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// A single point of interest. Owned by exactly one [Category].
type Location struct {
	Name         string     `json:"name"`
	Lat          Coordinate `json:"lat"`
	Lng          Coordinate `json:"lng"`
	Info         string     `json:"info,omitempty"`
	Img          string     `json:"img,omitempty"`
	RelatedItems []string   `json:"relatedItems,omitempty"`

	// Back-reference to the placed marker. Set after placement, cleared when
	// markers are rebuilt. Lookup only -- the surface owns the marker. The
	// session writes it while camera timer goroutines read it, hence the lock.
	handleMu sync.Mutex
	handle   surface.Handle
}

// Coordinates parses both components at once. ok is false if either is
// unusable, in which case the location must be skipped from map placement.
func (l *Location) Coordinates() (lat, lng float64, ok bool) {
	lat, latOK := l.Lat.Float()
	lng, lngOK := l.Lng.Float()
	return lat, lng, latOK && lngOK
}

func (l *Location) Handle() surface.Handle {
	l.handleMu.Lock()
	defer l.handleMu.Unlock()

	return l.handle
}

func (l *Location) SetHandle(h surface.Handle) {
	l.handleMu.Lock()
	defer l.handleMu.Unlock()

	l.handle = h
}

// A named, colored grouping of locations. Defined wholesale by the loaded
// document; never partially mutated.
type Category struct {
	Name      string
	Color     string
	Locations []*Location
}

package surface

import (
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"gwmap/utils"
)

// A marker handle issued by the console surface. IDs are monotonic per surface.
type consoleHandle struct {
	id string
}

func (h *consoleHandle) ID() string {
	return h.id
}

// ConsoleSurface is a headless [MapSurface] that logs every operation.
// It exists so a session can run end-to-end without a real rendering engine,
// and doubles as a reference for what a binding must implement.
//
// Zoom bounds mirror typical tile-viewer defaults and can be overridden
// before the session starts.
type ConsoleSurface struct {
	MinimumZoom float64
	MaximumZoom float64

	mu      sync.Mutex
	nextID  int
	placed  map[string]*consoleHandle
	clicks  []func(Handle)
	dblClks []func(lat, lng float64)
	closes  []func(Handle)
}

func NewConsoleSurface() *ConsoleSurface {
	return &ConsoleSurface{
		MinimumZoom: 0,
		MaximumZoom: 10,
		placed:      make(map[string]*consoleHandle),
	}
}

func (cs *ConsoleSurface) AddOverlay(imageURL string, b Bounds) {
	log.Infof("surface: overlay %s bounds=(%v,%v)..(%v,%v)", imageURL, b.MinLat, b.MinLng, b.MaxLat, b.MaxLng)
}

func (cs *ConsoleSurface) FitBounds(b Bounds) {
	log.Debugf("surface: fit bounds (%v,%v)..(%v,%v)", b.MinLat, b.MinLng, b.MaxLat, b.MaxLng)
}

func (cs *ConsoleSurface) SetView(lat, lng, zoom float64, animate bool) {
	log.Infof("surface: view -> (%f, %f) zoom=%.1f animate=%t", lat, lng, zoom, animate)
}

func (cs *ConsoleSurface) PanBy(dx, dy int, animate bool) {
	log.Infof("surface: pan by (%d, %d) animate=%t", dx, dy, animate)
}

func (cs *ConsoleSurface) MinZoom() float64 { return cs.MinimumZoom }
func (cs *ConsoleSurface) MaxZoom() float64 { return cs.MaximumZoom }

func (cs *ConsoleSurface) PlaceMarker(lat, lng float64, icon Icon) Handle {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.nextID++
	h := &consoleHandle{id: "marker-" + strconv.Itoa(cs.nextID)}
	cs.placed[h.id] = h

	log.Debugf("surface: placed %s at (%f, %f) color=%s label=%q", h.id, lat, lng, icon.Color, icon.Label)
	return h
}

func (cs *ConsoleSurface) RemoveMarker(h Handle) {
	if h == nil {
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.placed, h.ID())
	log.Debugf("surface: removed %s", h.ID())
}

func (cs *ConsoleSurface) SetEmphasis(h Handle, on bool) {
	if h == nil {
		return
	}

	log.Infof("surface: emphasis %s -> %t", h.ID(), on)
}

// PlacedCount reports how many markers are currently attached. Mostly useful
// when poking at a session from a test or the demo binary.
func (cs *ConsoleSurface) PlacedCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return len(cs.placed)
}

func (cs *ConsoleSurface) OnMarkerClick(fn func(Handle)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.clicks = append(cs.clicks, fn)
}

func (cs *ConsoleSurface) OnDoubleClick(fn func(lat, lng float64)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.dblClks = append(cs.dblClks, fn)
}

func (cs *ConsoleSurface) OnPopupClosed(fn func(Handle)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.closes = append(cs.closes, fn)
}

// ClickMarker simulates a user clicking a placed marker.
func (cs *ConsoleSurface) ClickMarker(h Handle) {
	cs.mu.Lock()
	fns := append([]func(Handle){}, cs.clicks...)
	cs.mu.Unlock()

	for _, fn := range fns {
		fn(h)
	}
}

// DoubleClick simulates a user double-clicking an empty map point.
func (cs *ConsoleSurface) DoubleClick(lat, lng float64) {
	cs.mu.Lock()
	fns := append([]func(lat, lng float64){}, cs.dblClks...)
	cs.mu.Unlock()

	for _, fn := range fns {
		fn(lat, lng)
	}
}

// ClosePopup simulates the popup attached to h being dismissed.
func (cs *ConsoleSurface) ClosePopup(h Handle) {
	cs.mu.Lock()
	fns := append([]func(Handle){}, cs.closes...)
	cs.mu.Unlock()

	for _, fn := range fns {
		fn(h)
	}
}

// ConsolePanel is a headless [PanelRenderer] that logs what it would draw.
type ConsolePanel struct{}

func (ConsolePanel) RenderSidebar(entries []SidebarEntry, truncated bool) {
	log.Infof("panel: sidebar with %d rows (truncated=%t)", len(entries), truncated)
	for _, e := range entries {
		suffix := ""
		if len(e.MatchedItems) > 0 {
			suffix = fmt.Sprintf(" [%v]", e.MatchedItems)
		}
		log.Debugf("panel:   %s/%s%s", e.Category, e.Location, suffix)
	}
}

func (ConsolePanel) RenderDetail(d Detail) {
	log.Infof("panel: detail\n%s", utils.Prettify(d))
}

func (ConsolePanel) ShowSearchPanel(visible bool) {
	log.Debugf("panel: search panel visible=%t", visible)
}

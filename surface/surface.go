// =========================================================================
// THIS PACKAGE DEFINES THE CAPABILITIES THE VIEWER CORE CONSUMES BUT DOES
// NOT IMPLEMENT ITSELF: THE MAP SURFACE, THE PANEL RENDERER AND THE
// EXPORT SINK.
//
// THE CORE ONLY EVER TALKS TO THESE INTERFACES. ANY RENDERING ENGINE THAT
// CAN SATISFY THEM (LEAFLET-STYLE TILE VIEW, GAME OVERLAY, PLAIN CONSOLE)
// CAN HOST A SESSION WITHOUT THE CORE KNOWING.
// =========================================================================

package surface

// Handle is an opaque reference to a single placed point on the map surface.
// The surface owns the marker; the core only ever compares and passes handles back.
type Handle interface {
	ID() string
}

// A rectangular region of the map image in world coordinates.
type Bounds struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Icon describes how a placed marker should look. The surface decides how
// (or whether) to honour it.
type Icon struct {
	Color string // CSS color string from the owning category.
	Label string // Short text shown on hover or next to the marker.
}

// The map surface capability. One instance backs a whole session.
//
// PlaceMarker attaches a point immediately; RemoveMarker detaches it and
// invalidates the handle. Emphasis is the highlight visual, at most one
// handle should carry it at a time but the surface itself does not enforce
// that -- the highlight state machine does.
type MapSurface interface {
	AddOverlay(imageURL string, b Bounds)
	FitBounds(b Bounds)
	SetView(lat, lng, zoom float64, animate bool)
	PanBy(dx, dy int, animate bool)
	MinZoom() float64
	MaxZoom() float64

	PlaceMarker(lat, lng float64, icon Icon) Handle
	RemoveMarker(h Handle)
	SetEmphasis(h Handle, on bool)

	OnMarkerClick(fn func(h Handle))
	OnDoubleClick(fn func(lat, lng float64))
	OnPopupClosed(fn func(h Handle))
}

// ImageState tells the panel renderer what to show in a detail image slot.
type ImageState = int

const (
	IMAGE_NONE    ImageState = iota // Location has no image URL.
	IMAGE_LOADING                   // Fetch in flight, show a placeholder.
	IMAGE_READY                     // Bytes available, show the image.
	IMAGE_FAILED                    // Load failed, show failure text. Never retried.
)

// One clickable row in the sidebar accordion. The core maps its own match
// results into these so the renderer never needs to import the model.
type SidebarEntry struct {
	Category     string
	Color        string
	Location     string
	MatchedItems []string // Related items that matched the query, for UI annotation.
}

// Detail is everything the renderer needs to build the focused-location panel.
type Detail struct {
	Name         string
	Info         string
	ImageURL     string
	ImageState   ImageState
	RelatedItems []string
}

// The panel renderer capability: sidebar accordion, detail popup, search panel.
type PanelRenderer interface {
	// Renders the sidebar rows. truncated reports whether the display cap cut
	// the set short, so the renderer can hint "refine your search".
	RenderSidebar(entries []SidebarEntry, truncated bool)
	RenderDetail(d Detail)
	ShowSearchPanel(visible bool)
}

// ExportSink accepts one serialized record. The reference sink is the system
// clipboard but any text sink satisfies the contract.
type ExportSink interface {
	Write(record []byte) error
}

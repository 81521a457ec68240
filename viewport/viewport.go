package viewport

import (
	"time"

	"gwmap/surface"
	"gwmap/worldmap"
)

// Requested zoom when a location is focused without an explicit zoom. Kept
// distinct from the surface's min/max so the clamp is observable.
const DEFAULT_FOCUS_ZOOM = 5.0

// Pixel offset applied after recentring so the detail side panel does not
// cover the focused marker.
const PANEL_OFFSET_X = -200
const PANEL_OFFSET_Y = 0

// Delay before the offset pan, letting the recentre animation begin first.
// The two-phase move is deliberate; both phases are animated.
const PAN_DELAY = 400 * time.Millisecond

type FocusOptions struct {
	Zoom float64 // 0 means DEFAULT_FOCUS_ZOOM.
}

// Controller orchestrates camera recentring and zoom when a location is
// focused.
type Controller struct {
	surf     surface.MapSurface
	panDelay time.Duration

	// OnFocused fires once the camera move is underway, on the delay timer's
	// goroutine. The session hooks highlight + detail display here.
	OnFocused func(loc *worldmap.Location)
}

func NewController(surf surface.MapSurface) *Controller {
	return &Controller{
		surf:     surf,
		panDelay: PAN_DELAY,
	}
}

// FocusLocation recentres on loc with the requested zoom clamped into the
// surface's zoom bounds, then after a short delay pans by the side-panel
// offset and fires OnFocused. No-op for a nil location or unparseable
// coordinates.
func (c *Controller) FocusLocation(loc *worldmap.Location, opts *FocusOptions) {
	if loc == nil {
		return
	}

	lat, lng, ok := loc.Coordinates()
	if !ok {
		return
	}

	zoom := DEFAULT_FOCUS_ZOOM
	if opts != nil && opts.Zoom != 0 {
		zoom = opts.Zoom
	}
	zoom = ClampZoom(zoom, c.surf.MinZoom(), c.surf.MaxZoom())

	c.surf.SetView(lat, lng, zoom, true)

	time.AfterFunc(c.panDelay, func() {
		c.surf.PanBy(PANEL_OFFSET_X, PANEL_OFFSET_Y, true)

		if c.OnFocused != nil {
			c.OnFocused(loc)
		}
	})
}

// SetPanDelay overrides the delay between the recentre and the offset pan.
func (c *Controller) SetPanDelay(d time.Duration) {
	c.panDelay = d
}

// ClampZoom pins zoom into [min, max].
func ClampZoom(zoom, min, max float64) float64 {
	if zoom < min {
		return min
	}
	if zoom > max {
		return max
	}

	return zoom
}

package viewport

import (
	"sync"
	"testing"
	"time"

	"gwmap/surface"
	"gwmap/worldmap"
)

type viewCall struct {
	lat, lng, zoom float64
	animate        bool
}

type panCall struct {
	dx, dy  int
	animate bool
}

// cameraRecorder wraps the console surface and records camera moves.
type cameraRecorder struct {
	surface.MapSurface
	mu    sync.Mutex
	views []viewCall
	pans  []panCall
}

func newCamera() *cameraRecorder {
	return &cameraRecorder{MapSurface: surface.NewConsoleSurface()}
}

func (c *cameraRecorder) SetView(lat, lng, zoom float64, animate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, viewCall{lat, lng, zoom, animate})
}

func (c *cameraRecorder) PanBy(dx, dy int, animate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pans = append(c.pans, panCall{dx, dy, animate})
}

func (c *cameraRecorder) snapshot() ([]viewCall, []panCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]viewCall{}, c.views...), append([]panCall{}, c.pans...)
}

func loc(lat, lng string) *worldmap.Location {
	return &worldmap.Location{Name: "Spot", Lat: worldmap.Coordinate(lat), Lng: worldmap.Coordinate(lng)}
}

func TestFocusClampsZoom(t *testing.T) {
	cam := newCamera() // console surface bounds: 0..10

	c := NewController(cam)
	c.SetPanDelay(time.Millisecond)
	c.FocusLocation(loc("5", "6"), &FocusOptions{Zoom: 999})

	views, _ := cam.snapshot()
	if len(views) != 1 {
		t.Fatalf("expected one SetView, got %d", len(views))
	}
	if views[0].zoom != 10 {
		t.Errorf("expected zoom clamped to 10, got %v", views[0].zoom)
	}
	if !views[0].animate {
		t.Error("expected the recentre to be animated")
	}
}

func TestFocusDefaultZoom(t *testing.T) {
	cam := newCamera()

	c := NewController(cam)
	c.SetPanDelay(time.Millisecond)
	c.FocusLocation(loc("5", "6"), nil)

	views, _ := cam.snapshot()
	if len(views) != 1 || views[0].zoom != DEFAULT_FOCUS_ZOOM {
		t.Errorf("expected the default focus zoom, got %v", views)
	}
	if views[0].lat != 5 || views[0].lng != 6 {
		t.Errorf("expected recentre on (5, 6), got %v", views[0])
	}
}

func TestFocusTwoPhaseMove(t *testing.T) {
	cam := newCamera()

	c := NewController(cam)
	c.SetPanDelay(time.Millisecond)

	focused := make(chan *worldmap.Location, 1)
	c.OnFocused = func(l *worldmap.Location) {
		focused <- l
	}

	target := loc("1", "2")
	c.FocusLocation(target, nil)

	select {
	case got := <-focused:
		if got != target {
			t.Errorf("OnFocused fired with the wrong location")
		}
	case <-time.After(time.Second):
		t.Fatal("OnFocused never fired")
	}

	_, pans := cam.snapshot()
	if len(pans) != 1 {
		t.Fatalf("expected one offset pan, got %d", len(pans))
	}
	if pans[0].dx != PANEL_OFFSET_X || pans[0].dy != PANEL_OFFSET_Y {
		t.Errorf("expected the side-panel offset, got %v", pans[0])
	}
	if !pans[0].animate {
		t.Error("expected the offset pan to be animated")
	}
}

func TestFocusNoopOnBadInput(t *testing.T) {
	cam := newCamera()

	c := NewController(cam)
	c.SetPanDelay(time.Millisecond)

	c.FocusLocation(nil, nil)
	c.FocusLocation(loc("abc", "3"), nil)

	time.Sleep(20 * time.Millisecond)

	views, pans := cam.snapshot()
	if len(views) != 0 || len(pans) != 0 {
		t.Errorf("expected no camera movement, got views=%v pans=%v", views, pans)
	}
}

func TestClampZoom(t *testing.T) {
	cases := []struct {
		zoom, min, max, want float64
	}{
		{999, 0, 10, 10},
		{-5, 0, 10, 0},
		{5, 0, 10, 5},
		{3, 3, 3, 3},
	}

	for _, tc := range cases {
		if got := ClampZoom(tc.zoom, tc.min, tc.max); got != tc.want {
			t.Errorf("ClampZoom(%v, %v, %v): expected %v, got %v", tc.zoom, tc.min, tc.max, tc.want, got)
		}
	}
}

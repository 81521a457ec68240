// =========================================================================
// THE TOP-LEVEL SESSION CONTROLLER. OWNS THE ATLAS, CACHE, HIGHLIGHTER,
// VIEWPORT AND AUTHORING STATE FOR ONE VIEWER SESSION AND WIRES THEM TO
// THE MAP SURFACE AND PANEL RENDERER CAPABILITIES.
//
// EVERYTHING HERE USED TO BE GLOBAL MUTABLE STATE IN THE REFERENCE
// VIEWER; IT IS DELIBERATELY A SINGLE EXPLICIT OBJECT INSTEAD.
// =========================================================================

package viewer

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"gwmap/atlas"
	"gwmap/authoring"
	"gwmap/highlight"
	"gwmap/imagecache"
	"gwmap/search"
	"gwmap/surface"
	"gwmap/viewport"
	"gwmap/worldmap"
)

// Sidebar rows shown at most per query. Truncation is presentation policy:
// the engine still computes the full match set.
const DISPLAY_LIMIT = 25

type Config struct {
	DataURL     string
	MapImageURL string
	Bounds      surface.Bounds

	HighlightPolicy   highlight.Policy
	TransientDuration time.Duration

	// How many not-yet-cached location images to prefetch after a load.
	WarmLimit int
}

// Session is one interactive viewer session against one map surface.
type Session struct {
	cfg   Config
	surf  surface.MapSurface
	panel surface.PanelRenderer
	sink  surface.ExportSink

	atlas  *atlas.Atlas
	loader *atlas.Loader
	cache  *imagecache.Cache
	hl     *highlight.Highlighter
	vc     *viewport.Controller

	mu        sync.Mutex
	query     string
	placed    map[surface.Handle]*worldmap.Location
	draft     *authoring.Draft
	detailSeq atomic.Uint64
}

// NewSession wires a session together. Nothing touches the network until
// Start.
func NewSession(cfg Config, surf surface.MapSurface, panel surface.PanelRenderer, sink surface.ExportSink, cache *imagecache.Cache) *Session {
	a := atlas.New()

	s := &Session{
		cfg:    cfg,
		surf:   surf,
		panel:  panel,
		sink:   sink,
		atlas:  a,
		loader: atlas.NewLoader(a),
		cache:  cache,
		hl:     highlight.New(surf, cfg.HighlightPolicy, cfg.TransientDuration),
		vc:     viewport.NewController(surf),
		placed: make(map[surface.Handle]*worldmap.Location),
	}

	s.loader.OnReplaced = s.onDataReplaced
	s.vc.OnFocused = s.onFocused

	surf.OnMarkerClick(s.onMarkerClick)
	surf.OnDoubleClick(s.onDoubleClick)
	surf.OnPopupClosed(s.onPopupClosed)

	return s
}

// Loader exposes the data loader, mainly so callers can swap the transport.
func (s *Session) Loader() *atlas.Loader {
	return s.loader
}

// Highlighter exposes the highlight state machine.
func (s *Session) Highlighter() *highlight.Highlighter {
	return s.hl
}

// Viewport exposes the view controller.
func (s *Session) Viewport() *viewport.Controller {
	return s.vc
}

// Start attaches the background overlay and performs the initial data load.
func (s *Session) Start() error {
	if s.cfg.MapImageURL != "" {
		s.surf.AddOverlay(s.cfg.MapImageURL, s.cfg.Bounds)
		s.surf.FitBounds(s.cfg.Bounds)
	}

	return s.loader.LoadData(s.cfg.DataURL)
}

// Reload re-fetches the configured source and replaces everything wholesale.
func (s *Session) Reload() error {
	return s.loader.LoadData(s.cfg.DataURL)
}

// onDataReplaced runs after every successful load: destroy and recreate the
// full marker set, reset highlight state (the old handles are gone) and the
// search query, then start warming location imagery.
func (s *Session) onDataReplaced(cats []worldmap.Category, gen uint64) {
	s.hl.Reset()

	s.mu.Lock()
	s.query = ""
	s.mu.Unlock()

	s.ApplyQuery("")

	urls := lo.FilterMap(allLocations(cats), func(loc *worldmap.Location, _ int) (string, bool) {
		return loc.Img, loc.Img != ""
	})
	s.cache.Warm(urls, s.cfg.WarmLimit)

	log.Debugf("session: rebuild complete for generation %d", gen)
}

// ApplyQuery recomputes the visibility set for q and reconciles the map
// surface and sidebar against it: markers outside the set are detached,
// missing ones are attached, and survivors keep their handles. A full data
// replace still rebuilds everything, since the new snapshot carries fresh
// locations. Draft markers are not touched.
func (s *Session) ApplyQuery(q string) {
	cats, _ := s.atlas.Snapshot()
	matches := search.ComputeMatches(q, cats)
	vis := search.VisibleSet(matches)

	s.mu.Lock()
	s.query = q

	for h, loc := range s.placed {
		if vis.Has(loc) {
			continue
		}

		s.surf.RemoveMarker(h)
		loc.SetHandle(nil)
		delete(s.placed, h)
	}

	for _, m := range matches {
		if m.Location.Handle() != nil {
			continue // Survived the previous query; marker stays put.
		}

		lat, lng, ok := m.Location.Coordinates()
		if !ok {
			continue // Bad coordinates never block sibling locations.
		}

		h := s.surf.PlaceMarker(lat, lng, surface.Icon{
			Color: m.Category.Color,
			Label: m.Location.Name,
		})
		m.Location.SetHandle(h)
		s.placed[h] = m.Location
	}
	s.mu.Unlock()

	entries := lo.Map(matches, func(m search.Match, _ int) surface.SidebarEntry {
		return surface.SidebarEntry{
			Category:     m.Category.Name,
			Color:        m.Category.Color,
			Location:     m.Location.Name,
			MatchedItems: m.RelatedItems,
		}
	})

	truncated := len(entries) > DISPLAY_LIMIT
	if truncated {
		entries = entries[:DISPLAY_LIMIT]
	}

	s.panel.RenderSidebar(entries, truncated)
	s.panel.ShowSearchPanel(strings.TrimSpace(q) != "")
}

// Query returns the active search query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query
}

// PlacedCount reports how many location markers are currently attached.
func (s *Session) PlacedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.placed)
}

// FocusLocation recentres on loc and, once the camera is moving, highlights
// its marker and shows the detail panel.
func (s *Session) FocusLocation(loc *worldmap.Location, opts *viewport.FocusOptions) {
	s.vc.FocusLocation(loc, opts)
}

func (s *Session) onMarkerClick(h surface.Handle) {
	s.mu.Lock()
	loc := s.placed[h]
	s.mu.Unlock()

	if loc == nil {
		return // Draft marker or already-detached handle.
	}

	s.vc.FocusLocation(loc, nil)
}

// onFocused runs after the two-phase camera move begins.
func (s *Session) onFocused(loc *worldmap.Location) {
	if h := loc.Handle(); h != nil {
		s.hl.Select(h)
	}

	s.showDetail(loc)
}

// showDetail renders the detail panel, with the image slot going placeholder
// -> image/failure as the lazy load settles. A newer focus supersedes any
// in-flight image completion.
func (s *Session) showDetail(loc *worldmap.Location) {
	seq := s.detailSeq.Add(1)

	d := surface.Detail{
		Name:         loc.Name,
		Info:         loc.Info,
		ImageURL:     loc.Img,
		ImageState:   surface.IMAGE_NONE,
		RelatedItems: loc.RelatedItems,
	}

	if loc.Img == "" {
		s.panel.RenderDetail(d)
		return
	}

	d.ImageState = surface.IMAGE_LOADING
	s.panel.RenderDetail(d)

	go func() {
		_, err := s.cache.Load(loc.Img)
		if seq != s.detailSeq.Load() {
			return // Focus moved on while the image was loading.
		}

		if err != nil {
			log.Debugf("session: detail image failed: %v", err)
			d.ImageState = surface.IMAGE_FAILED
		} else {
			d.ImageState = surface.IMAGE_READY
		}

		s.panel.RenderDetail(d)
	}()
}

// onDoubleClick opens a marker authoring session at the clicked point. Any
// draft still open is abandoned first; one draft at a time.
func (s *Session) onDoubleClick(lat, lng float64) {
	s.mu.Lock()
	prev := s.draft
	s.mu.Unlock()

	if prev != nil {
		prev.Abandon()
	}

	d := authoring.NewDraft(s.surf, lat, lng)

	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()

	log.Infof("session: authoring draft opened at (%f, %f)", lat, lng)
}

// onPopupClosed abandons the open draft when its popup is dismissed.
func (s *Session) onPopupClosed(h surface.Handle) {
	s.mu.Lock()
	d := s.draft
	s.mu.Unlock()

	if d == nil {
		return
	}

	if dh := d.Handle(); dh != nil && dh == h {
		d.Abandon()

		s.mu.Lock()
		s.draft = nil
		s.mu.Unlock()
	}
}

// Draft returns the open authoring session, or nil.
func (s *Session) Draft() *authoring.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

// CommitDraft serializes the open draft to the export sink. On sink failure
// the draft stays open so the user can retry; the error is surfaced, not
// fatal.
func (s *Session) CommitDraft() (authoring.Record, error) {
	s.mu.Lock()
	d := s.draft
	s.mu.Unlock()

	if d == nil {
		return authoring.Record{}, nil
	}

	rec, err := d.Commit(s.sink)
	if err != nil {
		log.Errorf("session: export failed: %v", err)
		return authoring.Record{}, err
	}

	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()

	return rec, nil
}

func allLocations(cats []worldmap.Category) []*worldmap.Location {
	var out []*worldmap.Location
	for i := range cats {
		out = append(out, cats[i].Locations...)
	}

	return out
}

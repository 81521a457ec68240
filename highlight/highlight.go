package highlight

import (
	"sync"
	"time"

	"gwmap/surface"
)

// Policy controls what happens to the emphasis visual after a marker is
// selected. The reference behaviour moved from transient to persistent
// between revisions, so neither is hard-coded.
type Policy = int

const (
	POLICY_PERSISTENT Policy = iota // Emphasis stays until another marker is selected. Default.
	POLICY_TRANSIENT                // Emphasis auto-clears after Duration; selection state is kept.
)

const DEFAULT_TRANSIENT_DURATION = 3 * time.Second

// Highlighter tracks the single highlighted marker for a session.
//
// Invariant: at most one handle carries emphasis at any time. Selecting a new
// handle clears the previous one first; re-selecting the current handle
// clears and immediately re-applies so a finished animation restarts.
//
// There is no idle transition in normal operation. Only Reset (called when
// markers are rebuilt wholesale) returns to the no-highlight state.
type Highlighter struct {
	mu       sync.Mutex
	surf     surface.MapSurface
	policy   Policy
	duration time.Duration
	current  surface.Handle
	timer    *time.Timer
}

func New(surf surface.MapSurface, policy Policy, transientDuration time.Duration) *Highlighter {
	if transientDuration <= 0 {
		transientDuration = DEFAULT_TRANSIENT_DURATION
	}

	return &Highlighter{
		surf:     surf,
		policy:   policy,
		duration: transientDuration,
	}
}

// Select makes h the highlighted marker, clearing emphasis from whatever held
// it before. Passing the already-selected handle restarts its emphasis.
func (hl *Highlighter) Select(h surface.Handle) {
	if h == nil {
		return
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	if hl.timer != nil {
		hl.timer.Stop()
		hl.timer = nil
	}

	// Remove and reapply rather than leave unchanged -- the emphasis
	// animation may already be finished and must restart.
	if hl.current != nil {
		hl.surf.SetEmphasis(hl.current, false)
	}

	hl.current = h
	hl.surf.SetEmphasis(h, true)

	if hl.policy == POLICY_TRANSIENT {
		hl.timer = time.AfterFunc(hl.duration, func() {
			hl.expire(h)
		})
	}
}

// expire clears the emphasis visual once the transient duration has passed.
// The selection itself is kept, matching the state machine: only a data
// reload leaves the highlighted state.
func (hl *Highlighter) expire(h surface.Handle) {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if hl.current != h {
		return // Superseded by a newer selection.
	}

	hl.surf.SetEmphasis(h, false)
}

// Current returns the selected handle, or nil before the first selection.
func (hl *Highlighter) Current() surface.Handle {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	return hl.current
}

// Reset drops the selection without touching the surface. Called when the
// marker set is destroyed and rebuilt, which already removed the visuals.
func (hl *Highlighter) Reset() {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if hl.timer != nil {
		hl.timer.Stop()
		hl.timer = nil
	}

	hl.current = nil
}

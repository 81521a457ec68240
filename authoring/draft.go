// =========================================================================
// THE MARKER AUTHORING FLOW. A DRAFT IS AN EPHEMERAL EDITING SESSION
// ATTACHED TO A MAP POINT: COLLECT FIELDS, SERIALIZE TO AN EXPORT RECORD,
// HAND IT TO THE SINK. DRAFTS NEVER ENTER THE DATA MODEL AND ARE NEVER
// PERSISTED -- EXPORT IS THE ONLY WAY OUT.
// =========================================================================

package authoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"gwmap/surface"
)

type State = int

const (
	STATE_OPEN      State = iota // Fields editable, marker on the map.
	STATE_COMMITTED              // Serialized and handed to the sink; marker removal scheduled.
	STATE_ABANDONED              // Popup dismissed without commit; marker already gone.
)

// Name given to exports whose name field was left blank. A missing name must
// never block the export.
const PLACEHOLDER_NAME = "Unnamed Marker"

// How long a committed draft's marker lingers before removal, enough for the
// user to see the commit landed where they pointed.
const COMMIT_REMOVE_DELAY = 1500 * time.Millisecond

// ExportSinkError reports a sink write failure. The draft stays open so the
// user can retry.
type ExportSinkError struct {
	Err error
}

func (e *ExportSinkError) Error() string {
	return fmt.Sprintf("failed to write export record to sink: %v", e.Err)
}

func (e *ExportSinkError) Unwrap() error {
	return e.Err
}

// One name/description entry row. Only rows with a non-empty trimmed name
// make it into the export, and descriptions are not part of the exported
// shape at all -- they exist for the author's own notes.
type RelatedRow struct {
	Name        string
	Description string
}

// Draft is one authoring session. Created on a map double-click, destroyed on
// commit or dismissal.
type Draft struct {
	mu     sync.Mutex
	state  State
	surf   surface.MapSurface
	handle surface.Handle

	lat float64
	lng float64

	Name string
	Img  string
	Info string

	rows []RelatedRow

	removeDelay time.Duration
}

// NewDraft opens an authoring session at the given map point, placing a
// provisional marker there.
func NewDraft(surf surface.MapSurface, lat, lng float64) *Draft {
	h := surf.PlaceMarker(lat, lng, surface.Icon{Label: "new marker"})

	return &Draft{
		state:       STATE_OPEN,
		surf:        surf,
		handle:      h,
		lat:         lat,
		lng:         lng,
		removeDelay: COMMIT_REMOVE_DELAY,
	}
}

func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// Handle returns the provisional marker for this draft, or nil once removed.
func (d *Draft) Handle() surface.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.handle
}

// AddRow appends a related-item entry row.
func (d *Draft) AddRow(name, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rows = append(d.rows, RelatedRow{Name: name, Description: description})
}

// RemoveRow drops the row at index i. Out-of-range indices are ignored, the
// UI may race a remove against a re-render.
func (d *Draft) RemoveRow(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= len(d.rows) {
		return
	}

	d.rows = append(d.rows[:i], d.rows[i+1:]...)
}

func (d *Draft) Rows() []RelatedRow {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]RelatedRow{}, d.rows...)
}

// Commit serializes the draft and writes it to sink.
//
// On sink failure the draft stays open (and the marker stays put) so the user
// may retry; the error comes back as an [ExportSinkError]. On success the
// draft is committed and its marker is removed after a short fixed delay.
func (d *Draft) Commit(sink surface.ExportSink) (Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != STATE_OPEN {
		return Record{}, fmt.Errorf("draft is no longer open (state %d)", d.state)
	}

	rec := d.buildRecord()
	data, err := rec.Marshal()
	if err != nil {
		return Record{}, fmt.Errorf("failed to serialize export record: %w", err)
	}

	if err := sink.Write(data); err != nil {
		return Record{}, &ExportSinkError{Err: err}
	}

	d.state = STATE_COMMITTED

	h := d.handle
	d.handle = nil
	time.AfterFunc(d.removeDelay, func() {
		d.surf.RemoveMarker(h)
	})

	return rec, nil
}

// Abandon closes the session without exporting. The marker is removed
// immediately. Safe to call on an already-finished draft.
func (d *Draft) Abandon() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != STATE_OPEN {
		return
	}

	d.state = STATE_ABANDONED
	d.surf.RemoveMarker(d.handle)
	d.handle = nil
}

// SetRemoveDelay overrides the post-commit marker removal delay.
func (d *Draft) SetRemoveDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.removeDelay = delay
}

// ExportedItems returns the related-item names that would currently be
// exported: trimmed row names, blanks dropped.
func (d *Draft) ExportedItems() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return exportedItems(d.rows)
}

func exportedItems(rows []RelatedRow) []string {
	return lo.FilterMap(rows, func(r RelatedRow, _ int) (string, bool) {
		name := trimmed(r.Name)
		return name, name != ""
	})
}

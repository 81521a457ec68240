package authoring

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"gwmap/utils"
)

// Record is the clipboard-portable shape of an authored marker.
//
// Coordinates are captured from the placement point at fixed 6-digit
// precision, as strings, matching the source-document coordinate flavour so
// an exported record can be pasted straight into a category's locations
// array.
type Record struct {
	ID           string   `json:"id"`
	Lat          string   `json:"lat"`
	Lng          string   `json:"lng"`
	Name         string   `json:"name"`
	Img          string   `json:"img"`
	Info         string   `json:"info"`
	RelatedItems []string `json:"relatedItems"`
}

func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// buildRecord snapshots the draft fields into an export record.
// Caller holds d.mu.
func (d *Draft) buildRecord() Record {
	name := trimmed(d.Name)
	if name == "" {
		name = PLACEHOLDER_NAME
	}

	items := exportedItems(d.rows)
	if items == nil {
		items = []string{} // Exported shape always carries the array.
	}

	return Record{
		ID:           uuid.NewString(),
		Lat:          utils.FormatCoord(d.lat),
		Lng:          utils.FormatCoord(d.lng),
		Name:         name,
		Img:          trimmed(d.Img),
		Info:         trimmed(d.Info),
		RelatedItems: items,
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

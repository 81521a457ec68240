package worldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire shape of one category value in the source document.
type rawCategory struct {
	Color     string      `json:"color"`
	Locations []*Location `json:"locations"`
}

// ParseDocument decodes a source document of the form
//
//	{ "<category>": { "color": "...", "locations": [ ... ] }, ... }
//
// into an ordered category slice.
//
// JSON objects lose key order through a plain map decode, but sidebar and
// search results must follow document order, so the top level is walked with
// a token decoder to record each category's position of first appearance.
//
// Only malformed JSON fails the whole parse. A category without a locations
// array just comes back empty, and locations with unparseable coordinates are
// kept in the model (they still show in the sidebar) but excluded from
// placement via [Location.Coordinates].
func ParseDocument(data []byte) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("document root must be an object, got %v", tok)
	}

	var cats []Category
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading category name: %w", err)
		}

		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("category name must be a string, got %v", keyTok)
		}

		var raw rawCategory
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding category %q: %w", name, err)
		}

		locs := raw.Locations
		if locs == nil {
			locs = []*Location{} // Missing locations array degrades to an empty category.
		}

		cats = append(cats, Category{
			Name:      name,
			Color:     raw.Color,
			Locations: locs,
		})
	}

	// Consume the closing brace so trailing garbage still fails the parse.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}

	return cats, nil
}

// CountLocations sums location counts across categories.
func CountLocations(cats []Category) int {
	total := 0
	for _, c := range cats {
		total += len(c.Locations)
	}

	return total
}

// =========================================================================
// THE VISIBILITY/SEARCH ENGINE. PURE FUNCTIONS ONLY: GIVEN THE CURRENT
// CATEGORY SNAPSHOT AND A QUERY STRING, COMPUTE WHICH LOCATIONS ARE
// VISIBLE. RECONCILING THE MAP SURFACE AGAINST THE RESULT IS THE
// SESSION'S JOB, NOT OURS.
// =========================================================================

package search

import (
	"strings"

	"golang.org/x/text/cases"

	"gwmap/utils/sets"
	"gwmap/worldmap"
)

// One visible location. When related items contributed to the match,
// RelatedItems names the specific ones so the sidebar can annotate the row.
// It is empty when only the name matched.
type Match struct {
	Location     *worldmap.Location
	Category     *worldmap.Category
	RelatedItems []string
}

// ComputeMatches returns the locations visible under query, in stable
// document order (category order x location order within category). No
// relevance ranking and no truncation -- display caps are presentation
// policy and belong to the caller.
//
// A blank or whitespace-only query is the "show everything" sentinel: every
// location is returned with no related-item annotations.
//
// Matching is a case-insensitive (Unicode case folded) substring check
// against the location name OR any of its related items.
func ComputeMatches(query string, cats []worldmap.Category) []Match {
	q := strings.TrimSpace(query)
	if q == "" {
		return allMatches(cats)
	}

	fold := cases.Fold()
	needle := fold.String(q)

	var out []Match
	for i := range cats {
		cat := &cats[i]

		for _, loc := range cat.Locations {
			nameHit := strings.Contains(fold.String(loc.Name), needle)

			var matched []string
			seen := sets.New[string]()
			for _, item := range loc.RelatedItems {
				if !strings.Contains(fold.String(item), needle) {
					continue
				}

				// Hand-maintained documents repeat items sometimes; annotate each once.
				if seen.AppendIfUnseen(item) {
					matched = append(matched, item)
				}
			}

			if nameHit || len(matched) > 0 {
				out = append(out, Match{Location: loc, Category: cat, RelatedItems: matched})
			}
		}
	}

	return out
}

func allMatches(cats []worldmap.Category) []Match {
	out := make([]Match, 0, worldmap.CountLocations(cats))
	for i := range cats {
		cat := &cats[i]
		for _, loc := range cat.Locations {
			out = append(out, Match{Location: loc, Category: cat})
		}
	}

	return out
}

// VisibleSet collapses matches into a membership set, which is what the
// marker reconcile step needs to decide which placed markers survive.
func VisibleSet(matches []Match) sets.GenericSet[*worldmap.Location] {
	s := make(sets.GenericSet[*worldmap.Location], len(matches))
	for _, m := range matches {
		s.Append(m.Location)
	}

	return s
}

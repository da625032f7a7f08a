// Package dashboard implements the list-view core: search and ordering over
// the full in-memory set of mission records.
package dashboard

import (
	"sort"
	"strings"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// Filter returns the missions whose location or pilot contains the search
// term (case-insensitive substring match), sorted newest first. The input
// slice is not modified; an empty term matches everything.
func Filter(missions []types.Mission, term string) []types.Mission {
	needle := strings.ToLower(strings.TrimSpace(term))

	matched := make([]types.Mission, 0, len(missions))
	for _, m := range missions {
		if needle == "" ||
			strings.Contains(strings.ToLower(m.Location), needle) ||
			strings.Contains(strings.ToLower(m.Pilot), needle) {
			matched = append(matched, m)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return sortKey(matched[i]) > sortKey(matched[j])
	})
	return matched
}

// sortKey orders by start time, falling back to the created timestamp for
// records without one. Both layouts sort correctly as strings.
func sortKey(m types.Mission) string {
	if m.Start != "" {
		return m.Start
	}
	return m.Created
}

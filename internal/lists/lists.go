// Package lists manages the per-field suggestion lists offered as
// autocomplete choices in the mission form.
package lists

import (
	"github.com/saviobatista/rpas-logbook/internal/types"
)

// Defaults returns the built-in seed lists. Lists without useful built-ins
// (pilots, aircraft, locations) start empty and grow as missions are saved.
func Defaults() types.SuggestionLists {
	return types.SuggestionLists{
		types.ListPilots:    {},
		types.ListRPAS:      {},
		types.ListPayload:   {"RGB camera", "Thermal camera", "Multispectral sensor", "LiDAR", "None"},
		types.ListObservers: {},
		types.ListOpCategories: {
			"Micro (<250 g)", "Basic", "Advanced", "SFOC",
		},
		types.ListTypes: {
			"Photography", "Videography", "Survey / Mapping", "Inspection",
			"Training", "Search and Rescue", "Agriculture",
		},
		types.ListLocations: {},
		types.ListAirspaces: {
			"Class A", "Class B", "Class C", "Class D", "Class E", "Class F", "Class G",
		},
		types.ListAirspaceTypes: {"Controlled", "Uncontrolled", "Restricted", "Advisory"},
		types.ListAerodromes:    {},
	}
}

// MergeDefaults merges the built-in defaults into a persisted list store.
// Persisted entries keep their position; built-ins missing from the persisted
// data are appended so new defaults reappear even in old stores. The input is
// not modified.
func MergeDefaults(persisted types.SuggestionLists) types.SuggestionLists {
	merged := make(types.SuggestionLists, len(types.ListNames))
	defaults := Defaults()

	for _, name := range types.ListNames {
		values := append([]string(nil), persisted[name]...)
		merged[name] = values
		for _, v := range defaults[name] {
			Add(merged, name, v)
		}
	}

	// Carry any non-standard lists through untouched so a restore from a
	// newer format does not silently drop data.
	for name, values := range persisted {
		if _, ok := merged[name]; !ok {
			merged[name] = append([]string(nil), values...)
		}
	}

	return merged
}

// Add appends value to the named list if it is not already present.
// Empty values are ignored. Reports whether the store changed.
func Add(ls types.SuggestionLists, name, value string) bool {
	if value == "" {
		return false
	}
	for _, existing := range ls[name] {
		if existing == value {
			return false
		}
	}
	ls[name] = append(ls[name], value)
	return true
}

// Remove deletes value from the named list. Reports whether the store changed.
func Remove(ls types.SuggestionLists, name, value string) bool {
	values := ls[name]
	for i, existing := range values {
		if existing == value {
			ls[name] = append(values[:i:i], values[i+1:]...)
			return true
		}
	}
	return false
}

// Learn adds every list-backed field value of a saved mission to its list,
// skipping values already present. Reports whether the store changed.
func Learn(ls types.SuggestionLists, m types.Mission) bool {
	changed := false
	for name, value := range map[string]string{
		types.ListPilots:        m.Pilot,
		types.ListRPAS:          m.RPAS,
		types.ListPayload:       m.Payload,
		types.ListObservers:     m.Observer,
		types.ListOpCategories:  m.OpCategory,
		types.ListTypes:         m.Type,
		types.ListLocations:     m.Location,
		types.ListAirspaces:     m.Airspace,
		types.ListAirspaceTypes: m.AirspaceType,
	} {
		if Add(ls, name, value) {
			changed = true
		}
	}
	for _, aerodrome := range m.Aerodromes {
		if Add(ls, types.ListAerodromes, aerodrome) {
			changed = true
		}
	}
	return changed
}

// ValidName reports whether name is one of the known suggestion lists.
func ValidName(name string) bool {
	for _, known := range types.ListNames {
		if known == name {
			return true
		}
	}
	return false
}

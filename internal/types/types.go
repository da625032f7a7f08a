package types

import (
	"time"
)

// TimeLayout is the wire format for mission start/end times, matching the
// datetime-local inputs the field UI produces (no seconds, no zone).
const TimeLayout = "2006-01-02T15:04"

// DefaultDuration is added to a mission's start time to produce the default
// end time whenever start is edited.
const DefaultDuration = 30 * time.Minute

// Risk severity levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Coordinates holds a launch point as decimal-degree strings. GPS-acquired
// values carry six decimal places.
type Coordinates struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// RiskEntry is one checked hazard in a mission's risk assessment. An entry
// exists in Mission.Risks only while its hazard is checked; unchecking a
// hazard deletes the entry rather than keeping it with Checked=false.
type RiskEntry struct {
	Checked    bool   `json:"checked"`
	Level      string `json:"level"`
	Desc       string `json:"desc"`
	Mitigation string `json:"mitigation"`
}

// Mission is one logged RPAS flight operation. It is the sole persisted
// entity; field names follow the backup-document format so exported JSON
// round-trips with files produced by earlier versions of the tool.
type Mission struct {
	ID      string `json:"id"`
	Created string `json:"created"` // RFC3339, set once at first save

	Start string `json:"start"` // TimeLayout
	End   string `json:"end"`   // TimeLayout, defaults to Start+30m

	Location string      `json:"location"`
	Coords   Coordinates `json:"coords"`

	Pilot      string `json:"pilot"`
	RPAS       string `json:"rpas"`
	Observer   string `json:"observer"`
	Payload    string `json:"payload"`
	OpCategory string `json:"opCategory"`

	Airspace     string   `json:"airspace"`
	AirspaceType string   `json:"airspaceType"`
	Aerodromes   []string `json:"aerodromes"`
	Proximity    string   `json:"proximity"`
	NOTAMs       string   `json:"notams"`
	NavCanRef    string   `json:"navCanRef"`
	NavCanFile   string   `json:"navCanFile,omitempty"` // base64 attachment, or empty

	Temperature  string `json:"temperature"`
	WindSpeed    string `json:"windSpeed"`
	WindDir      string `json:"windDir"`
	Visibility   string `json:"visibility"`
	WeatherText  string `json:"weatherText"`
	WeatherImage string `json:"weatherImage,omitempty"`

	Type          string `json:"type"`
	FlightCount   int    `json:"flightCount"`
	ApproachAlt   string `json:"approachAlt"`
	ApproachRoute string `json:"approachRoute"`
	EmergencySite string `json:"emergencySite"`
	Description   string `json:"description"`
	Sketch        string `json:"sketch,omitempty"` // flattened PNG, base64

	Risks map[string]RiskEntry `json:"risks"`
}

// SuggestionLists maps a list name (see ListNames) to an ordered set of
// previously-used values offered as autocomplete choices.
type SuggestionLists map[string][]string

// Backup is the on-disk backup/restore document. Missions is the only field
// restore requires; everything else is optional.
type Backup struct {
	Version    string          `json:"version"`
	BackupDate string          `json:"backupDate"`
	Missions   []Mission       `json:"missions"`
	Lists      SuggestionLists `json:"lists,omitempty"`
}

// Hazards is the fixed catalogue of risk-assessment hazards, in the order
// they appear on the form and in CSV risk summaries.
var Hazards = []string{
	"Strong wind condition",
	"Low visibility or fog",
	"Precipitation",
	"Extreme temperature",
	"People within operating area",
	"Vehicle traffic nearby",
	"Obstacles (buildings, trees, wires)",
	"Electromagnetic interference",
	"Bird activity",
	"Loss of command and control link",
	"GPS signal degradation",
	"Battery failure",
	"Flyaway or loss of control",
	"Conflict with manned aircraft",
	"Crew fatigue or inexperience",
}

// Suggestion list names.
const (
	ListPilots        = "pilots"
	ListRPAS          = "rpas"
	ListPayload       = "payload"
	ListObservers     = "observers"
	ListOpCategories  = "opCategories"
	ListTypes         = "types"
	ListLocations     = "locations"
	ListAirspaces     = "airspaces"
	ListAirspaceTypes = "airspaceTypes"
	ListAerodromes    = "aerodromes"
)

// ListNames enumerates every suggestion list, in display order.
var ListNames = []string{
	ListPilots, ListRPAS, ListPayload, ListObservers, ListOpCategories,
	ListTypes, ListLocations, ListAirspaces, ListAirspaceTypes, ListAerodromes,
}

// IsHazard reports whether name is part of the fixed hazard catalogue.
func IsHazard(name string) bool {
	for _, h := range Hazards {
		if h == name {
			return true
		}
	}
	return false
}

// ParseLocalTime parses a start/end value in TimeLayout.
func ParseLocalTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// FormatClock renders a TimeLayout value as a 24-hour clock string for
// display, e.g. "2024-06-01T09:00" -> "09:00". Unparseable input is
// returned unchanged.
func FormatClock(s string) string {
	t, err := ParseLocalTime(s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

// AddMinutes shifts a TimeLayout value forward by the given number of
// minutes, preserving the layout. Unparseable input is returned unchanged.
func AddMinutes(s string, minutes int) string {
	t, err := ParseLocalTime(s)
	if err != nil {
		return s
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format(TimeLayout)
}

// DefaultEnd computes the default end time for a given start time.
func DefaultEnd(start string) string {
	return AddMinutes(start, int(DefaultDuration/time.Minute))
}

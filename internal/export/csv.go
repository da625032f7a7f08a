// Package export produces the CSV report and the JSON backup document, and
// parses backup documents on restore.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// ErrNoMissions is returned when a CSV export is requested for an empty set.
var ErrNoMissions = errors.New("no missions to export")

// utf8BOM makes common spreadsheet tools detect the encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeader is the fixed column order of the report.
var csvHeader = []string{
	"ID", "Created", "Start", "End",
	"Location", "Latitude", "Longitude",
	"Pilot", "Observer", "RPAS", "Payload", "Operation Category",
	"Mission Type", "Flights",
	"Airspace", "Airspace Type", "Aerodromes", "Proximity", "NOTAMs", "NAV CANADA Ref",
	"Temperature", "Wind Speed", "Wind Direction", "Visibility", "Weather Notes",
	"Approach Altitude", "Approach Route", "Emergency Site",
	"Description", "Risk Assessment",
}

// WriteCSV writes the mission report: a UTF-8 BOM, the header row and one
// row per mission in the given order. An empty set is an error and produces
// no output.
func WriteCSV(w io.Writer, missions []types.Mission) error {
	if len(missions) == 0 {
		return ErrNoMissions
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, m := range missions {
		row := []string{
			m.ID, m.Created, m.Start, m.End,
			m.Location, m.Coords.Lat, m.Coords.Lng,
			m.Pilot, m.Observer, m.RPAS, m.Payload, m.OpCategory,
			m.Type, strconv.Itoa(m.FlightCount),
			m.Airspace, m.AirspaceType, strings.Join(m.Aerodromes, "; "),
			m.Proximity, m.NOTAMs, m.NavCanRef,
			m.Temperature, m.WindSpeed, m.WindDir, m.Visibility, m.WeatherText,
			m.ApproachAlt, m.ApproachRoute, m.EmergencySite,
			m.Description, RiskSummary(m.Risks),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVFilename stamps the report filename with the current date.
func CSVFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, now.Format("2006-01-02"))
}

// RiskSummary flattens the risk table into one cell: checked hazards only,
// catalogue order, "<hazard> [<level or ->]" with the mitigation appended
// when present, joined by " | ". An empty risk set renders as "None".
func RiskSummary(risks map[string]types.RiskEntry) string {
	var parts []string
	for _, hazard := range orderedHazards(risks) {
		entry := risks[hazard]
		if !entry.Checked {
			continue
		}
		level := entry.Level
		if level == "" {
			level = "-"
		}
		part := fmt.Sprintf("%s [%s]", hazard, level)
		if entry.Mitigation != "" {
			part += fmt.Sprintf(" (Mitigation: %s)", entry.Mitigation)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, " | ")
}

// orderedHazards returns the risk keys in catalogue order, with any keys a
// restored document introduced outside the catalogue sorted at the end.
func orderedHazards(risks map[string]types.RiskEntry) []string {
	ordered := make([]string, 0, len(risks))
	for _, hazard := range types.Hazards {
		if _, ok := risks[hazard]; ok {
			ordered = append(ordered, hazard)
		}
	}
	var extras []string
	for hazard := range risks {
		if !types.IsHazard(hazard) {
			extras = append(extras, hazard)
		}
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}

// Package mission implements the three-step mission form: a single working
// draft, a step pointer, field updates and the save transition.
package mission

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// Wizard steps. Step 1 collects time/location/crew/airspace/weather,
// step 2 mission detail and the sketch, step 3 the risk table.
const (
	StepBasics = 1
	StepDetail = 2
	StepRisks  = 3
)

var (
	// ErrValidation is returned by Save when a required field is empty.
	ErrValidation = errors.New("location and pilot are required")
	// ErrNotFinalStep is returned by Save before the risk table step.
	ErrNotFinalStep = errors.New("save is only available on the final step")
)

// Form holds one working draft of a mission record and the wizard step
// pointer. A Form is not safe for concurrent use; one user drives one draft.
type Form struct {
	draft types.Mission
	step  int
}

// New starts a blank draft on step 1.
func New() *Form {
	return &Form{
		draft: types.Mission{
			FlightCount: 1,
			Risks:       make(map[string]types.RiskEntry),
		},
		step: StepBasics,
	}
}

// Edit starts a draft from an existing record on step 1. The record's id and
// created timestamp are carried through Save unchanged.
func Edit(m types.Mission) *Form {
	draft := cloneMission(m)
	if draft.Risks == nil {
		draft.Risks = make(map[string]types.RiskEntry)
	}
	if draft.FlightCount < 1 {
		draft.FlightCount = 1
	}
	return &Form{draft: draft, step: StepBasics}
}

// Step returns the current wizard step.
func (f *Form) Step() int {
	return f.step
}

// Next advances the step pointer; a no-op on the final step. There is no
// validation gate between steps.
func (f *Form) Next() {
	if f.step < StepRisks {
		f.step++
	}
}

// Back decrements the step pointer; a no-op on the first step.
func (f *Form) Back() {
	if f.step > StepBasics {
		f.step--
	}
}

// Draft returns a copy of the working draft.
func (f *Form) Draft() types.Mission {
	return cloneMission(f.draft)
}

// Set merges a single field value into the draft. Editing start always
// recomputes end as start+30m, overwriting any previously-set end.
func (f *Form) Set(field, value string) error {
	switch field {
	case "start":
		f.draft.Start = value
		f.draft.End = types.DefaultEnd(value)
	case "end":
		f.draft.End = value
	case "location":
		f.draft.Location = value
	case "pilot":
		f.draft.Pilot = value
	case "rpas":
		f.draft.RPAS = value
	case "observer":
		f.draft.Observer = value
	case "payload":
		f.draft.Payload = value
	case "opCategory":
		f.draft.OpCategory = value
	case "airspace":
		f.draft.Airspace = value
	case "airspaceType":
		f.draft.AirspaceType = value
	case "proximity":
		f.draft.Proximity = value
	case "notams":
		f.draft.NOTAMs = value
	case "navCanRef":
		f.draft.NavCanRef = value
	case "navCanFile":
		f.draft.NavCanFile = value
	case "temperature":
		f.draft.Temperature = value
	case "windSpeed":
		f.draft.WindSpeed = value
	case "windDir":
		f.draft.WindDir = value
	case "visibility":
		f.draft.Visibility = value
	case "weatherText":
		f.draft.WeatherText = value
	case "weatherImage":
		f.draft.WeatherImage = value
	case "type":
		f.draft.Type = value
	case "flightCount":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("flight count must be a positive integer, got %q", value)
		}
		f.draft.FlightCount = n
	case "approachAlt":
		f.draft.ApproachAlt = value
	case "approachRoute":
		f.draft.ApproachRoute = value
	case "emergencySite":
		f.draft.EmergencySite = value
	case "description":
		f.draft.Description = value
	case "sketch":
		f.draft.Sketch = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// SetCoords sets the launch coordinates.
func (f *Form) SetCoords(lat, lng string) {
	f.draft.Coords = types.Coordinates{Lat: lat, Lng: lng}
}

// AddAerodrome appends an aerodrome entry, keeping the set duplicate-free.
// Empty values are ignored. Reports whether the draft changed.
func (f *Form) AddAerodrome(value string) bool {
	if value == "" {
		return false
	}
	for _, existing := range f.draft.Aerodromes {
		if existing == value {
			return false
		}
	}
	f.draft.Aerodromes = append(f.draft.Aerodromes, value)
	return true
}

// RemoveAerodrome deletes an aerodrome entry. Reports whether the draft changed.
func (f *Form) RemoveAerodrome(value string) bool {
	for i, existing := range f.draft.Aerodromes {
		if existing == value {
			f.draft.Aerodromes = append(f.draft.Aerodromes[:i:i], f.draft.Aerodromes[i+1:]...)
			return true
		}
	}
	return false
}

// CheckRisk checks or unchecks a hazard. Unchecking deletes the entry
// outright; no checked=false entries are kept.
func (f *Form) CheckRisk(hazard string, checked bool) error {
	if !types.IsHazard(hazard) {
		return fmt.Errorf("unknown hazard %q", hazard)
	}
	if !checked {
		delete(f.draft.Risks, hazard)
		return nil
	}
	entry := f.draft.Risks[hazard]
	entry.Checked = true
	f.draft.Risks[hazard] = entry
	return nil
}

// SetRiskField overwrites one sub-field (level, desc or mitigation) of a
// hazard's entry, creating the entry with defaults when absent.
func (f *Form) SetRiskField(hazard, field, value string) error {
	if !types.IsHazard(hazard) {
		return fmt.Errorf("unknown hazard %q", hazard)
	}

	entry := f.draft.Risks[hazard]
	switch field {
	case "level":
		switch value {
		case "", types.RiskLow, types.RiskMedium, types.RiskHigh:
			entry.Level = value
		default:
			return fmt.Errorf("invalid risk level %q", value)
		}
	case "desc":
		entry.Desc = value
	case "mitigation":
		entry.Mitigation = value
	default:
		return fmt.Errorf("unknown risk field %q", field)
	}
	f.draft.Risks[hazard] = entry
	return nil
}

// Save validates the draft and commits it to a finished record: a fresh id
// and created timestamp for new records, both unchanged for edits. The form
// state is left intact when validation fails.
func (f *Form) Save(now time.Time) (types.Mission, error) {
	if f.step != StepRisks {
		return types.Mission{}, ErrNotFinalStep
	}
	if f.draft.Location == "" || f.draft.Pilot == "" {
		return types.Mission{}, ErrValidation
	}

	if f.draft.ID == "" {
		f.draft.ID = uuid.New().String()
		f.draft.Created = now.UTC().Format(time.RFC3339)
	}

	return cloneMission(f.draft), nil
}

func cloneMission(m types.Mission) types.Mission {
	clone := m
	clone.Aerodromes = append([]string(nil), m.Aerodromes...)
	if m.Risks != nil {
		clone.Risks = make(map[string]types.RiskEntry, len(m.Risks))
		for hazard, entry := range m.Risks {
			clone.Risks[hazard] = entry
		}
	}
	return clone
}

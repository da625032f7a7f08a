package mission

import (
	"errors"
	"testing"
	"time"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

func finish(f *Form) {
	f.Next()
	f.Next()
}

func TestForm_StepTransitions(t *testing.T) {
	f := New()

	if f.Step() != StepBasics {
		t.Errorf("Expected new form on step %d, got %d", StepBasics, f.Step())
	}

	// Back is a no-op at the lower boundary.
	f.Back()
	if f.Step() != StepBasics {
		t.Errorf("Expected Back at step 1 to be a no-op, got %d", f.Step())
	}

	f.Next()
	if f.Step() != StepDetail {
		t.Errorf("Expected step %d after Next, got %d", StepDetail, f.Step())
	}

	f.Next()
	f.Next() // no-op at the upper boundary
	if f.Step() != StepRisks {
		t.Errorf("Expected Next at step 3 to be a no-op, got %d", f.Step())
	}

	f.Back()
	if f.Step() != StepDetail {
		t.Errorf("Expected step %d after Back, got %d", StepDetail, f.Step())
	}
}

func TestForm_SetStartRecomputesEnd(t *testing.T) {
	f := New()

	if err := f.Set("start", "2024-06-01T09:00"); err != nil {
		t.Fatalf("Set(start) failed: %v", err)
	}
	if got := f.Draft().End; got != "2024-06-01T09:30" {
		t.Errorf("Expected end = 2024-06-01T09:30, got %q", got)
	}

	// End stays independently editable afterward...
	if err := f.Set("end", "2024-06-01T11:00"); err != nil {
		t.Fatalf("Set(end) failed: %v", err)
	}
	if got := f.Draft().End; got != "2024-06-01T11:00" {
		t.Errorf("Expected end = 2024-06-01T11:00, got %q", got)
	}

	// ...but editing start again overwrites even a customized end.
	if err := f.Set("start", "2024-06-01T14:00"); err != nil {
		t.Fatalf("Set(start) failed: %v", err)
	}
	if got := f.Draft().End; got != "2024-06-01T14:30" {
		t.Errorf("Expected end recomputed to 2024-06-01T14:30, got %q", got)
	}
}

func TestForm_SetFlightCount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		want    int
	}{
		{name: "valid count", value: "3", want: 3},
		{name: "zero rejected", value: "0", wantErr: true, want: 1},
		{name: "negative rejected", value: "-2", wantErr: true, want: 1},
		{name: "non-numeric rejected", value: "two", wantErr: true, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			err := f.Set("flightCount", tt.value)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			if got := f.Draft().FlightCount; got != tt.want {
				t.Errorf("Expected flight count %d, got %d", tt.want, got)
			}
		})
	}
}

func TestForm_SetUnknownField(t *testing.T) {
	f := New()
	if err := f.Set("altimeter", "29.92"); err == nil {
		t.Error("Expected error for unknown field, got none")
	}
}

func TestForm_Aerodromes(t *testing.T) {
	f := New()

	if !f.AddAerodrome("CYOW") {
		t.Error("Expected first add to report a change")
	}
	if f.AddAerodrome("CYOW") {
		t.Error("Expected duplicate add to report no change")
	}
	if f.AddAerodrome("") {
		t.Error("Expected empty value to be ignored")
	}
	f.AddAerodrome("CYRO")

	if !f.RemoveAerodrome("CYOW") {
		t.Error("Expected remove of existing entry to report a change")
	}
	if f.RemoveAerodrome("CYOW") {
		t.Error("Expected remove of missing entry to report no change")
	}

	got := f.Draft().Aerodromes
	if len(got) != 1 || got[0] != "CYRO" {
		t.Errorf("Expected aerodromes [CYRO], got %v", got)
	}
}

func TestForm_RiskEntryLifecycle(t *testing.T) {
	f := New()
	hazard := "Strong wind condition"

	// Setting a sub-field creates the entry with defaults.
	if err := f.SetRiskField(hazard, "mitigation", "Abort if gusts exceed 30km/h"); err != nil {
		t.Fatalf("SetRiskField failed: %v", err)
	}
	entry, ok := f.Draft().Risks[hazard]
	if !ok {
		t.Fatal("Expected entry to be created")
	}
	if entry.Checked {
		t.Error("Expected defaulted entry to be unchecked")
	}
	if entry.Mitigation != "Abort if gusts exceed 30km/h" {
		t.Errorf("Expected mitigation to be set, got %q", entry.Mitigation)
	}

	if err := f.CheckRisk(hazard, true); err != nil {
		t.Fatalf("CheckRisk failed: %v", err)
	}
	if err := f.SetRiskField(hazard, "level", types.RiskHigh); err != nil {
		t.Fatalf("SetRiskField failed: %v", err)
	}
	entry = f.Draft().Risks[hazard]
	if !entry.Checked || entry.Level != types.RiskHigh {
		t.Errorf("Expected checked High entry, got %+v", entry)
	}
	if entry.Mitigation != "Abort if gusts exceed 30km/h" {
		t.Error("Expected mitigation to survive further edits")
	}

	// Unchecking deletes the entry outright; no orphaned checked=false entries.
	if err := f.CheckRisk(hazard, false); err != nil {
		t.Fatalf("CheckRisk failed: %v", err)
	}
	if _, ok := f.Draft().Risks[hazard]; ok {
		t.Error("Expected entry to be deleted when unchecked")
	}
}

func TestForm_RiskValidation(t *testing.T) {
	f := New()

	if err := f.CheckRisk("Meteor strike", true); err == nil {
		t.Error("Expected unknown hazard to be rejected")
	}
	if err := f.SetRiskField("Strong wind condition", "severity", "High"); err == nil {
		t.Error("Expected unknown risk field to be rejected")
	}
	if err := f.SetRiskField("Strong wind condition", "level", "Catastrophic"); err == nil {
		t.Error("Expected invalid level to be rejected")
	}
}

func TestForm_SaveValidation(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save gated to final step", func(t *testing.T) {
		f := New()
		f.Set("location", "Riverside Park")
		f.Set("pilot", "J. Santos")
		if _, err := f.Save(now); !errors.Is(err, ErrNotFinalStep) {
			t.Errorf("Expected ErrNotFinalStep, got %v", err)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		f := New()
		f.Set("location", "Riverside Park")
		finish(f)
		if _, err := f.Save(now); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
		// Form state unchanged: fixing the field lets the same form save.
		f.Set("pilot", "J. Santos")
		if _, err := f.Save(now); err != nil {
			t.Errorf("Expected save to succeed after fixing, got %v", err)
		}
	})
}

func TestForm_SaveAssignsIdentityOnce(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f := New()
	f.Set("location", "Riverside Park")
	f.Set("pilot", "J. Santos")
	finish(f)

	saved, err := f.Save(now)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Expected new record to get an id")
	}
	if saved.Created != "2024-06-01T12:00:00Z" {
		t.Errorf("Expected created = 2024-06-01T12:00:00Z, got %q", saved.Created)
	}

	// Editing the saved record keeps id and created.
	later := now.Add(48 * time.Hour)
	edit := Edit(saved)
	edit.Set("description", "second survey pass")
	finish(edit)

	resaved, err := edit.Save(later)
	if err != nil {
		t.Fatalf("Save of edit failed: %v", err)
	}
	if resaved.ID != saved.ID {
		t.Errorf("Expected id to be unchanged, got %q want %q", resaved.ID, saved.ID)
	}
	if resaved.Created != saved.Created {
		t.Errorf("Expected created to be immutable, got %q want %q", resaved.Created, saved.Created)
	}
}

func TestForm_DraftIsACopy(t *testing.T) {
	f := New()
	f.AddAerodrome("CYOW")
	f.CheckRisk("Bird activity", true)

	draft := f.Draft()
	draft.Aerodromes[0] = "tampered"
	delete(draft.Risks, "Bird activity")

	fresh := f.Draft()
	if fresh.Aerodromes[0] != "CYOW" {
		t.Error("Expected aerodromes to be defensively copied")
	}
	if _, ok := fresh.Risks["Bird activity"]; !ok {
		t.Error("Expected risks to be defensively copied")
	}
}

func TestEdit_NormalizesLegacyRecords(t *testing.T) {
	f := Edit(types.Mission{ID: "a", FlightCount: 0, Risks: nil})
	draft := f.Draft()
	if draft.FlightCount != 1 {
		t.Errorf("Expected flight count defaulted to 1, got %d", draft.FlightCount)
	}
	if err := f.CheckRisk("Bird activity", true); err != nil {
		t.Errorf("Expected risks map to be initialized, got %v", err)
	}
}

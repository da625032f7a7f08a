package dashboard

import (
	"testing"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

func sampleMissions() []types.Mission {
	return []types.Mission{
		{ID: "old", Start: "2024-05-01T09:00", Location: "Riverside Park", Pilot: "J. Santos"},
		{ID: "new", Start: "2024-06-10T14:00", Location: "Gravel Quarry", Pilot: "A. Silva"},
		{ID: "mid", Start: "2024-06-01T09:00", Location: "Riverside Park", Pilot: "A. Silva"},
		{ID: "nostart", Created: "2024-06-05T08:00:00Z", Location: "Harbour", Pilot: "J. Santos"},
	}
}

func ids(missions []types.Mission) []string {
	out := make([]string, len(missions))
	for i, m := range missions {
		out[i] = m.ID
	}
	return out
}

func TestFilter_EmptyTermReturnsAllSorted(t *testing.T) {
	got := Filter(sampleMissions(), "")
	want := []string{"new", "nostart", "mid", "old"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d missions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Position %d: got %q, want %q (order: %v)", i, got[i].ID, id, ids(got))
		}
	}
}

func TestFilter_MatchesLocationAndPilot(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "location match, case-insensitive", term: "riverside", want: []string{"mid", "old"}},
		{name: "pilot match", term: "Silva", want: []string{"new", "mid"}},
		{name: "substring match", term: "quarr", want: []string{"new"}},
		{name: "no match", term: "antenna", want: []string{}},
		{name: "whitespace trimmed", term: "  harbour ", want: []string{"nostart"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleMissions(), tt.term)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d matches, got %d: %v", len(tt.want), len(got), ids(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Position %d: got %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilter_StartFallsBackToCreated(t *testing.T) {
	missions := []types.Mission{
		{ID: "a", Created: "2024-06-01T08:00:00Z", Location: "x"},
		{ID: "b", Created: "2024-06-02T08:00:00Z", Location: "x"},
	}
	got := Filter(missions, "")
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("Expected created-based descending order [b a], got %v", ids(got))
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	missions := sampleMissions()
	first := missions[0].ID
	_ = Filter(missions, "")
	if missions[0].ID != first {
		t.Error("Expected input slice to be unchanged")
	}
}

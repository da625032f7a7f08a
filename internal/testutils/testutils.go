package testutils

import (
	"fmt"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// MockMission creates a minimal valid mission record for testing
func MockMission(n int) types.Mission {
	return types.Mission{
		ID:          fmt.Sprintf("mission-%03d", n),
		Created:     fmt.Sprintf("2024-06-%02dT08:00:00Z", n%27+1),
		Start:       fmt.Sprintf("2024-06-%02dT09:00", n%27+1),
		End:         fmt.Sprintf("2024-06-%02dT09:30", n%27+1),
		Location:    fmt.Sprintf("Test Site %d", n),
		Pilot:       "Test Pilot",
		RPAS:        "Test RPAS (C-0000)",
		FlightCount: 1,
		Risks:       map[string]types.RiskEntry{},
	}
}

// MockMissions creates n mission records with distinct ids
func MockMissions(n int) []types.Mission {
	missions := make([]types.Mission, n)
	for i := range missions {
		missions[i] = MockMission(i + 1)
	}
	return missions
}

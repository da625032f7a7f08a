// Package geo acquires the launch coordinates with a one-shot request to a
// geolocation provider. Failures are terminal for the triggering action;
// the caller keeps whatever coordinates it already had.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/zsefvlol/timezonemapper"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// Fix is one acquired position: decimal-degree strings at six places plus
// the IANA timezone of the spot, useful when logging away from home.
type Fix struct {
	Coords   types.Coordinates `json:"coords"`
	Timezone string            `json:"timezone"`
}

// Locator performs one-shot position requests against an HTTP provider.
type Locator struct {
	url    string
	client *http.Client
}

// NewLocator creates a locator for the given provider URL. The timeout is a
// fixed upper bound on the whole request; there are no retries.
func NewLocator(url string, timeout time.Duration) *Locator {
	return &Locator{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Locate requests the current position once and converts it to a Fix.
func (l *Locator) Locate(ctx context.Context) (*Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build location request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach location provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode location response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return nil, fmt.Errorf("location provider refused: %s", payload.Message)
	}

	return &Fix{
		Coords: types.Coordinates{
			Lat: strconv.FormatFloat(payload.Lat, 'f', 6, 64),
			Lng: strconv.FormatFloat(payload.Lon, 'f', 6, 64),
		},
		Timezone: timezonemapper.LatLngToTimezoneString(payload.Lat, payload.Lon),
	}, nil
}

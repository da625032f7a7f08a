package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLocate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":45.42153,"lon":-75.697193}`))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, time.Second)
	fix, err := locator.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if fix.Coords.Lat != "45.421530" {
		t.Errorf("Expected lat 45.421530 (six decimals), got %q", fix.Coords.Lat)
	}
	if fix.Coords.Lng != "-75.697193" {
		t.Errorf("Expected lng -75.697193, got %q", fix.Coords.Lng)
	}
	if fix.Timezone != "America/Toronto" {
		t.Errorf("Expected timezone America/Toronto, got %q", fix.Timezone)
	}
}

func TestLocate_ProviderWithoutStatusField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":-23.5505,"lon":-46.6333}`))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, time.Second)
	fix, err := locator.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if fix.Coords.Lat != "-23.550500" {
		t.Errorf("Expected lat -23.550500, got %q", fix.Coords.Lat)
	}
}

func TestLocate_ProviderRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, time.Second)
	if _, err := locator.Locate(context.Background()); err == nil {
		t.Error("Expected error for provider refusal, got none")
	}
}

func TestLocate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	locator := NewLocator(server.URL, time.Second)
	if _, err := locator.Locate(context.Background()); err == nil {
		t.Error("Expected error for HTTP 503, got none")
	}
}

func TestLocate_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, time.Second)
	if _, err := locator.Locate(context.Background()); err == nil {
		t.Error("Expected error for unparseable body, got none")
	}
}

func TestLocate_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	locator := NewLocator(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := locator.Locate(context.Background())
	if err == nil {
		t.Fatal("Expected timeout error, got none")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected the fixed upper bound to apply, took %v", elapsed)
	}
}

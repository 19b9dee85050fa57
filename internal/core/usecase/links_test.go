package usecase

import (
	"net/url"
	"strings"
	"testing"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

func TestBuildDirectionsURL(t *testing.T) {
	got := BuildDirectionsURL(
		domain.Coordinates{Lat: -12.05, Lng: -77.03},
		domain.Coordinates{Lat: -12.06, Lng: -77.04},
		TravelModeWalking,
	)

	if !strings.HasPrefix(got, "https://www.google.com/maps/dir/?") {
		t.Fatalf("unexpected base url: %q", got)
	}

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("generated url does not parse: %v", err)
	}
	query := parsed.Query()
	if query.Get("origin") != "-12.05,-77.03" {
		t.Fatalf("origin = %q", query.Get("origin"))
	}
	if query.Get("destination") != "-12.06,-77.04" {
		t.Fatalf("destination = %q", query.Get("destination"))
	}
	if query.Get("travelmode") != "walking" {
		t.Fatalf("travelmode = %q", query.Get("travelmode"))
	}
}

func TestBuildDirectionsURLDefaultsToWalking(t *testing.T) {
	got := BuildDirectionsURL(domain.Coordinates{}, domain.Coordinates{Lat: 1, Lng: 2}, "")
	if !strings.Contains(got, "travelmode=walking") {
		t.Fatalf("expected walking default, got %q", got)
	}
}

func TestTravelModeFor(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{120, TravelModeWalking},
		{2000, TravelModeWalking},
		{2001, TravelModeDriving},
		{5500, TravelModeDriving},
		{domain.UnknownDistance, TravelModeWalking},
	}
	for _, tc := range cases {
		if got := TravelModeFor(tc.meters); got != tc.want {
			t.Fatalf("TravelModeFor(%v) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

package usecase

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

const (
	TravelModeWalking = "walking"
	TravelModeDriving = "driving"
)

// Distances past this are not realistically walked in Lima traffic.
const drivingDistanceMeters = 2000

// TravelModeFor picks the directions travel mode from the distance to
// the destination. Unknown distances default to walking.
func TravelModeFor(distanceMeters float64) string {
	if distanceMeters > drivingDistanceMeters {
		return TravelModeDriving
	}
	return TravelModeWalking
}

const directionsBaseURL = "https://www.google.com/maps/dir/"

// BuildDirectionsURL renders the map provider's directions URL for an
// origin/destination pair. Rendering only; the URL is never parsed back.
func BuildDirectionsURL(origin, destination domain.Coordinates, mode string) string {
	if mode == "" {
		mode = TravelModeWalking
	}
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", formatCoords(origin))
	params.Set("destination", formatCoords(destination))
	params.Set("travelmode", mode)
	return directionsBaseURL + "?" + params.Encode()
}

func formatCoords(c domain.Coordinates) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(c.Lat, 'f', -1, 64),
		strconv.FormatFloat(c.Lng, 'f', -1, 64),
	)
}

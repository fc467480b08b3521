package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
)

// MockGeolocationProvider resolves a handful of known cities and places
// everything else at a fixed default point.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

var mockCities = []struct {
	name   string
	coords providers.Coordinates
}{
	{"New York", providers.Coordinates{Latitude: 40.7128, Longitude: -74.0060}},
	{"Los Angeles", providers.Coordinates{Latitude: 34.0522, Longitude: -118.2437}},
	{"Chicago", providers.Coordinates{Latitude: 41.8781, Longitude: -87.6298}},
	{"Denver", providers.Coordinates{Latitude: 39.7392, Longitude: -104.9903}},
	{"Yosemite", providers.Coordinates{Latitude: 37.8651, Longitude: -119.5383}},
	{"Lagos", providers.Coordinates{Latitude: 6.5244, Longitude: 3.3792}},
}

// Geocode returns coordinates for known city names, a default point otherwise.
// Blank addresses fail the way a real geocoder would.
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	lower := strings.ToLower(trimmed)
	for _, city := range mockCities {
		if strings.Contains(lower, strings.ToLower(city.name)) {
			return &providers.GeocodedAddress{FormattedAddress: trimmed, Coordinates: city.coords}, nil
		}
	}

	return &providers.GeocodedAddress{
		FormattedAddress: trimmed,
		Coordinates:      providers.Coordinates{Latitude: 37.7749, Longitude: -122.4194},
	}, nil
}

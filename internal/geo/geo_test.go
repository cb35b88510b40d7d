package geo

import (
	"testing"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStaticProvider_GetLocation(t *testing.T) {
	p := NewStaticProvider(40.7128, -74.0060)
	loc := p.GetLocation()
	assert.Equal(t, 40.7128, loc.Latitude)
	assert.Equal(t, -74.0060, loc.Longitude)
}

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	d := DistanceMeters(40.0, -74.0, 40.0, -74.0)
	assert.InDelta(t, 0, d, 1e-6)
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// Roughly 1 degree of latitude is ~111km.
	d := DistanceMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 2000)
}

func TestContains_WithinRadius(t *testing.T) {
	zone := domain.Geofence{Name: "airport", Latitude: 40.0, Longitude: -74.0, RadiusKM: 5}
	assert.True(t, Contains(zone, 40.01, -74.0))
}

func TestContains_OutsideRadius(t *testing.T) {
	zone := domain.Geofence{Name: "airport", Latitude: 40.0, Longitude: -74.0, RadiusKM: 1}
	assert.False(t, Contains(zone, 41.0, -74.0))
}

func TestAnyContains_FindsMatchingZone(t *testing.T) {
	zones := []domain.Geofence{
		{Name: "far", Latitude: 10, Longitude: 10, RadiusKM: 1},
		{Name: "near", Latitude: 40.0, Longitude: -74.0, RadiusKM: 5},
	}
	name, ok := AnyContains(zones, 40.02, -74.0)
	assert.True(t, ok)
	assert.Equal(t, "near", name)
}

func TestAnyContains_NoMatch(t *testing.T) {
	zones := []domain.Geofence{{Name: "far", Latitude: 10, Longitude: 10, RadiusKM: 1}}
	_, ok := AnyContains(zones, 40.0, -74.0)
	assert.False(t, ok)
}

// Package geo provides the sensor's own position, restricted-zone
// membership, and great-circle distance, used by the threat-assessment
// rule set in §4.8.
package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// Location represents a geographic coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Provider defines the interface for obtaining the sensor's current
// location, mirroring the teacher's geo.Provider abstraction.
type Provider interface {
	GetLocation() Location
}

// StaticProvider implements Provider with a fixed location, the
// expected configuration for a stationary ground sensor.
type StaticProvider struct {
	Lat float64
	Lng float64
}

func NewStaticProvider(lat, lng float64) *StaticProvider {
	return &StaticProvider{Lat: lat, Lng: lng}
}

func (s *StaticProvider) GetLocation() Location {
	return Location{Latitude: s.Lat, Longitude: s.Lng}
}

// DistanceMeters returns the great-circle distance between two
// coordinates in meters, used for both zone-membership and
// operator-distance checks in §4.8.
func DistanceMeters(aLat, aLon, bLat, bLon float64) float64 {
	a := orb.Point{aLon, aLat}
	b := orb.Point{bLon, bLat}
	return orbgeo.Distance(a, b)
}

// Contains reports whether point lies within zone, per the
// haversine-distance-to-radius membership rule of §4.8: distance to
// the zone center at most radius (in kilometers, converted to
// meters).
func Contains(zone domain.Geofence, lat, lon float64) bool {
	distance := DistanceMeters(zone.Latitude, zone.Longitude, lat, lon)
	return distance <= zone.RadiusKM*1000
}

// AnyContains reports whether point lies within any of zones, and
// returns the name of the first matching zone.
func AnyContains(zones []domain.Geofence, lat, lon float64) (string, bool) {
	for _, zone := range zones {
		if Contains(zone, lat, lon) {
			return zone.Name, true
		}
	}
	return "", false
}

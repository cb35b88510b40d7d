package domain

// Geofence is a circular exclusion/alert zone used by the Threat/Fusion
// scorer. Radius is expressed in kilometers to match paulmach/orb's geo
// helpers, which operate on orb.Point (lon, lat) pairs.
type Geofence struct {
	Name      string
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

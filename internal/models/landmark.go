package models

import "treasurehunt/internal/resources"

// Landmark stores latitude and longitude along with a hint to help the
// hunter find the place.
type Landmark struct {
	ID      string        `json:"id"`
	Hint    resources.Key `json:"hint"`
	Name    resources.Key `json:"name"`
	LatLong Coordinates   `json:"lat_long"`
}

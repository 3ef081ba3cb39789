package geofence

import (
	"treasurehunt/internal/models"
	"treasurehunt/internal/resources"
)

var landmarkData = [...]models.Landmark{
	{
		ID:      "enter",
		Hint:    resources.EnterHint,
		Name:    resources.EnterLocation,
		LatLong: models.Coordinates{Lat: 47.21689192142189, Lon: 39.62897267192602},
	},
	{
		ID:      "corner",
		Hint:    resources.CornerHint,
		Name:    resources.CornerLocation,
		LatLong: models.Coordinates{Lat: 47.21710188614177, Lon: 39.628587774932384},
	},
	{
		ID:      "corner2",
		Hint:    resources.Corner2Hint,
		Name:    resources.Corner2Location,
		LatLong: models.Coordinates{Lat: 47.21676530455121, Lon: 39.627951085567474},
	},
	{
		ID:      "corner3",
		Hint:    resources.Corner3Hint,
		Name:    resources.Corner3Location,
		LatLong: models.Coordinates{Lat: 47.21624949708838, Lon: 39.6287252381444},
	},
	{
		ID:      "barrier",
		Hint:    resources.BarrierHint,
		Name:    resources.BarrierLocation,
		LatLong: models.Coordinates{Lat: 47.21662024132597, Lon: 39.62933074682951},
	},
	{
		ID:      "smoking_place",
		Hint:    resources.SmokingPlaceHint,
		Name:    resources.SmokingPlaceLocation,
		LatLong: models.Coordinates{Lat: 47.21692721923663, Lon: 39.62891299277544},
	},
}

// NumLandmarks is the size of the catalog.
const NumLandmarks = len(landmarkData)

// Landmarks returns the catalog in hunt order. The slice is a copy.
func Landmarks() []models.Landmark {
	out := make([]models.Landmark, NumLandmarks)
	copy(out, landmarkData[:])
	return out
}

// LandmarkAt returns the landmark at position i.
func LandmarkAt(i int) (models.Landmark, bool) {
	if i < 0 || i >= NumLandmarks {
		return models.Landmark{}, false
	}
	return landmarkData[i], true
}

// IndexOf returns the catalog position of the landmark with the given id, or
// -1.
func IndexOf(id string) int {
	for i, l := range landmarkData {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether p lies inside the fence registered for l.
func Contains(l models.Landmark, p models.Coordinates) bool {
	return l.LatLong.DistanceMeters(p) <= float64(RadiusInMeters)
}

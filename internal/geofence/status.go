package geofence

import "treasurehunt/internal/resources"

// Status codes reported by the geofencing service.
const (
	StatusSuccess               = 0
	StatusNotAvailable          = 1000
	StatusTooManyGeofences      = 1001
	StatusTooManyPendingIntents = 1002
)

// ErrorMessage returns the text for a geofencing error code. Codes the
// service does not define resolve to the generic unknown-error text.
func ErrorMessage(res resources.Strings, errorCode int) string {
	switch errorCode {
	case StatusNotAvailable:
		return res.GetString(resources.GeofenceNotAvailable)
	case StatusTooManyGeofences:
		return res.GetString(resources.GeofenceTooManyGeofences)
	case StatusTooManyPendingIntents:
		return res.GetString(resources.GeofenceTooManyPendingIntents)
	default:
		return res.GetString(resources.UnknownGeofenceError)
	}
}

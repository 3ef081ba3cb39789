// Package geofence holds the landmark catalog of the hunt, the parameters every
// fence is registered with, and the text shown when the geofencing service
// rejects a request.
package geofence

import "time"

// Expiration is how long location services track a fence before dropping
// it. For this hunt, fences expire after one hour.
const Expiration = time.Hour

// ExpirationInMilliseconds is Expiration in the unit the geofencing service
// takes.
const ExpirationInMilliseconds int64 = int64(Expiration / time.Millisecond)

// RadiusInMeters is the radius of every landmark fence.
const RadiusInMeters float32 = 20

// ExtraGeofenceIndex is the key the active fence index travels under.
const ExtraGeofenceIndex = "GEOFENCE_INDEX"

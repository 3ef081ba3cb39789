// Package resources holds the user-facing text of the hunt. Components refer
// to messages by Key and resolve them through a Strings value supplied by the
// caller, so the same catalog can be rendered in any locale.
package resources

import (
	"encoding/json"
	"fmt"
	"io"
)

// Key identifies a message.
type Key string

const (
	EnterHint            Key = "enter_hint"
	EnterLocation        Key = "enter_location"
	CornerHint           Key = "corner_hint"
	CornerLocation       Key = "corner_location"
	Corner2Hint          Key = "corner_2_hint"
	Corner2Location      Key = "corner_2_location"
	Corner3Hint          Key = "corner_3_hint"
	Corner3Location      Key = "corner_3_location"
	BarrierHint          Key = "barrier_hint"
	BarrierLocation      Key = "barrier_location"
	SmokingPlaceHint     Key = "smoking_place_hint"
	SmokingPlaceLocation Key = "smoking_place_location"

	GeofenceNotAvailable          Key = "geofence_not_available"
	GeofenceTooManyGeofences      Key = "geofence_too_many_geofences"
	GeofenceTooManyPendingIntents Key = "geofence_too_many_pending_intents"
	UnknownGeofenceError          Key = "unknown_geofence_error"

	HuntCompleted Key = "hunt_completed"
)

// Strings resolves a Key to display text.
type Strings interface {
	GetString(key Key) string
}

// Table is a flat key to text mapping.
type Table map[Key]string

// GetString returns the text for key. A key the table does not define comes
// back as its own name.
func (t Table) GetString(key Key) string {
	if s, ok := t[key]; ok {
		return s
	}
	return string(key)
}

// WithFallback layers t over fallback: keys missing from t are looked up in
// fallback.
func (t Table) WithFallback(fallback Strings) Strings {
	return layered{primary: t, fallback: fallback}
}

type layered struct {
	primary  Table
	fallback Strings
}

func (l layered) GetString(key Key) string {
	if s, ok := l.primary[key]; ok {
		return s
	}
	return l.fallback.GetString(key)
}

// DecodeTable reads a JSON object of key to text.
func DecodeTable(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode string table: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

var english = Table{
	EnterHint:            "Start where everybody comes in. Look for the main gate.",
	EnterLocation:        "Main entrance",
	CornerHint:           "Walk along the fence until it turns for the first time.",
	CornerLocation:       "North corner",
	Corner2Hint:          "Keep the fence on your right and find the next turn.",
	Corner2Location:      "West corner",
	Corner3Hint:          "The last turn of the fence is furthest from the gate.",
	Corner3Location:      "South corner",
	BarrierHint:          "Cars stop here before they are let through.",
	BarrierLocation:      "Barrier",
	SmokingPlaceHint:     "Follow the smell of tobacco back towards the entrance.",
	SmokingPlaceLocation: "Smoking place",

	GeofenceNotAvailable:          "Geofence service is not available now. Go to Settings>Location>Mode and choose High accuracy.",
	GeofenceTooManyGeofences:      "Your app has registered too many geofences.",
	GeofenceTooManyPendingIntents: "You have provided too many PendingIntents to the addGeofences() call.",
	UnknownGeofenceError:          "Unknown error: the Geofence service is not available now.",

	HuntCompleted: "Congratulations! You have found every landmark.",
}

// English returns a copy of the built-in English table.
func English() Table {
	t := make(Table, len(english))
	for k, v := range english {
		t[k] = v
	}
	return t
}

package hunt

import (
	"encoding/json"
	"fmt"

	"treasurehunt/internal/models"
)

// Transition is the kind of fence crossing the geofencing service reported.
type Transition string

const (
	TransitionEnter Transition = "enter"
	TransitionExit  Transition = "exit"
	TransitionDwell Transition = "dwell"
)

// GeofencingEvent is what the device forwards when location services fire
// for one of the hunt's fences.
type GeofencingEvent struct {
	HunterID      string              `json:"hunter_id"`
	ErrorCode     int                 `json:"error_code"`
	Transition    Transition          `json:"transition"`
	TriggeringIDs []string            `json:"triggering_ids"`
	Location      *models.Coordinates `json:"location,omitempty"`
}

// HasError reports whether the service failed to deliver a transition.
func (e GeofencingEvent) HasError() bool {
	return e.ErrorCode != 0
}

// DecodeEvent parses a JSON-encoded GeofencingEvent.
func DecodeEvent(data []byte) (GeofencingEvent, error) {
	var ev GeofencingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return GeofencingEvent{}, fmt.Errorf("failed to decode geofencing event: %w", err)
	}
	if ev.HunterID == "" {
		return GeofencingEvent{}, fmt.Errorf("geofencing event without hunter_id")
	}
	return ev, nil
}

// Kind classifies a Notification.
type Kind string

const (
	KindError     Kind = "error"
	KindFound     Kind = "found"
	KindCompleted Kind = "completed"
)

// Notification is the message shown to a hunter in response to an event.
type Notification struct {
	ID         string `json:"id"`
	HunterID   string `json:"hunter_id"`
	Kind       Kind   `json:"kind"`
	Index      int    `json:"index"`
	LandmarkID string `json:"landmark_id,omitempty"`
	Text       string `json:"text"`
	NextHint   string `json:"next_hint,omitempty"`
}

// Package hunt turns geofencing events into hunt progress and the
// notifications shown to hunters.
package hunt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"treasurehunt/internal/geofence"
	"treasurehunt/internal/progress"
	"treasurehunt/internal/resources"
)

var (
	// ErrIgnored marks events that need no response, such as exits or
	// entries into a fence other than the active one.
	ErrIgnored = errors.New("event ignored")
	// ErrUnknownGeofence is returned when no triggering id is in the catalog.
	ErrUnknownGeofence = errors.New("unknown geofence")
	// ErrOutsideFence is returned when an enter event reports a location
	// outside the fence it claims to have entered.
	ErrOutsideFence = errors.New("location outside geofence")
)

// Handler applies geofencing events to hunter progress.
type Handler struct {
	strings  resources.Strings
	progress progress.Store
	log      logrus.FieldLogger
	newID    func() string
}

// NewHandler returns a Handler that renders text with strings and keeps
// progress in store.
func NewHandler(strings resources.Strings, store progress.Store, log logrus.FieldLogger) *Handler {
	return &Handler{
		strings:  strings,
		progress: store,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Handle applies ev to the hunter's progress. Only an enter into the active
// fence advances the hunt; errors reported by the service are turned into a
// KindError notification without touching progress.
func (h *Handler) Handle(ctx context.Context, ev GeofencingEvent) (Notification, error) {
	log := h.log.WithField("hunter_id", ev.HunterID)

	if ev.HasError() {
		text := geofence.ErrorMessage(h.strings, ev.ErrorCode)
		log.WithField("error_code", ev.ErrorCode).Warn(text)
		return h.notification(ev, KindError, -1, text), nil
	}

	if ev.Transition != TransitionEnter {
		return Notification{}, fmt.Errorf("%w: transition %q", ErrIgnored, ev.Transition)
	}

	foundIndex := -1
	for _, id := range ev.TriggeringIDs {
		if i := geofence.IndexOf(id); i != -1 {
			foundIndex = i
			break
		}
	}
	if foundIndex == -1 {
		return Notification{}, fmt.Errorf("%w: %v", ErrUnknownGeofence, ev.TriggeringIDs)
	}

	found, _ := geofence.LandmarkAt(foundIndex)
	if ev.Location != nil && !geofence.Contains(found, *ev.Location) {
		return Notification{}, fmt.Errorf("%w: %s", ErrOutsideFence, found.ID)
	}

	current, err := h.progress.Index(ctx, ev.HunterID)
	if err != nil {
		return Notification{}, err
	}
	if current != foundIndex {
		return Notification{}, fmt.Errorf("%w: %s is not the active geofence", ErrIgnored, found.ID)
	}

	advanced, err := h.progress.Advance(ctx, ev.HunterID, foundIndex)
	if err != nil {
		return Notification{}, err
	}
	if !advanced {
		return Notification{}, fmt.Errorf("%w: %s was already handled", ErrIgnored, found.ID)
	}
	next := foundIndex + 1
	log.WithFields(logrus.Fields{
		"landmark":                  found.ID,
		geofence.ExtraGeofenceIndex: next,
	}).Info("Landmark found")

	if next == geofence.NumLandmarks {
		n := h.notification(ev, KindCompleted, foundIndex, h.strings.GetString(resources.HuntCompleted))
		n.LandmarkID = found.ID
		return n, nil
	}

	nextLandmark, _ := geofence.LandmarkAt(next)
	n := h.notification(ev, KindFound, foundIndex, h.strings.GetString(found.Name))
	n.LandmarkID = found.ID
	n.NextHint = h.strings.GetString(nextLandmark.Hint)
	return n, nil
}

func (h *Handler) notification(ev GeofencingEvent, kind Kind, index int, text string) Notification {
	return Notification{
		ID:       h.newID(),
		HunterID: ev.HunterID,
		Kind:     kind,
		Index:    index,
		Text:     text,
	}
}

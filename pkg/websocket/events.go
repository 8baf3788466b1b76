package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/services/presence"
	"github.com/jgirmay/geoattend/pkg/validation"
)

// Inbound event names
const (
	InPing                  = "ping"
	InLocationUpdate        = "location_update"
	InAttendanceEvent       = "attendance_event"
	InGetOnlineUsers        = "get_online_users"
	InBroadcastAnnouncement = "broadcast_announcement"
	InSendNotification      = "send_notification"
)

// Error codes sent in error events
const (
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeForbidden          = "FORBIDDEN"
	CodeUnknownEvent       = "UNKNOWN_EVENT"
	CodeNotConnected       = "NOT_CONNECTED"
)

// eventError is answered to the sender as an error event
type eventError struct {
	code    string
	message string
}

func (e *eventError) Error() string { return e.message }

var (
	errInvalidMessage = &eventError{CodeInvalidMessage, "frames must be JSON objects with a type"}
	errForbidden      = &eventError{CodeForbidden, "observer role required"}
	errUnknownEvent   = &eventError{CodeUnknownEvent, "unknown event type"}
)

type eventHandler struct {
	observerOnly bool
	handle       func(s *presence.Session, data json.RawMessage) error
}

type locationPayload struct {
	Latitude  *float64   `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
	Accuracy  *float64   `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type attendanceEventPayload struct {
	Event    string                 `json:"event" validate:"required,max=100"`
	Location *geofence.Point        `json:"location,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

type announcementPayload struct {
	Message  string `json:"message" validate:"required,max=2000"`
	Title    string `json:"title,omitempty" validate:"max=200"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

type notificationPayload struct {
	TargetEmployeeID string `json:"target_employee_id" validate:"required"`
	Notification     struct {
		Title   string                 `json:"title,omitempty" validate:"max=200"`
		Message string                 `json:"message" validate:"required,max=2000"`
		Data    map[string]interface{} `json:"data,omitempty"`
	} `json:"notification"`
}

func (h *Handler) eventTable() map[string]eventHandler {
	return map[string]eventHandler{
		InPing:                  {handle: h.onPing},
		InLocationUpdate:        {handle: h.onLocationUpdate},
		InAttendanceEvent:       {handle: h.onAttendanceEvent},
		InGetOnlineUsers:        {observerOnly: true, handle: h.onGetOnlineUsers},
		InBroadcastAnnouncement: {observerOnly: true, handle: h.onBroadcastAnnouncement},
		InSendNotification:      {observerOnly: true, handle: h.onSendNotification},
	}
}

func (h *Handler) dispatch(s *presence.Session, msg inbound) {
	eh, ok := h.events[msg.Type]
	if !ok {
		h.replyError(s.ConnectionID, msg.Type, errUnknownEvent)
		return
	}
	if eh.observerOnly && !s.Observer {
		h.replyError(s.ConnectionID, msg.Type, errForbidden)
		return
	}
	if err := eh.handle(s, msg.Data); err != nil {
		h.replyError(s.ConnectionID, msg.Type, err)
	}
}

func (h *Handler) onPing(s *presence.Session, data json.RawMessage) error {
	var echo interface{}
	if len(data) > 0 && string(data) != "null" {
		echo = data
	}
	return h.broadcaster.Reply(s.ConnectionID, presence.EventPong, echo)
}

func (h *Handler) onLocationUpdate(s *presence.Session, data json.RawMessage) error {
	var p locationPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	decision, err := h.broadcaster.OnPositionUpdate(s.ConnectionID, presence.PositionUpdate{
		Latitude:   *p.Latitude,
		Longitude:  *p.Longitude,
		Accuracy:   p.Accuracy,
		ReportedAt: p.Timestamp,
	})
	if err != nil {
		return toEventError(err)
	}

	return h.broadcaster.Reply(s.ConnectionID, presence.EventLocationUpdateAck, map[string]interface{}{
		"received":     true,
		"geofence":     decision,
		"can_check_in": decision.Classification == geofence.Inside,
	})
}

func (h *Handler) onAttendanceEvent(s *presence.Session, data json.RawMessage) error {
	var p attendanceEventPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.Location != nil && !geofence.ValidCoordinates(p.Location.Latitude, p.Location.Longitude) {
		return &eventError{CodeInvalidCoordinates, geofence.ErrInvalidCoordinates.Error()}
	}

	return toEventError(h.broadcaster.OnClientAttendanceEvent(s.ConnectionID, presence.ClientAttendanceEvent{
		Event:    p.Event,
		Location: p.Location,
		Details:  p.Details,
	}))
}

func (h *Handler) onGetOnlineUsers(s *presence.Session, _ json.RawMessage) error {
	online, err := h.broadcaster.OnlineSnapshot(s.ConnectionID)
	if err != nil {
		return toEventError(err)
	}
	return h.broadcaster.Reply(s.ConnectionID, presence.EventOnlineUsers, map[string]interface{}{
		"users": online,
		"count": len(online),
	})
}

func (h *Handler) onBroadcastAnnouncement(s *presence.Session, data json.RawMessage) error {
	var p announcementPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	delivered := h.broadcaster.BroadcastAnnouncement(presence.Announcement{
		Message:  p.Message,
		Title:    p.Title,
		Priority: p.Priority,
		From:     s.Employee,
	})
	h.logger.Info("announcement broadcast",
		zap.String("from", s.Employee.ID),
		zap.Int("delivered", delivered),
	)
	return nil
}

func (h *Handler) onSendNotification(s *presence.Session, data json.RawMessage) error {
	var p notificationPayload
	if err := decode(data, &p); err != nil {
		return err
	}

	online := h.broadcaster.SendToEmployee(p.TargetEmployeeID, presence.Notification{
		Title:   p.Notification.Title,
		Message: p.Notification.Message,
		Data:    p.Notification.Data,
		From:    s.Employee,
	})
	if !online {
		return &eventError{CodeNotConnected, "employee is offline"}
	}
	return nil
}

func (h *Handler) replyError(connectionID, event string, err error) {
	var ee *eventError
	if !errors.As(err, &ee) {
		h.logger.Warn("websocket event failed", zap.String("event", event), zap.Error(err))
		ee = &eventError{CodeInvalidMessage, "event could not be processed"}
	}
	_ = h.broadcaster.Reply(connectionID, presence.EventError, presence.ErrorPayload{
		Code:    ee.code,
		Message: ee.message,
		Event:   event,
	})
}

func decode(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return &eventError{CodeInvalidPayload, "data is required"}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &eventError{CodeInvalidPayload, "data is not valid for this event"}
	}
	if fieldErrs := validation.Validate(dst); len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		code := CodeInvalidPayload
		if fe.Field == "latitude" || fe.Field == "longitude" {
			code = CodeInvalidCoordinates
		}
		return &eventError{code, fe.Field + " " + fe.Message}
	}
	return nil
}

func toEventError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, presence.ErrForbidden):
		return errForbidden
	case errors.Is(err, presence.ErrNotConnected):
		return &eventError{CodeNotConnected, err.Error()}
	case errors.Is(err, geofence.ErrInvalidCoordinates):
		return &eventError{CodeInvalidCoordinates, err.Error()}
	default:
		return err
	}
}

package presence

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/metrics"
	"github.com/jgirmay/geoattend/pkg/services/attendance"
)

var (
	// ErrForbidden is returned when a caller lacks the observer capability.
	ErrForbidden = errors.New("observer capability required")

	// ErrNotConnected is returned for a connection id that is not registered.
	ErrNotConnected = errors.New("connection is not registered")
)

// Broadcaster delivers presence and attendance events to registered sessions.
// Delivery is best effort: each send is a non-blocking enqueue, a full or
// closed connection drops only its own copy and never fails the caller.
type Broadcaster struct {
	registry  *Registry
	evaluator *geofence.Evaluator
	logger    *logging.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// NewBroadcaster creates a broadcaster over registry. evaluator classifies
// live positions before they reach observers.
func NewBroadcaster(registry *Registry, evaluator *geofence.Evaluator, logger *logging.Logger, m *metrics.Metrics) *Broadcaster {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Broadcaster{
		registry:  registry,
		evaluator: evaluator,
		logger:    logger,
		metrics:   m,
		clock:     time.Now,
	}
}

// Registry returns the registry this broadcaster fans out over
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Connect registers s, closes any session it replaces, greets the new
// connection and tells observers the employee came online.
func (b *Broadcaster) Connect(s *Session) {
	if s.ConnectedAt.IsZero() {
		s.ConnectedAt = b.clock()
	}

	if replaced := b.registry.Register(s); replaced != nil {
		b.logger.Info("presence session replaced",
			zap.String("employee_id", s.Employee.ID),
			zap.String("old_connection", replaced.ConnectionID),
			zap.String("new_connection", s.ConnectionID),
		)
		if replaced.Conn != nil {
			replaced.Conn.Close()
		}
	}
	b.metrics.SetSessions(b.registry.Count())

	b.deliver(s.Conn, EventConnectionSuccess, map[string]interface{}{
		"connection_id": s.ConnectionID,
		"employee":      s.Employee,
		"observer":      s.Observer,
		"online_count":  b.registry.Count(),
	})

	b.toObservers(s.ConnectionID, EventUserStatus, UserStatus{
		Status:   StatusOnline,
		Employee: s.Employee,
		At:       s.ConnectedAt,
	})
}

// Disconnect unregisters connectionID and tells observers the employee went
// offline. Unknown or already replaced connections are ignored.
func (b *Broadcaster) Disconnect(connectionID, reason string) {
	s, ok := b.registry.Unregister(connectionID)
	if !ok {
		return
	}
	b.metrics.SetSessions(b.registry.Count())

	b.logger.Info("presence session closed",
		zap.String("employee_id", s.Employee.ID),
		zap.String("connection_id", connectionID),
		zap.String("reason", reason),
	)

	b.toObservers(connectionID, EventUserStatus, UserStatus{
		Status:   StatusOffline,
		Employee: s.Employee,
		Reason:   reason,
		At:       b.clock(),
	})
}

// OnAttendanceTransition notifies the employee and every observer of an accepted transition.
func (b *Broadcaster) OnAttendanceTransition(t attendance.Transition) {
	hours := attendance.DurationHours(t.WorkDuration)

	notice := AttendanceNotification{
		Kind:              string(t.Kind),
		WorkDate:          t.Record.WorkDate,
		Time:              t.At,
		DistanceMeters:    t.Decision.DistanceMeters,
		Classification:    t.Decision.Classification,
		WorkDurationHours: hours,
	}
	switch t.Kind {
	case attendance.KindCheckIn:
		notice.Message = fmt.Sprintf("Checked in at %s", t.At.Format("15:04"))
	case attendance.KindCheckOut:
		notice.Message = fmt.Sprintf("Checked out at %s", t.At.Format("15:04"))
	}

	for _, conn := range b.registry.ConnectionsFor(t.Employee.ID) {
		b.deliver(conn, EventAttendanceNotification, notice)
	}

	b.toObservers("", EventAttendanceUpdate, AttendanceUpdate{
		Kind:              string(t.Kind),
		Employee:          t.Employee,
		Record:            t.Record,
		DistanceMeters:    t.Decision.DistanceMeters,
		Classification:    t.Decision.Classification,
		At:                t.At,
		WorkDurationHours: hours,
	})
}

// OnPositionUpdate classifies a live position from connectionID and forwards
// it to every observer but the sender. Out of range coordinates are rejected
// with geofence.ErrInvalidCoordinates and reach no one.
func (b *Broadcaster) OnPositionUpdate(connectionID string, pos PositionUpdate) (geofence.Decision, error) {
	s, ok := b.registry.Lookup(connectionID)
	if !ok {
		return geofence.Decision{}, ErrNotConnected
	}

	decision, err := b.evaluator.Evaluate(pos.Latitude, pos.Longitude)
	if err != nil {
		return geofence.Decision{}, err
	}
	pos.Geofence = &decision

	b.toObservers(connectionID, EventStaffLocationUpdate, StaffLocation{
		Employee:       s.Employee,
		PositionUpdate: pos,
		ReceivedAt:     b.clock(),
	})
	return decision, nil
}

// OnClientAttendanceEvent forwards an informational client event to observers
// and acknowledges it to the sender.
func (b *Broadcaster) OnClientAttendanceEvent(connectionID string, ev ClientAttendanceEvent) error {
	s, ok := b.registry.Lookup(connectionID)
	if !ok {
		return ErrNotConnected
	}

	now := b.clock()
	b.toObservers(connectionID, EventAttendanceEvent, ForwardedAttendanceEvent{
		Employee:              s.Employee,
		ClientAttendanceEvent: ev,
		ReceivedAt:            now,
	})
	b.deliver(s.Conn, EventAttendanceNotification, AttendanceNotification{
		Kind:    ev.Event,
		Message: "Attendance event received",
		Time:    now,
	})
	return nil
}

// OnlineSnapshot returns the online list for an observer connection.
func (b *Broadcaster) OnlineSnapshot(callerConnectionID string) ([]OnlineEmployee, error) {
	s, ok := b.registry.Lookup(callerConnectionID)
	if !ok || !s.Observer {
		return nil, ErrForbidden
	}
	return b.registry.ListOnline(), nil
}

// Online returns the online list without a connection-level check. Callers
// must have authorized the principal themselves.
func (b *Broadcaster) Online() []OnlineEmployee {
	return b.registry.ListOnline()
}

// BroadcastAnnouncement sends ann to every connected session and returns how many accepted it.
func (b *Broadcaster) BroadcastAnnouncement(ann Announcement) int {
	return b.toAll(EventAnnouncement, ann)
}

// SendSystemAlert sends alert to every connected session.
func (b *Broadcaster) SendSystemAlert(alert SystemAlert) int {
	return b.toAll(EventSystemAlert, alert)
}

// SendToEmployee delivers a direct notification. It reports whether the employee was online.
func (b *Broadcaster) SendToEmployee(employeeID string, n Notification) bool {
	conns := b.registry.ConnectionsFor(employeeID)
	for _, conn := range conns {
		b.deliver(conn, EventNotification, n)
	}
	return len(conns) > 0
}

// Reply sends a message to a single connection, typically an ack or error.
func (b *Broadcaster) Reply(connectionID, event string, data interface{}) error {
	s, ok := b.registry.Lookup(connectionID)
	if !ok {
		return ErrNotConnected
	}
	b.deliver(s.Conn, event, data)
	return nil
}

// Shutdown closes every registered connection.
func (b *Broadcaster) Shutdown() {
	for _, s := range b.registry.All() {
		if s.Conn != nil {
			s.Conn.Close()
		}
		b.registry.Unregister(s.ConnectionID)
	}
	b.metrics.SetSessions(0)
}

func (b *Broadcaster) toObservers(excludeConnID, event string, data interface{}) {
	msg := b.message(event, data)
	for _, s := range b.registry.Observers() {
		if s.ConnectionID == excludeConnID {
			continue
		}
		b.send(s.Conn, msg)
	}
}

func (b *Broadcaster) toAll(event string, data interface{}) int {
	msg := b.message(event, data)
	accepted := 0
	for _, s := range b.registry.All() {
		if b.send(s.Conn, msg) {
			accepted++
		}
	}
	return accepted
}

func (b *Broadcaster) deliver(conn Connection, event string, data interface{}) bool {
	return b.send(conn, b.message(event, data))
}

func (b *Broadcaster) send(conn Connection, msg *Message) bool {
	if conn == nil {
		return false
	}
	if !conn.Send(msg) {
		b.metrics.MessageDropped(msg.Type)
		b.logger.Debug("presence message dropped",
			zap.String("connection_id", conn.ID()),
			zap.String("event", msg.Type),
		)
		return false
	}
	b.metrics.MessageSent(msg.Type)
	return true
}

func (b *Broadcaster) message(event string, data interface{}) *Message {
	return &Message{Type: event, Data: data, Timestamp: b.clock()}
}

var _ attendance.TransitionSink = (*Broadcaster)(nil)


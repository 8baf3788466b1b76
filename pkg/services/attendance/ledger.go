package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/metrics"
	"github.com/jgirmay/geoattend/pkg/models"
	"github.com/jgirmay/geoattend/pkg/repository"
)

// DefaultStoreTimeout bounds each store round trip when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// Ledger runs the per-employee, per-date attendance state machine.
// Uniqueness is enforced by the store, never by in-process locks.
type Ledger struct {
	store        repository.AttendanceRepository
	evaluator    *geofence.Evaluator
	sink         TransitionSink
	clock        func() time.Time
	location     *time.Location
	storeTimeout time.Duration
	logger       *logging.Logger
	metrics      *metrics.Metrics
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the server clock.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.clock = now }
}

// WithLocation sets the timezone that defines the work date boundary.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.location = loc }
}

// WithStoreTimeout bounds every store round trip.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.storeTimeout = d }
}

// WithSink sets where accepted transitions are published.
func WithSink(sink TransitionSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// NewLedger creates a ledger over store and evaluator.
func NewLedger(store repository.AttendanceRepository, evaluator *geofence.Evaluator, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("attendance store is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("geofence evaluator is required")
	}

	l := &Ledger{
		store:        store,
		evaluator:    evaluator,
		clock:        time.Now,
		location:     time.Local,
		storeTimeout: DefaultStoreTimeout,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.storeTimeout <= 0 {
		l.storeTimeout = DefaultStoreTimeout
	}
	return l, nil
}

// Today returns the current work date in the configured timezone.
func (l *Ledger) Today() string {
	return l.now().Format(models.WorkDateLayout)
}

// CheckIn records today's check-in when the employee is inside the core radius.
func (l *Ledger) CheckIn(ctx context.Context, req CheckInRequest) (*Result, error) {
	if strings.TrimSpace(req.Employee.ID) == "" {
		return nil, ErrMissingEmployee
	}

	decision, err := l.evaluator.Evaluate(req.Latitude, req.Longitude)
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckIn), "invalid")
		return nil, err
	}

	if decision.Classification != geofence.Inside {
		l.metrics.ObserveTransition(string(KindCheckIn), "outside_geofence")
		return nil, &Rejection{
			Reason:         ReasonOutsideGeofence,
			DistanceMeters: decision.DistanceMeters,
			RequiredRadius: l.evaluator.Config().RadiusMeters,
			Classification: decision.Classification,
		}
	}

	now := l.now()
	workDate := now.Format(models.WorkDateLayout)

	existing, err := l.lookup(ctx, req.Employee.ID, workDate)
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckIn), "store_error")
		return nil, err
	}
	if existing.CheckedIn() {
		l.metrics.ObserveTransition(string(KindCheckIn), "already_checked_in")
		return nil, &Rejection{Reason: ReasonAlreadyCheckedIn, ExistingTime: existing.CheckInTime}
	}

	lat, lon, dist := req.Latitude, req.Longitude, decision.DistanceMeters
	record := &models.AttendanceRecord{
		ID:               uuid.New(),
		EmployeeID:       req.Employee.ID,
		WorkDate:         workDate,
		CheckInTime:      &now,
		CheckInLatitude:  &lat,
		CheckInLongitude: &lon,
		CheckInDistance:  &dist,
		Notes:            strings.TrimSpace(req.Note),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(req.DeviceInfo) > 0 {
		raw, err := json.Marshal(req.DeviceInfo)
		if err != nil {
			return nil, fmt.Errorf("encode device info: %w", err)
		}
		record.DeviceInfo = datatypes.JSON(raw)
	}

	var applied bool
	err = l.withStore(ctx, "check_in", func(ctx context.Context) error {
		var err error
		applied, err = l.store.RecordCheckIn(ctx, record)
		return err
	})
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckIn), "store_error")
		return nil, err
	}

	if !applied {
		// another writer won the race for this date
		l.metrics.ObserveTransition(string(KindCheckIn), "already_checked_in")
		rej := &Rejection{Reason: ReasonAlreadyCheckedIn}
		if winner, err := l.lookup(ctx, req.Employee.ID, workDate); err == nil && winner.CheckedIn() {
			rej.ExistingTime = winner.CheckInTime
		}
		return nil, rej
	}

	l.metrics.ObserveTransition(string(KindCheckIn), "accepted")
	l.logger.Info("employee checked in",
		zap.String("employee_id", req.Employee.ID),
		zap.String("work_date", workDate),
		zap.Float64("distance_m", decision.DistanceMeters),
	)

	l.publish(Transition{
		Kind:     KindCheckIn,
		Employee: req.Employee,
		Record:   *record,
		Decision: decision,
		At:       now,
	})

	return &Result{Record: record, Decision: decision}, nil
}

// CheckOut closes today's record. The geofence is evaluated and recorded but does not gate check-out.
func (l *Ledger) CheckOut(ctx context.Context, req CheckOutRequest) (*Result, error) {
	if strings.TrimSpace(req.Employee.ID) == "" {
		return nil, ErrMissingEmployee
	}

	decision, err := l.evaluator.Evaluate(req.Latitude, req.Longitude)
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckOut), "invalid")
		return nil, err
	}

	now := l.now()
	workDate := now.Format(models.WorkDateLayout)

	existing, err := l.lookup(ctx, req.Employee.ID, workDate)
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckOut), "store_error")
		return nil, err
	}
	if rej := checkOutRejection(existing); rej != nil {
		l.metrics.ObserveTransition(string(KindCheckOut), strings.ToLower(string(rej.Reason)))
		return nil, rej
	}

	// a clock step backwards must not produce a check-out before the check-in
	checkOutAt := now
	if checkOutAt.Before(*existing.CheckInTime) {
		checkOutAt = *existing.CheckInTime
	}

	note := strings.TrimSpace(req.Note)
	var applied bool
	err = l.withStore(ctx, "check_out", func(ctx context.Context) error {
		var err error
		applied, err = l.store.RecordCheckOut(ctx, req.Employee.ID, workDate, repository.CheckOutUpdate{
			Time:      checkOutAt,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Distance:  decision.DistanceMeters,
			Note:      note,
		})
		return err
	})
	if err != nil {
		l.metrics.ObserveTransition(string(KindCheckOut), "store_error")
		return nil, err
	}

	if !applied {
		current, err := l.lookup(ctx, req.Employee.ID, workDate)
		rej := &Rejection{Reason: ReasonAlreadyCheckedOut}
		if err == nil {
			if r := checkOutRejection(current); r != nil {
				rej = r
			}
		}
		l.metrics.ObserveTransition(string(KindCheckOut), strings.ToLower(string(rej.Reason)))
		return nil, rej
	}

	record := *existing
	lat, lon, dist := req.Latitude, req.Longitude, decision.DistanceMeters
	record.CheckOutTime = &checkOutAt
	record.CheckOutLatitude = &lat
	record.CheckOutLongitude = &lon
	record.CheckOutDistance = &dist
	record.Notes = appendNote(record.Notes, note)
	record.UpdatedAt = now

	duration := checkOutAt.Sub(*record.CheckInTime)

	l.metrics.ObserveTransition(string(KindCheckOut), "accepted")
	l.logger.Info("employee checked out",
		zap.String("employee_id", req.Employee.ID),
		zap.String("work_date", workDate),
		zap.Duration("work_duration", duration),
		zap.String("classification", string(decision.Classification)),
	)

	l.publish(Transition{
		Kind:         KindCheckOut,
		Employee:     req.Employee,
		Record:       record,
		Decision:     decision,
		At:           checkOutAt,
		WorkDuration: &duration,
	})

	return &Result{Record: &record, Decision: decision, WorkDuration: &duration}, nil
}

// Status reports the state of employeeID on date. An empty date means today.
func (l *Ledger) Status(ctx context.Context, employeeID, date string) (*Status, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, ErrMissingEmployee
	}
	if date == "" {
		date = l.Today()
	} else if _, err := time.ParseInLocation(models.WorkDateLayout, date, l.location); err != nil {
		return nil, ErrInvalidDate
	}

	record, err := l.lookup(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	status := &Status{State: StateNotCheckedIn, WorkDate: date, Record: record}
	if !record.CheckedIn() {
		return status, nil
	}

	status.State = StateCheckedIn
	end := l.now()
	if record.CheckedOut() {
		status.State = StateCheckedOut
		end = *record.CheckOutTime
	}
	d := end.Sub(*record.CheckInTime)
	if d < 0 {
		d = 0
	}
	status.WorkDuration = &d

	return status, nil
}

func checkOutRejection(record *models.AttendanceRecord) *Rejection {
	switch {
	case !record.CheckedIn():
		return &Rejection{Reason: ReasonNoActiveCheckIn}
	case record.CheckedOut():
		return &Rejection{Reason: ReasonAlreadyCheckedOut, ExistingTime: record.CheckOutTime}
	default:
		return nil
	}
}

func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + " | " + note
}

func (l *Ledger) now() time.Time {
	return l.clock().In(l.location)
}

func (l *Ledger) lookup(ctx context.Context, employeeID, workDate string) (*models.AttendanceRecord, error) {
	var record *models.AttendanceRecord
	err := l.withStore(ctx, "lookup", func(ctx context.Context) error {
		var err error
		record, err = l.store.GetByEmployeeDate(ctx, employeeID, workDate)
		return err
	})
	return record, err
}

// withStore runs fn under the store timeout and maps failures to ErrStoreUnavailable.
// Cancellation by the caller is returned unchanged.
func (l *Ledger) withStore(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	storeCtx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	started := time.Now()
	err := fn(storeCtx)
	l.metrics.ObserveStore(op, started)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil && !errors.Is(storeCtx.Err(), context.DeadlineExceeded) {
		return ctx.Err()
	}

	l.logger.Warn("attendance store operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

func (l *Ledger) publish(t Transition) {
	if l.sink == nil {
		return
	}
	l.sink.OnAttendanceTransition(t)
}

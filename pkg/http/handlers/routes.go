package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/http/middleware"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/services/attendance"
	"github.com/jgirmay/geoattend/pkg/services/presence"
)

// RegisterAttendanceRoutes registers all attendance routes under /api/attendance
func RegisterAttendanceRoutes(
	router chi.Router,
	ledger *attendance.Ledger,
	evaluator *geofence.Evaluator,
	location *time.Location,
	resolver middleware.PrincipalResolver,
	logger *logging.Logger,
) {
	handlers := NewAttendanceHandlers(ledger, evaluator, location, logger)

	router.Route("/api/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth(resolver, logger))

		// State transitions
		r.Post("/checkin", handlers.CheckIn)
		r.Post("/checkout", handlers.CheckOut)

		// Read-only views
		r.Get("/status", handlers.GetStatus)
		r.Get("/location-status", handlers.GetLocationStatus)
		r.Get("/office", handlers.GetOffice)
	})
}

// RegisterPresenceRoutes registers the observer-only presence routes under /api/presence
func RegisterPresenceRoutes(
	router chi.Router,
	broadcaster *presence.Broadcaster,
	resolver middleware.PrincipalResolver,
	logger *logging.Logger,
) {
	handlers := NewPresenceHandlers(broadcaster, logger)

	router.Route("/api/presence", func(r chi.Router) {
		r.Use(middleware.RequireAuth(resolver, logger))
		r.Use(middleware.RequireObserver)

		r.Get("/online", handlers.GetOnline)
		r.Post("/announcements", handlers.PostAnnouncement)
		r.Post("/alerts", handlers.PostSystemAlert)
		r.Post("/notifications", handlers.PostNotification)
	})
}

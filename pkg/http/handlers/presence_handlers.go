package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/jgirmay/geoattend/pkg/errors"
	"github.com/jgirmay/geoattend/pkg/http/dto"
	"github.com/jgirmay/geoattend/pkg/http/middleware"
	"github.com/jgirmay/geoattend/pkg/http/response"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/services/presence"
)

// PresenceHandlers exposes the presence broadcaster over HTTP. Every route
// is mounted behind RequireObserver.
type PresenceHandlers struct {
	broadcaster *presence.Broadcaster
	logger      *logging.Logger
}

// NewPresenceHandlers creates new presence handlers
func NewPresenceHandlers(broadcaster *presence.Broadcaster, logger *logging.Logger) *PresenceHandlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PresenceHandlers{broadcaster: broadcaster, logger: logger}
}

// GetOnline handles GET /api/presence/online
func (h *PresenceHandlers) GetOnline(w http.ResponseWriter, r *http.Request) {
	online := h.broadcaster.Online()
	response.OK(w, "", map[string]interface{}{
		"users": online,
		"count": len(online),
	})
}

// PostAnnouncement handles POST /api/presence/announcements
func (h *PresenceHandlers) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req dto.AnnouncementRequest
	if appErr := decodeAndValidate(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	delivered := h.broadcaster.BroadcastAnnouncement(presence.Announcement{
		Message:  req.Message,
		Title:    req.Title,
		Priority: req.Priority,
		From:     principal.Employee,
	})
	h.logger.Info("announcement broadcast",
		zap.String("from", principal.Employee.ID),
		zap.Int("delivered", delivered),
	)

	response.OK(w, "Announcement sent", dto.DeliveryResponse{Delivered: delivered, SentAt: time.Now()})
}

// PostSystemAlert handles POST /api/presence/alerts
func (h *PresenceHandlers) PostSystemAlert(w http.ResponseWriter, r *http.Request) {
	var req dto.SystemAlertRequest
	if appErr := decodeAndValidate(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	delivered := h.broadcaster.SendSystemAlert(presence.SystemAlert{
		Severity: req.Severity,
		Message:  req.Message,
	})

	response.OK(w, "Alert sent", dto.DeliveryResponse{Delivered: delivered, SentAt: time.Now()})
}

// PostNotification handles POST /api/presence/notifications
func (h *PresenceHandlers) PostNotification(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req dto.NotificationRequest
	if appErr := decodeAndValidate(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	online := h.broadcaster.SendToEmployee(req.EmployeeID, presence.Notification{
		Title:   req.Title,
		Message: req.Message,
		Data:    req.Data,
		From:    principal.Employee,
	})

	resp := dto.DeliveryResponse{SentAt: time.Now()}
	message := "Employee is offline"
	if online {
		resp.Delivered = 1
		message = "Notification sent"
	}
	response.OK(w, message, resp)
}

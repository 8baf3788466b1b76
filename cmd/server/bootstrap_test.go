package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgirmay/geoattend/pkg/auth"
	"github.com/jgirmay/geoattend/pkg/config"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/models"
	"github.com/jgirmay/geoattend/pkg/services/presence"
)

const testSecret = "bootstrap-test-secret-0123456789abcdef"

func newTestApp(t *testing.T) (*App, *config.Config) {
	t.Helper()
	t.Setenv("GEOATTEND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("OFFICE_TIMEZONE", "UTC")

	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return app, cfg
}

func seedEmployee(t *testing.T, app *App, id, role string) string {
	t.Helper()
	require.NoError(t, app.registry.EmployeeRepository.Save(context.Background(), &models.Employee{
		ID: id, Name: "Employee " + id, Department: "Ops", Role: role, IsActive: true,
	}))

	tm := auth.NewTokenManager(testSecret, app.cfg.Auth.Issuer, app.cfg.Auth.Audience)
	token, err := tm.GenerateToken(id, auth.Claims{}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAppCheckInFlow(t *testing.T) {
	app, cfg := newTestApp(t)
	token := seedEmployee(t, app, "emp-1", "staff")

	body, _ := json.Marshal(map[string]float64{"latitude": cfg.Office.Latitude, "longitude": cfg.Office.Longitude})
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/checkin", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.api.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/attendance/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	app.api.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"CHECKED_IN"`)
}

func TestAppRejectsUnknownEmployee(t *testing.T) {
	app, _ := newTestApp(t)

	tm := auth.NewTokenManager(testSecret, app.cfg.Auth.Issuer, app.cfg.Auth.Audience)
	token, err := tm.GenerateToken("ghost", auth.Claims{Role: "admin"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAppObserverReceivesTransition(t *testing.T) {
	app, cfg := newTestApp(t)
	staffToken := seedEmployee(t, app, "emp-1", "staff")
	observerToken := seedEmployee(t, app, "sup-1", "supervisor")

	server := httptest.NewServer(app.api)
	t.Cleanup(func() {
		app.broadcaster.Shutdown()
		server.Close()
	})

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + observerToken
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	body, _ := json.Marshal(map[string]float64{"latitude": cfg.Office.Latitude, "longitude": cfg.Office.Longitude})
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/attendance/checkin", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg struct {
			Type string                    `json:"type"`
			Data presence.AttendanceUpdate `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != presence.EventAttendanceUpdate {
			continue
		}
		assert.Equal(t, "emp-1", msg.Data.Employee.ID)
		assert.Equal(t, "Ops", msg.Data.Employee.Department)
		assert.Equal(t, "check_in", msg.Data.Kind)
		return
	}
}

func TestOpsHealth(t *testing.T) {
	app, _ := newTestApp(t)

	w := httptest.NewRecorder()
	app.ops.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.ops.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

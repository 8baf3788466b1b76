package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jgirmay/geoattend/pkg/auth"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/models"
)

type stubResolver struct {
	principal *auth.Principal
	err       error
}

func (s stubResolver) Resolve(_ context.Context, _ string) (*auth.Principal, error) {
	return s.principal, s.err
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(p.Employee.ID))
}

func TestRequireAuth(t *testing.T) {
	alice := &auth.Principal{Employee: models.EmployeeSummary{ID: "emp-1"}}

	cases := []struct {
		name     string
		resolver stubResolver
		status   int
	}{
		{"resolved", stubResolver{principal: alice}, http.StatusOK},
		{"bad token", stubResolver{err: auth.ErrUnauthenticated}, http.StatusUnauthorized},
		{"inactive", stubResolver{err: auth.ErrInactive}, http.StatusForbidden},
		{"directory down", stubResolver{err: errors.New("db down")}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := RequireAuth(tc.resolver, logging.NewNop())(http.HandlerFunc(echoPrincipal))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "emp-1", w.Body.String())
			}
		})
	}
}

func TestRequireObserver(t *testing.T) {
	h := RequireObserver(http.HandlerFunc(echoPrincipal))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	staff := &auth.Principal{Employee: models.EmployeeSummary{ID: "emp-1"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(WithPrincipal(req.Context(), staff)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	observerP := &auth.Principal{Employee: models.EmployeeSummary{ID: "sup-1"}, Observer: true}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(WithPrincipal(req.Context(), observerP)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sup-1", w.Body.String())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.FromZap(zap.New(core))

	h := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			w.WriteHeader(http.StatusInternalServerError)
		case "/conflict":
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusCreated)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/conflict", nil))

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.EqualValues(t, http.StatusCreated, entries[0].ContextMap()["status"])
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Equal(t, "/fail", entries[1].ContextMap()["path"])
		assert.Equal(t, zap.WarnLevel, entries[2].Level)
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jgirmay/geoattend/pkg/models"
	"github.com/jgirmay/geoattend/pkg/repository"
)

var (
	// ErrUnauthenticated is returned for a missing, malformed or expired credential.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInactive is returned for an employee that is unknown to or disabled in the directory.
	ErrInactive = errors.New("employee is not active")
)

// Principal is the authenticated caller. Identity and capabilities are fixed
// at resolution time; nothing supplied by the client can change them.
type Principal struct {
	Employee models.EmployeeSummary
	Role     string
	Observer bool
}

// Resolver turns a bearer token into a Principal.
type Resolver struct {
	tokens        *TokenManager
	employees     repository.EmployeeRepository
	observerRoles map[string]struct{}
}

// NewResolver creates a resolver. employees may be nil, in which case the
// token claims are trusted as is.
func NewResolver(tokens *TokenManager, employees repository.EmployeeRepository, observerRoles []string) *Resolver {
	roles := make(map[string]struct{}, len(observerRoles))
	for _, r := range observerRoles {
		roles[r] = struct{}{}
	}
	return &Resolver{tokens: tokens, employees: employees, observerRoles: roles}
}

// Resolve validates token and builds the caller's principal.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	p := &Principal{
		Employee: models.EmployeeSummary{
			ID:         claims.Subject,
			Name:       claims.Name,
			Department: claims.Department,
		},
		Role: claims.Role,
	}

	if r.employees != nil {
		emp, err := r.employees.GetByID(ctx, claims.Subject)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInactive
		}
		if err != nil {
			return nil, fmt.Errorf("load employee: %w", err)
		}
		if !emp.IsActive {
			return nil, ErrInactive
		}
		p.Employee = emp.Summary()
		if emp.Role != "" {
			p.Role = emp.Role
		}
	}

	_, p.Observer = r.observerRoles[p.Role]
	return p, nil
}

// ExtractToken reads a bearer token from the Authorization header, the
// X-Auth-Token header or, for websocket handshakes, the token query parameter.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if token := r.Header.Get("X-Auth-Token"); token != "" {
		return token
	}

	return r.URL.Query().Get("token")
}

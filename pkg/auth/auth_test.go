package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jgirmay/geoattend/pkg/models"
	"github.com/jgirmay/geoattend/pkg/repository"
	"github.com/jgirmay/geoattend/pkg/repository/mocks"
)

const testSecret = "test-secret-key-at-least-32-bytes!!"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "geoattend", "")

	token, err := tm.GenerateToken("emp-1", Claims{Name: "Alice", Role: "staff"}, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "staff", claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	tm := NewTokenManager(testSecret, "geoattend", "attendance")
	good, err := tm.GenerateToken("emp-1", Claims{}, time.Hour)
	require.NoError(t, err)

	expired, err := tm.GenerateToken("emp-1", Claims{}, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager(testSecret, "someone-else", "attendance").GenerateToken("emp-1", Claims{}, time.Hour)
	require.NoError(t, err)

	otherAudience, err := NewTokenManager(testSecret, "geoattend", "billing").GenerateToken("emp-1", Claims{}, time.Hour)
	require.NoError(t, err)

	wrongKey, err := NewTokenManager("another-secret-key-also-32-bytes!!", "geoattend", "attendance").GenerateToken("emp-1", Claims{}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "emp-1",
		Issuer:    "geoattend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ValidateToken(good)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":        expired,
		"other issuer":   otherIssuer,
		"other audience": otherAudience,
		"wrong key":      wrongKey,
		"alg none":       unsigned,
		"garbage":        "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestResolver_ObserverByExactRole(t *testing.T) {
	tm := NewTokenManager(testSecret, "geoattend", "")
	r := NewResolver(tm, nil, []string{"admin", "supervisor"})

	cases := map[string]bool{
		"admin":      true,
		"supervisor": true,
		"Admin":      false,
		"staff":      false,
		"":           false,
	}
	for role, want := range cases {
		token, err := tm.GenerateToken("emp-1", Claims{Role: role, Name: "Alice"}, time.Hour)
		require.NoError(t, err)

		p, err := r.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, want, p.Observer, "role %q", role)
		assert.Equal(t, "emp-1", p.Employee.ID)
		assert.Equal(t, "Alice", p.Employee.Name)
	}
}

func TestResolver_MissingToken(t *testing.T) {
	r := NewResolver(NewTokenManager(testSecret, "", ""), nil, nil)

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = r.Resolve(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_DirectoryLookup(t *testing.T) {
	tm := NewTokenManager(testSecret, "geoattend", "")
	token, err := tm.GenerateToken("emp-1", Claims{Name: "From Token", Role: "staff"}, time.Hour)
	require.NoError(t, err)

	t.Run("directory data wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		employees := mocks.NewMockEmployeeRepository(ctrl)
		employees.EXPECT().GetByID(gomock.Any(), "emp-1").Return(&models.Employee{
			ID: "emp-1", Name: "Alice Chan", Department: "Ops", Role: "supervisor", IsActive: true,
		}, nil)

		p, err := NewResolver(tm, employees, []string{"supervisor"}).Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "Alice Chan", p.Employee.Name)
		assert.Equal(t, "Ops", p.Employee.Department)
		assert.True(t, p.Observer)
	})

	t.Run("inactive employee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		employees := mocks.NewMockEmployeeRepository(ctrl)
		employees.EXPECT().GetByID(gomock.Any(), "emp-1").Return(&models.Employee{ID: "emp-1", IsActive: false}, nil)

		_, err := NewResolver(tm, employees, nil).Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrInactive)
	})

	t.Run("unknown employee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		employees := mocks.NewMockEmployeeRepository(ctrl)
		employees.EXPECT().GetByID(gomock.Any(), "emp-1").Return(nil, repository.ErrNotFound)

		_, err := NewResolver(tm, employees, nil).Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrInactive)
	})

	t.Run("directory failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		employees := mocks.NewMockEmployeeRepository(ctrl)
		employees.EXPECT().GetByID(gomock.Any(), "emp-1").Return(nil, errors.New("db down"))

		_, err := NewResolver(tm, employees, nil).Resolve(context.Background(), token)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrInactive)
	})
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", ExtractToken(req))

	req.Header.Set("X-Auth-Token", "from-header")
	assert.Equal(t, "from-header", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer from-bearer")
	assert.Equal(t, "from-bearer", ExtractToken(req))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", ExtractToken(req))
}

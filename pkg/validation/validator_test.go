package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Latitude *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Notes    string   `json:"notes" validate:"max=5"`
	Level    string   `json:"level" validate:"omitempty,oneof=low high"`
}

func TestValidate(t *testing.T) {
	lat := 10.0
	assert.Nil(t, Validate(sample{Latitude: &lat}))

	errs := Validate(sample{})
	require.Len(t, errs, 1)
	assert.Equal(t, "latitude", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)

	bad := 91.0
	errs = Validate(sample{Latitude: &bad, Notes: "too long", Level: "mid"})
	require.Len(t, errs, 3)
	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.ElementsMatch(t, []string{"latitude", "notes", "level"}, fields)
}

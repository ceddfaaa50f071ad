package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Username string   `json:"username" validate:"required,max=8"`
	Time     *float64 `json:"time" validate:"required,gte=0"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()
	ten := 10.0
	negative := -1.0

	errs, ok := v.Validate(input{Username: "alice", Time: &ten})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(input{Username: "", Time: &negative})
	assert.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "username", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "time", errs[1].Field)
	assert.Equal(t, "GTE", errs[1].Code)

	errs, ok = v.Validate(input{Username: "far too long", Time: &ten})
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "username must not exceed 8 characters", errs[0].Message)
}

func TestValidateNonStruct(t *testing.T) {
	v := NewValidator()
	_, ok := v.Validate(42)
	assert.True(t, ok)
}

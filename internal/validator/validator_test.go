package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

type positionQuery struct {
	Status string `json:"status" validate:"omitempty,is-position-status"`
	Tier   string `json:"tier" validate:"omitempty,is-listing-tier"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_UserRole(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&roleRequest{Role: "developer"}))
	assert.NoError(t, v.Validate(&roleRequest{Role: "hr"}))

	err := v.Validate(&roleRequest{Role: "admin"})
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be one of: developer, hr", vErr.Errors["role"])
}

func TestValidate_StatusAndTier(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&positionQuery{}))
	assert.NoError(t, v.Validate(&positionQuery{Status: "expired", Tier: "top"}))

	err := v.Validate(&positionQuery{Status: "closed", Tier: "gold"})
	require.Error(t, err)
	vErr := err.(*ValidationError)
	assert.Contains(t, vErr.Errors, "status")
	assert.Contains(t, vErr.Errors, "tier")
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := New().Validate(&signupRequest{Email: "bad", Password: "short"})
	require.Error(t, err)

	vErr := err.(*ValidationError)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must be at least 8 items/characters long", vErr.Errors["password"])
}

package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

func TestProgramError_Error(t *testing.T) {
	assert.Equal(t, "custom program error: 0x3b9ac9ff", CustomError(999999999).Error())
	assert.Equal(t,
		"custom program error: 0x6 (permissionless thaw not enabled)",
		NewCustomError("token-acl", 6, "permissionless thaw not enabled", apperrors.ErrForbidden).Error(),
	)
	assert.Equal(t, "account already in use", ErrAccountAlreadyInUse.Error())
}

func TestProgramError_IsAndUnwrap(t *testing.T) {
	notEnabled := NewCustomError("token-acl", 6, "permissionless thaw not enabled", apperrors.ErrForbidden)
	wrapped := fmt.Errorf("instruction 0: %w", notEnabled)

	assert.ErrorIs(t, wrapped, apperrors.ErrForbidden)
	assert.ErrorIs(t, wrapped, NewCustomError("token-acl", 6, "", nil))
	assert.NotErrorIs(t, wrapped, NewCustomError("token-acl", 7, "", nil))
	assert.NotErrorIs(t, wrapped, NewCustomError("token", 6, "", nil))
	assert.NotErrorIs(t, wrapped, CustomError(6))
	assert.NotErrorIs(t, wrapped, newBuiltinError(6, "", nil))

	assert.ErrorIs(t, CustomError(42), apperrors.ErrRejected)
	assert.ErrorIs(t, ErrInsufficientFunds, apperrors.ErrInsufficientResources)
}

func TestAsProgramError(t *testing.T) {
	programErr, ok := AsProgramError(fmt.Errorf("gate: %w", CustomError(999999999)))
	require.True(t, ok)
	assert.Equal(t, uint32(999999999), programErr.Code)
	assert.False(t, programErr.Builtin)

	_, ok = AsProgramError(assert.AnError)
	assert.False(t, ok)
}

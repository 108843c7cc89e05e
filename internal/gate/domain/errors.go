package domain

import (
	"github.com/allisson/tokenacl/internal/errors"
)

// Gate registry errors.
var (
	// ErrInvalidGateConfig indicates a registry entry that cannot be built.
	ErrInvalidGateConfig = errors.Wrap(errors.ErrInvalidInput, "invalid gate configuration")

	// ErrDuplicateGate indicates two registry entries share a program id.
	ErrDuplicateGate = errors.Wrap(errors.ErrConflict, "duplicate gate program id")

	// ErrGateUnavailable indicates a remote gating program could not be reached.
	ErrGateUnavailable = errors.New("gate unavailable")
)

package domain

import (
	"github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

const errorNamespace = "token"

// Token program errors, numbered like the token program's error enum.
var (
	ErrNotRentExempt       = ledgerDomain.NewCustomError(errorNamespace, 0, "lamport balance below rent-exempt threshold", errors.ErrInsufficientResources)
	ErrMintMismatch        = ledgerDomain.NewCustomError(errorNamespace, 3, "account not associated with this mint", errors.ErrInvalidInput)
	ErrOwnerMismatch       = ledgerDomain.NewCustomError(errorNamespace, 4, "owner does not match", errors.ErrUnauthorized)
	ErrAlreadyInUse        = ledgerDomain.NewCustomError(errorNamespace, 6, "account or token already in use", errors.ErrConflict)
	ErrUninitializedState  = ledgerDomain.NewCustomError(errorNamespace, 9, "state is uninitialized", errors.ErrInvalidInput)
	ErrNonNativeHasBalance = ledgerDomain.NewCustomError(errorNamespace, 11, "non-native account can only be closed if its balance is zero", errors.ErrConflict)
	ErrInvalidState        = ledgerDomain.NewCustomError(errorNamespace, 13, "state is invalid for requested operation", errors.ErrConflict)
	ErrMintCannotFreeze    = ledgerDomain.NewCustomError(errorNamespace, 16, "this token mint cannot freeze accounts", errors.ErrForbidden)
	ErrAccountFrozen       = ledgerDomain.NewCustomError(errorNamespace, 17, "account is frozen", errors.ErrForbidden)
)

// Decoding errors.
var (
	ErrInvalidMintData    = ledgerDomain.ErrInvalidAccountData
	ErrInvalidAccountData = ledgerDomain.ErrInvalidAccountData
)

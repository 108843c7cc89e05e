package domain

import (
	"github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

const errorNamespace = "token-acl"

// Engine program errors. Codes are stable and surfaced to submitters verbatim.
var (
	ErrInvalidMintConfig              = ledgerDomain.NewCustomError(errorNamespace, 0, "InvalidMintConfig", errors.ErrInvalidInput)
	ErrInvalidAuthority               = ledgerDomain.NewCustomError(errorNamespace, 1, "InvalidAuthority", errors.ErrUnauthorized)
	ErrInvalidTokenMint               = ledgerDomain.NewCustomError(errorNamespace, 2, "InvalidTokenMint", errors.ErrInvalidInput)
	ErrInvalidSystemProgram           = ledgerDomain.NewCustomError(errorNamespace, 3, "InvalidSystemProgram", errors.ErrInvalidInput)
	ErrInvalidTokenProgram            = ledgerDomain.NewCustomError(errorNamespace, 4, "InvalidTokenProgram", errors.ErrInvalidInput)
	ErrInvalidGatingProgram           = ledgerDomain.NewCustomError(errorNamespace, 5, "InvalidGatingProgram", errors.ErrForbidden)
	ErrPermissionlessThawNotEnabled   = ledgerDomain.NewCustomError(errorNamespace, 6, "PermissionlessThawNotEnabled", errors.ErrForbidden)
	ErrPermissionlessFreezeNotEnabled = ledgerDomain.NewCustomError(errorNamespace, 7, "PermissionlessFreezeNotEnabled", errors.ErrForbidden)
	ErrInvalidTokenAccountOwner       = ledgerDomain.NewCustomError(errorNamespace, 8, "InvalidTokenAccountOwner", errors.ErrInvalidInput)
)

var (
	// ErrMintConfigNotFound indicates no config record exists for the mint.
	ErrMintConfigNotFound = errors.Wrap(errors.ErrNotFound, "mint config not found")

	// ErrGuardHeld indicates another operation holds the guard of a token account.
	ErrGuardHeld = errors.Wrap(ledgerDomain.ErrAccountAlreadyInUse, "guard held by a concurrent operation")

	// ErrGuardOutsideTransaction indicates a guard was requested without a transaction
	// to bound its lifetime.
	ErrGuardOutsideTransaction = errors.New("guard requires an active transaction")
)

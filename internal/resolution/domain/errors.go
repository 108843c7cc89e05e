package domain

import (
	"github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

const (
	errorNamespace = "account-resolution"
	errorBase      = 2_724_315_840
)

func newResolutionError(offset uint32, name string, kind error) *ledgerDomain.ProgramError {
	return ledgerDomain.NewCustomError(errorNamespace, errorBase+offset, name, kind)
}

// Account resolution errors.
var (
	ErrIncorrectAccount        = newResolutionError(0, "incorrect account provided", errors.ErrInsufficientResources)
	ErrNotEnoughAccounts       = newResolutionError(1, "not enough accounts provided", errors.ErrInsufficientResources)
	ErrTlvUninitialized        = newResolutionError(2, "no value initialized in TLV data", errors.ErrInvalidInput)
	ErrTooManyPubkeys          = newResolutionError(4, "too many pubkeys provided", errors.ErrInvalidInput)
	ErrSeedConfigsTooLarge     = newResolutionError(6, "not enough bytes available to pack seed configuration", errors.ErrInvalidInput)
	ErrNotEnoughBytesForSeed   = newResolutionError(7, "not enough bytes available to unpack seed", errors.ErrInvalidInput)
	ErrInvalidSeedConfig       = newResolutionError(9, "tried to pack an invalid seed configuration", errors.ErrInvalidInput)
	ErrInstructionDataTooSmall = newResolutionError(10, "instruction data too small for seed configuration", errors.ErrInvalidInput)
	ErrAccountNotFound         = newResolutionError(11, "could not find account at specified index", errors.ErrInvalidInput)
	ErrAccountDataNotFound     = newResolutionError(13, "could not find account data at specified index", errors.ErrInvalidInput)
	ErrAccountDataTooSmall     = newResolutionError(14, "account data too small for requested seed configuration", errors.ErrInvalidInput)
	ErrNotEnoughBytesForPubkey = newResolutionError(16, "not enough bytes available to unpack pubkey data configuration", errors.ErrInvalidInput)
	ErrInvalidPubkeyDataConfig = newResolutionError(18, "tried to pack an invalid pubkey data configuration", errors.ErrInvalidInput)
)

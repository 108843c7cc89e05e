package domain

import (
	"fmt"

	"github.com/allisson/tokenacl/internal/errors"
)

// Ledger storage errors.
var (
	// ErrAccountNotFound indicates no account is stored at the address.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")

	// ErrAccountAlreadyExists indicates an insert hit an occupied address.
	ErrAccountAlreadyExists = errors.Wrap(errors.ErrConflict, "account already exists")

	// ErrInvalidSignature indicates a transaction signature does not verify.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid transaction signature")

	// ErrEmptyTransaction indicates a transaction without instructions.
	ErrEmptyTransaction = errors.Wrap(errors.ErrInvalidInput, "transaction has no instructions")

	// ErrTransactionAlreadyProcessed indicates the signature was already submitted.
	ErrTransactionAlreadyProcessed = errors.Wrap(errors.ErrConflict, "transaction already processed")

	// ErrTransactionRecordNotFound indicates no record exists for the id.
	ErrTransactionRecordNotFound = errors.Wrap(errors.ErrNotFound, "transaction record not found")
)

// ProgramError is an instruction failure carrying a stable numeric code. Builtin errors
// are raised by the runtime and the system program; custom errors are raised by a
// program and are surfaced to the submitter exactly as emitted. Namespace names the
// emitting program family so equal codes from different programs stay distinct; it is
// empty for codes emitted by external decision programs.
type ProgramError struct {
	Namespace string
	Code      uint32
	Name      string
	Builtin   bool
	Kind      error
}

// NewCustomError returns a program-defined error with its category.
func NewCustomError(namespace string, code uint32, name string, kind error) *ProgramError {
	return &ProgramError{Namespace: namespace, Code: code, Name: name, Kind: kind}
}

// CustomError returns an opaque rejection code emitted by an external decision program.
func CustomError(code uint32) *ProgramError {
	return &ProgramError{Code: code, Kind: errors.ErrRejected}
}

func newBuiltinError(code uint32, name string, kind error) *ProgramError {
	return &ProgramError{Code: code, Name: name, Builtin: true, Kind: kind}
}

// Error implements error.
func (e *ProgramError) Error() string {
	if e.Builtin {
		return e.Name
	}
	if e.Name == "" {
		return fmt.Sprintf("custom program error: %#x", e.Code)
	}
	return fmt.Sprintf("custom program error: %#x (%s)", e.Code, e.Name)
}

// Unwrap exposes the error category so errors.Is(err, errors.ErrForbidden) works.
func (e *ProgramError) Unwrap() error {
	return e.Kind
}

// Is matches program errors by origin and code, ignoring name and category.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	if !ok {
		return false
	}
	return t.Builtin == e.Builtin && t.Namespace == e.Namespace && t.Code == e.Code
}

// Builtin runtime errors.
var (
	ErrInvalidArgument          = newBuiltinError(1, "invalid program argument", errors.ErrInvalidInput)
	ErrInvalidInstructionData   = newBuiltinError(2, "invalid instruction data", errors.ErrInvalidInput)
	ErrInvalidAccountData       = newBuiltinError(3, "invalid account data for instruction", errors.ErrInvalidInput)
	ErrInsufficientFunds        = newBuiltinError(6, "insufficient funds for instruction", errors.ErrInsufficientResources)
	ErrIncorrectProgramID       = newBuiltinError(7, "incorrect program id for instruction", errors.ErrInvalidInput)
	ErrMissingRequiredSignature = newBuiltinError(8, "missing required signature for instruction", errors.ErrUnauthorized)
	ErrAccountAlreadyInUse      = newBuiltinError(9, "account already in use", errors.ErrConflict)
	ErrNotEnoughAccountKeys     = newBuiltinError(11, "insufficient account keys for instruction", errors.ErrInsufficientResources)
	ErrInvalidAccountOwner      = newBuiltinError(12, "invalid account owner", errors.ErrInvalidInput)
	ErrUnsupportedProgramID     = newBuiltinError(13, "unsupported program id", errors.ErrInvalidInput)
	ErrInvalidSeeds             = newBuiltinError(14, "provided seeds do not result in a valid address", errors.ErrInvalidInput)
)

// AsProgramError extracts the ProgramError from an error chain.
func AsProgramError(err error) (*ProgramError, bool) {
	var programErr *ProgramError
	if errors.As(err, &programErr) {
		return programErr, true
	}
	return nil, false
}

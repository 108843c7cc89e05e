// Package service implements the system program: the deposit and address-lifecycle
// primitives every other program builds on.
package service

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// System program instruction selectors (little-endian u32 prefix).
const (
	SystemInstructionCreateAccount uint32 = 0
	SystemInstructionAssign        uint32 = 1
	SystemInstructionTransfer      uint32 = 2
	SystemInstructionAllocate      uint32 = 8
)

// AccountRepository is the account storage the system program operates on.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Create(ctx context.Context, account *ledgerDomain.Account) error
	Update(ctx context.Context, account *ledgerDomain.Account) error
	Delete(ctx context.Context, address solana.PublicKey) error
}

// SystemService moves deposits and manages address allocation and ownership.
type SystemService struct {
	accounts AccountRepository
	logger   *slog.Logger
}

// NewSystemService creates a new SystemService.
func NewSystemService(accounts AccountRepository, logger *slog.Logger) *SystemService {
	return &SystemService{accounts: accounts, logger: logger}
}

// ProgramID returns the system program identity.
func (s *SystemService) ProgramID() solana.PublicKey {
	return solana.SystemProgramID
}

// Load returns the account at address, or an empty system-owned placeholder when the
// address is unowned.
func (s *SystemService) Load(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, bool, error) {
	account, err := s.accounts.Get(ctx, address)
	if err != nil {
		if apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
			return &ledgerDomain.Account{Address: address, Owner: solana.SystemProgramID, Data: []byte{}}, false, nil
		}
		return nil, false, err
	}
	return account, true, nil
}

func (s *SystemService) store(ctx context.Context, account *ledgerDomain.Account, exists bool) error {
	if exists {
		return s.accounts.Update(ctx, account)
	}
	return s.accounts.Create(ctx, account)
}

func (s *SystemService) debit(ctx context.Context, from solana.PublicKey, lamports uint64) error {
	account, exists, err := s.Load(ctx, from)
	if err != nil {
		return err
	}
	if !exists || account.Lamports < lamports {
		return ledgerDomain.ErrInsufficientFunds
	}
	account.Lamports -= lamports
	return s.accounts.Update(ctx, account)
}

// Credit adds lamports to address, creating an empty system account when needed.
func (s *SystemService) Credit(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	account, exists, err := s.Load(ctx, to)
	if err != nil {
		return err
	}
	if account.Lamports > math.MaxUint64-lamports {
		return ledgerDomain.ErrInvalidArgument
	}
	account.Lamports += lamports
	return s.store(ctx, account, exists)
}

// Transfer moves lamports between accounts. The source must sign and be system-owned
// without data.
func (s *SystemService) Transfer(
	ctx context.Context,
	from, to solana.PublicKey,
	lamports uint64,
	signers ledgerDomain.SignerSet,
) error {
	if !signers.Has(from) {
		return ledgerDomain.ErrMissingRequiredSignature
	}
	source, _, err := s.Load(ctx, from)
	if err != nil {
		return err
	}
	if !source.IsSystemOwned() || len(source.Data) > 0 {
		return ledgerDomain.ErrInvalidAccountOwner
	}
	if lamports == 0 || from.Equals(to) {
		return nil
	}
	if err := s.debit(ctx, from, lamports); err != nil {
		return err
	}
	return s.Credit(ctx, to, lamports)
}

// CreateAccount allocates space bytes at address and assigns it to owner. The payer
// tops the address up to the rent-exempt minimum, so pre-funded addresses are accepted.
// Both payer and address must be in signers; a program-derived address is only in
// the set when its owning program proved the derivation.
func (s *SystemService) CreateAccount(
	ctx context.Context,
	payer, address solana.PublicKey,
	space int,
	owner solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	if !signers.Has(payer) || !signers.Has(address) {
		return ledgerDomain.ErrMissingRequiredSignature
	}

	target, exists, err := s.Load(ctx, address)
	if err != nil {
		return err
	}
	if len(target.Data) > 0 || !target.IsSystemOwned() {
		return ledgerDomain.ErrAccountAlreadyInUse
	}

	required := ledgerDomain.MinimumBalance(space)
	if target.Lamports < required {
		topUp := required - target.Lamports
		if err := s.debit(ctx, payer, topUp); err != nil {
			return err
		}
		target.Lamports = required
	}

	target.Data = make([]byte, space)
	target.Owner = owner
	if err := s.store(ctx, target, exists); err != nil {
		if apperrors.Is(err, ledgerDomain.ErrAccountAlreadyExists) {
			return ledgerDomain.ErrAccountAlreadyInUse
		}
		return err
	}

	s.logger.Debug("account created",
		slog.String("address", address.String()),
		slog.String("owner", owner.String()),
		slog.Int("space", space),
	)
	return nil
}

// Resize sets the data length of a system-owned address. The address must sign and
// its deposit must already cover the rent-exempt minimum of the new length.
func (s *SystemService) Resize(
	ctx context.Context,
	address solana.PublicKey,
	space int,
	signers ledgerDomain.SignerSet,
) error {
	if !signers.Has(address) {
		return ledgerDomain.ErrMissingRequiredSignature
	}
	target, exists, err := s.Load(ctx, address)
	if err != nil {
		return err
	}
	if !target.IsSystemOwned() {
		return ledgerDomain.ErrInvalidAccountOwner
	}
	if target.Lamports < ledgerDomain.MinimumBalance(space) {
		return ledgerDomain.ErrInsufficientFunds
	}

	data := make([]byte, space)
	copy(data, target.Data)
	target.Data = data
	return s.store(ctx, target, exists)
}

// Assign hands a system-owned address to owner. The address must sign.
func (s *SystemService) Assign(
	ctx context.Context,
	address, owner solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	if !signers.Has(address) {
		return ledgerDomain.ErrMissingRequiredSignature
	}
	target, exists, err := s.Load(ctx, address)
	if err != nil {
		return err
	}
	if !target.IsSystemOwned() {
		return ledgerDomain.ErrInvalidAccountOwner
	}
	target.Owner = owner
	return s.store(ctx, target, exists)
}

// Close zeroes the account, moves every lamport to receiver and releases the address
// back to the unowned state. Authority over address is the calling program's concern.
func (s *SystemService) Close(ctx context.Context, address, receiver solana.PublicKey) error {
	account, err := s.accounts.Get(ctx, address)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, address); err != nil {
		return err
	}
	if account.Lamports == 0 || address.Equals(receiver) {
		return nil
	}
	return s.Credit(ctx, receiver, account.Lamports)
}

// Process executes a system program instruction.
func (s *SystemService) Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error {
	if len(ix.Data) < 4 {
		return ledgerDomain.ErrInvalidInstructionData
	}

	switch binary.LittleEndian.Uint32(ix.Data) {
	case SystemInstructionCreateAccount:
		if len(ix.Data) != 4+8+32 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		keys, err := ix.Keys(2)
		if err != nil {
			return err
		}
		space := binary.LittleEndian.Uint64(ix.Data[4:12])
		if space > 10*1024*1024 {
			return ledgerDomain.ErrInvalidArgument
		}
		owner := solana.PublicKeyFromBytes(ix.Data[12:44])
		return s.CreateAccount(ctx, keys[0], keys[1], int(space), owner, ix.Signers)
	case SystemInstructionAssign:
		if len(ix.Data) != 4+32 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		keys, err := ix.Keys(1)
		if err != nil {
			return err
		}
		return s.Assign(ctx, keys[0], solana.PublicKeyFromBytes(ix.Data[4:36]), ix.Signers)
	case SystemInstructionAllocate:
		if len(ix.Data) != 4+8 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		keys, err := ix.Keys(1)
		if err != nil {
			return err
		}
		space := binary.LittleEndian.Uint64(ix.Data[4:12])
		if space > 10*1024*1024 {
			return ledgerDomain.ErrInvalidArgument
		}
		return s.Resize(ctx, keys[0], int(space), ix.Signers)
	case SystemInstructionTransfer:
		if len(ix.Data) != 4+8 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		keys, err := ix.Keys(2)
		if err != nil {
			return err
		}
		return s.Transfer(ctx, keys[0], keys[1], binary.LittleEndian.Uint64(ix.Data[4:]), ix.Signers)
	default:
		return ledgerDomain.ErrInvalidInstructionData
	}
}

// NewTransferInstruction builds a system transfer instruction.
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) ledgerDomain.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, SystemInstructionTransfer)
	data = binary.LittleEndian.AppendUint64(data, lamports)
	return ledgerDomain.Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts: []ledgerDomain.AccountMeta{
			ledgerDomain.NewAccountMeta(from, true, true),
			ledgerDomain.NewAccountMeta(to, true, false),
		},
		Data: data,
	}
}

// NewCreateAccountInstruction builds a system create-account instruction.
func NewCreateAccountInstruction(payer, address solana.PublicKey, space uint64, owner solana.PublicKey) ledgerDomain.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, SystemInstructionCreateAccount)
	data = binary.LittleEndian.AppendUint64(data, space)
	data = append(data, owner[:]...)
	return ledgerDomain.Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts: []ledgerDomain.AccountMeta{
			ledgerDomain.NewAccountMeta(payer, true, true),
			ledgerDomain.NewAccountMeta(address, true, true),
		},
		Data: data,
	}
}

// NewAssignInstruction builds a system assign instruction.
func NewAssignInstruction(address, owner solana.PublicKey) ledgerDomain.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, SystemInstructionAssign)
	data = append(data, owner[:]...)
	return ledgerDomain.Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts:  []ledgerDomain.AccountMeta{ledgerDomain.NewAccountMeta(address, true, true)},
		Data:      data,
	}
}

// NewAllocateInstruction builds a system allocate instruction resizing address to space bytes.
func NewAllocateInstruction(address solana.PublicKey, space uint64) ledgerDomain.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, SystemInstructionAllocate)
	data = binary.LittleEndian.AppendUint64(data, space)
	return ledgerDomain.Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts:  []ledgerDomain.AccountMeta{ledgerDomain.NewAccountMeta(address, true, true)},
		Data:      data,
	}
}

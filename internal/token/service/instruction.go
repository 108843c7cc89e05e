package service

import (
	"context"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// Token program instruction selectors.
const (
	InstructionSetAuthority                 uint8 = 6
	InstructionCloseAccount                 uint8 = 9
	InstructionFreezeAccount                uint8 = 10
	InstructionThawAccount                  uint8 = 11
	InstructionInitializeAccount3           uint8 = 18
	InstructionInitializeMint2              uint8 = 20
	InstructionInitializeMintCloseAuthority uint8 = 25
	InstructionDefaultAccountStateExtension uint8 = 28
)

// AuthorityTypeFreezeAccount selects the mint freeze authority in SetAuthority.
const AuthorityTypeFreezeAccount uint8 = 1

const defaultAccountStateInitialize uint8 = 0

func appendOptionalKey(data []byte, key *solana.PublicKey) []byte {
	if key == nil {
		return append(data, 0)
	}
	data = append(data, 1)
	return append(data, key[:]...)
}

// readOptionalKey decodes a one-byte tagged optional key and returns the rest.
func readOptionalKey(data []byte) (*solana.PublicKey, []byte, error) {
	if len(data) < 1 {
		return nil, nil, ledgerDomain.ErrInvalidInstructionData
	}
	switch data[0] {
	case 0:
		return nil, data[1:], nil
	case 1:
		if len(data) < 33 {
			return nil, nil, ledgerDomain.ErrInvalidInstructionData
		}
		key := solana.PublicKeyFromBytes(data[1:33])
		return &key, data[33:], nil
	default:
		return nil, nil, ledgerDomain.ErrInvalidInstructionData
	}
}

// Process executes a token program instruction.
func (s *TokenService) Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error {
	if len(ix.Data) == 0 {
		return ledgerDomain.ErrInvalidInstructionData
	}
	payload := ix.Data[1:]

	switch ix.Data[0] {
	case InstructionInitializeMint2:
		keys, err := ix.Keys(1)
		if err != nil {
			return err
		}
		if len(payload) < 33 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		mintAuthority := solana.PublicKeyFromBytes(payload[1:33])
		freezeAuthority, rest, err := readOptionalKey(payload[33:])
		if err != nil || len(rest) != 0 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		return s.InitializeMint(ctx, keys[0], payload[0], mintAuthority, freezeAuthority)

	case InstructionInitializeMintCloseAuthority:
		keys, err := ix.Keys(1)
		if err != nil {
			return err
		}
		closeAuthority, rest, err := readOptionalKey(payload)
		if err != nil || len(rest) != 0 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		return s.InitializeMintCloseAuthority(ctx, keys[0], closeAuthority)

	case InstructionDefaultAccountStateExtension:
		keys, err := ix.Keys(1)
		if err != nil {
			return err
		}
		if len(payload) != 2 || payload[0] != defaultAccountStateInitialize {
			return ledgerDomain.ErrInvalidInstructionData
		}
		return s.InitializeDefaultAccountState(ctx, keys[0], tokenDomain.AccountState(payload[1]))

	case InstructionInitializeAccount3:
		keys, err := ix.Keys(2)
		if err != nil {
			return err
		}
		if len(payload) != 32 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		return s.InitializeAccount(ctx, keys[0], keys[1], solana.PublicKeyFromBytes(payload))

	case InstructionSetAuthority:
		keys, err := ix.Keys(2)
		if err != nil {
			return err
		}
		if len(payload) < 1 || payload[0] != AuthorityTypeFreezeAccount {
			return ledgerDomain.ErrInvalidInstructionData
		}
		newAuthority, rest, err := readOptionalKey(payload[1:])
		if err != nil || len(rest) != 0 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		return s.SetFreezeAuthority(ctx, keys[0], keys[1], newAuthority, ix.Signers)

	case InstructionFreezeAccount, InstructionThawAccount:
		keys, err := ix.Keys(3)
		if err != nil {
			return err
		}
		if len(payload) != 0 {
			return ledgerDomain.ErrInvalidInstructionData
		}
		if ix.Data[0] == InstructionFreezeAccount {
			return s.FreezeAccount(ctx, keys[0], keys[1], keys[2], ix.Signers)
		}
		return s.ThawAccount(ctx, keys[0], keys[1], keys[2], ix.Signers)

	case InstructionCloseAccount:
		keys, err := ix.Keys(3)
		if err != nil {
			return err
		}
		return s.CloseAccount(ctx, keys[0], keys[1], keys[2], ix.Signers)

	default:
		return ledgerDomain.ErrInvalidInstructionData
	}
}

func newTokenInstruction(data []byte, accounts ...ledgerDomain.AccountMeta) ledgerDomain.Instruction {
	return ledgerDomain.Instruction{ProgramID: tokenDomain.ProgramID, Accounts: accounts, Data: data}
}

// NewInitializeMintInstruction builds an InitializeMint2 instruction.
func NewInitializeMintInstruction(
	mint solana.PublicKey,
	decimals uint8,
	mintAuthority solana.PublicKey,
	freezeAuthority *solana.PublicKey,
) ledgerDomain.Instruction {
	data := []byte{InstructionInitializeMint2, decimals}
	data = append(data, mintAuthority[:]...)
	data = appendOptionalKey(data, freezeAuthority)
	return newTokenInstruction(data, ledgerDomain.NewAccountMeta(mint, true, false))
}

// NewInitializeMintCloseAuthorityInstruction builds the close authority extension
// initializer. It must precede InitializeMint2.
func NewInitializeMintCloseAuthorityInstruction(mint solana.PublicKey, closeAuthority *solana.PublicKey) ledgerDomain.Instruction {
	data := appendOptionalKey([]byte{InstructionInitializeMintCloseAuthority}, closeAuthority)
	return newTokenInstruction(data, ledgerDomain.NewAccountMeta(mint, true, false))
}

// NewInitializeDefaultAccountStateInstruction builds the default account state extension
// initializer. It must precede InitializeMint2.
func NewInitializeDefaultAccountStateInstruction(mint solana.PublicKey, state tokenDomain.AccountState) ledgerDomain.Instruction {
	data := []byte{InstructionDefaultAccountStateExtension, defaultAccountStateInitialize, byte(state)}
	return newTokenInstruction(data, ledgerDomain.NewAccountMeta(mint, true, false))
}

// NewInitializeAccountInstruction builds an InitializeAccount3 instruction.
func NewInitializeAccountInstruction(account, mint, owner solana.PublicKey) ledgerDomain.Instruction {
	data := append([]byte{InstructionInitializeAccount3}, owner[:]...)
	return newTokenInstruction(data,
		ledgerDomain.NewAccountMeta(account, true, false),
		ledgerDomain.NewAccountMeta(mint, false, false),
	)
}

// NewSetFreezeAuthorityInstruction builds a SetAuthority instruction for the freeze
// authority of mint.
func NewSetFreezeAuthorityInstruction(mint, authority solana.PublicKey, newAuthority *solana.PublicKey) ledgerDomain.Instruction {
	data := appendOptionalKey([]byte{InstructionSetAuthority, AuthorityTypeFreezeAccount}, newAuthority)
	return newTokenInstruction(data,
		ledgerDomain.NewAccountMeta(mint, true, false),
		ledgerDomain.NewAccountMeta(authority, false, true),
	)
}

// NewFreezeAccountInstruction builds a FreezeAccount instruction.
func NewFreezeAccountInstruction(account, mint, authority solana.PublicKey) ledgerDomain.Instruction {
	return newTokenInstruction([]byte{InstructionFreezeAccount},
		ledgerDomain.NewAccountMeta(account, true, false),
		ledgerDomain.NewAccountMeta(mint, false, false),
		ledgerDomain.NewAccountMeta(authority, false, true),
	)
}

// NewThawAccountInstruction builds a ThawAccount instruction.
func NewThawAccountInstruction(account, mint, authority solana.PublicKey) ledgerDomain.Instruction {
	return newTokenInstruction([]byte{InstructionThawAccount},
		ledgerDomain.NewAccountMeta(account, true, false),
		ledgerDomain.NewAccountMeta(mint, false, false),
		ledgerDomain.NewAccountMeta(authority, false, true),
	)
}

// NewCloseAccountInstruction builds a CloseAccount instruction.
func NewCloseAccountInstruction(account, destination, authority solana.PublicKey) ledgerDomain.Instruction {
	return newTokenInstruction([]byte{InstructionCloseAccount},
		ledgerDomain.NewAccountMeta(account, true, false),
		ledgerDomain.NewAccountMeta(destination, true, false),
		ledgerDomain.NewAccountMeta(authority, false, true),
	)
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// Processor is the engine as a ledger program. It decodes the opcode table and the
// per-opcode account order and dispatches to the use cases.
type Processor struct {
	programID      solana.PublicKey
	configs        ConfigUseCase
	freezes        FreezeUseCase
	permissionless PermissionlessUseCase
	logger         *slog.Logger
}

// NewProcessor creates a new Processor.
func NewProcessor(
	programID solana.PublicKey,
	configs ConfigUseCase,
	freezes FreezeUseCase,
	permissionless PermissionlessUseCase,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		programID:      programID,
		configs:        configs,
		freezes:        freezes,
		permissionless: permissionless,
		logger:         logger,
	}
}

// ProgramID returns the engine identity.
func (p *Processor) ProgramID() solana.PublicKey {
	return p.programID
}

// exactKeys returns the account keys of an instruction that takes exactly n accounts.
func exactKeys(ix *ledgerDomain.InstructionContext, n int) ([]solana.PublicKey, error) {
	if len(ix.Accounts) != n {
		return nil, ledgerDomain.ErrInvalidInstructionData
	}
	return ix.Keys(n)
}

// Process implements the ledger program interface.
func (p *Processor) Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error {
	data, err := aclDomain.UnmarshalInstructionData(ix.Data)
	if err != nil {
		return err
	}
	p.logger.Debug("processing engine instruction", slog.String("opcode", data.Opcode.String()))

	switch data.Opcode {
	case aclDomain.OpcodeCreateConfig:
		keys, err := exactKeys(ix, 6)
		if err != nil {
			return err
		}
		_, err = p.configs.Create(ctx, CreateConfigInput{
			Payer:         keys[0],
			Authority:     keys[1],
			Mint:          keys[2],
			MintConfig:    keys[3],
			SystemProgram: keys[4],
			TokenProgram:  keys[5],
			GatingProgram: data.Key,
			Signers:       ix.Signers,
		})
		return err

	case aclDomain.OpcodeDeleteConfig:
		keys, err := exactKeys(ix, 5)
		if err != nil {
			return err
		}
		_, err = p.configs.Delete(ctx, DeleteConfigInput{
			Authority:          keys[0],
			Receiver:           keys[1],
			Mint:               keys[2],
			MintConfig:         keys[3],
			TokenProgram:       keys[4],
			NewFreezeAuthority: data.Key,
			Signers:            ix.Signers,
		})
		return err

	case aclDomain.OpcodeSetAuthority, aclDomain.OpcodeSetGatingProgram, aclDomain.OpcodeTogglePermissionlessInstructions:
		keys, err := ix.Keys(2)
		if err != nil {
			return err
		}
		in := UpdateConfigInput{Authority: keys[0], MintConfig: keys[1], Signers: ix.Signers}
		switch data.Opcode {
		case aclDomain.OpcodeSetAuthority:
			_, err = p.configs.SetAuthority(ctx, in, data.Key)
		case aclDomain.OpcodeSetGatingProgram:
			_, err = p.configs.SetGatingProgram(ctx, in, data.Key)
		default:
			_, err = p.configs.TogglePermissionlessInstructions(ctx, in, data.EnableFreeze, data.EnableThaw)
		}
		return err

	case aclDomain.OpcodeFreeze, aclDomain.OpcodeThaw:
		keys, err := ix.Keys(5)
		if err != nil {
			return err
		}
		in := FreezeInput{
			Authority:    keys[0],
			Mint:         keys[1],
			TokenAccount: keys[2],
			MintConfig:   keys[3],
			TokenProgram: keys[4],
			Signers:      ix.Signers,
		}
		if data.Opcode == aclDomain.OpcodeFreeze {
			return p.freezes.Freeze(ctx, in)
		}
		return p.freezes.Thaw(ctx, in)

	case aclDomain.OpcodeFreezePermissionless, aclDomain.OpcodeThawPermissionless:
		keys, err := ix.Keys(9)
		if err != nil {
			return err
		}
		in := PermissionlessInput{
			Authority:         keys[0],
			Mint:              keys[1],
			TokenAccount:      keys[2],
			Guard:             keys[3],
			TokenAccountOwner: keys[4],
			MintConfig:        keys[5],
			TokenProgram:      keys[6],
			SystemProgram:     keys[7],
			GatingProgram:     keys[8],
			Remaining:         ix.Remaining(9),
			Idempotent:        data.Idempotent,
			Signers:           ix.Signers,
		}
		if data.Opcode == aclDomain.OpcodeFreezePermissionless {
			return p.permissionless.FreezePermissionless(ctx, in)
		}
		return p.permissionless.ThawPermissionless(ctx, in)

	default:
		return ledgerDomain.ErrInvalidInstructionData
	}
}

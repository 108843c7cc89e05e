package domain

import (
	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// Opcode selects an engine operation. It is the first instruction data byte.
type Opcode uint8

const (
	OpcodeCreateConfig                     Opcode = 0
	OpcodeSetAuthority                     Opcode = 1
	OpcodeSetGatingProgram                 Opcode = 2
	OpcodeDeleteConfig                     Opcode = 3
	OpcodeThaw                             Opcode = 4
	OpcodeFreeze                           Opcode = 5
	OpcodeThawPermissionless               Opcode = 6
	OpcodeFreezePermissionless             Opcode = 7
	OpcodeTogglePermissionlessInstructions Opcode = 8
)

var opcodeNames = map[Opcode]string{
	OpcodeCreateConfig:                     "create_config",
	OpcodeSetAuthority:                     "set_authority",
	OpcodeSetGatingProgram:                 "set_gating_program",
	OpcodeDeleteConfig:                     "delete_config",
	OpcodeThaw:                             "thaw",
	OpcodeFreeze:                           "freeze",
	OpcodeThawPermissionless:               "thaw_permissionless",
	OpcodeFreezePermissionless:             "freeze_permissionless",
	OpcodeTogglePermissionlessInstructions: "toggle_permissionless_instructions",
}

// String returns the snake_case operation name.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}

// InstructionData is a decoded engine instruction payload.
type InstructionData struct {
	Opcode Opcode
	// Key is the 32-byte argument of CreateConfig (gating program), SetAuthority (new
	// authority), SetGatingProgram (gating program) and DeleteConfig (replacement
	// freeze authority).
	Key solana.PublicKey
	// Idempotent is the flag of the permissionless operations.
	Idempotent bool
	// EnableFreeze and EnableThaw are the TogglePermissionlessInstructions flags.
	EnableFreeze bool
	EnableThaw   bool
}

// Marshal encodes the payload.
func (d *InstructionData) Marshal() []byte {
	data := []byte{byte(d.Opcode)}
	switch d.Opcode {
	case OpcodeCreateConfig, OpcodeSetAuthority, OpcodeSetGatingProgram, OpcodeDeleteConfig:
		data = append(data, d.Key[:]...)
	case OpcodeThawPermissionless, OpcodeFreezePermissionless:
		data = append(data, boolByte(d.Idempotent))
	case OpcodeTogglePermissionlessInstructions:
		data = append(data, boolByte(d.EnableFreeze), boolByte(d.EnableThaw))
	}
	return data
}

// UnmarshalInstructionData decodes an engine instruction. Unknown opcodes and payloads
// of the wrong size yield ErrInvalidInstructionData.
func UnmarshalInstructionData(data []byte) (*InstructionData, error) {
	if len(data) == 0 {
		return nil, ledgerDomain.ErrInvalidInstructionData
	}
	d := &InstructionData{Opcode: Opcode(data[0])}
	payload := data[1:]

	switch d.Opcode {
	case OpcodeCreateConfig, OpcodeSetAuthority, OpcodeSetGatingProgram, OpcodeDeleteConfig:
		if len(payload) != 32 {
			return nil, ledgerDomain.ErrInvalidInstructionData
		}
		d.Key = solana.PublicKeyFromBytes(payload)
	case OpcodeThaw, OpcodeFreeze:
		if len(payload) != 0 {
			return nil, ledgerDomain.ErrInvalidInstructionData
		}
	case OpcodeThawPermissionless, OpcodeFreezePermissionless:
		if len(payload) != 1 || payload[0] > 1 {
			return nil, ledgerDomain.ErrInvalidInstructionData
		}
		d.Idempotent = payload[0] == 1
	case OpcodeTogglePermissionlessInstructions:
		if len(payload) != 2 || payload[0] > 1 || payload[1] > 1 {
			return nil, ledgerDomain.ErrInvalidInstructionData
		}
		d.EnableFreeze = payload[0] == 1
		d.EnableThaw = payload[1] == 1
	default:
		return nil, ledgerDomain.ErrInvalidInstructionData
	}
	return d, nil
}

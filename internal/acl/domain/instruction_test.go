package domain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func TestInstructionData_Encoding(t *testing.T) {
	key := solana.NewWallet().PublicKey()

	t.Run("create config carries the gating program", func(t *testing.T) {
		data := (&InstructionData{Opcode: OpcodeCreateConfig, Key: key}).Marshal()
		assert.Equal(t, append([]byte{0}, key[:]...), data)
	})

	t.Run("delete config carries the replacement authority", func(t *testing.T) {
		data := (&InstructionData{Opcode: OpcodeDeleteConfig, Key: key}).Marshal()
		assert.Equal(t, byte(3), data[0])
		assert.Len(t, data, 33)
	})

	t.Run("thaw permissionless carries the idempotent flag", func(t *testing.T) {
		assert.Equal(t, []byte{6, 1}, (&InstructionData{Opcode: OpcodeThawPermissionless, Idempotent: true}).Marshal())
		assert.Equal(t, []byte{7, 0}, (&InstructionData{Opcode: OpcodeFreezePermissionless}).Marshal())
	})

	t.Run("toggle carries freeze then thaw", func(t *testing.T) {
		data := (&InstructionData{Opcode: OpcodeTogglePermissionlessInstructions, EnableFreeze: true}).Marshal()
		assert.Equal(t, []byte{8, 1, 0}, data)
	})

	t.Run("decodes what it encodes", func(t *testing.T) {
		inputs := []InstructionData{
			{Opcode: OpcodeCreateConfig, Key: key},
			{Opcode: OpcodeSetAuthority, Key: key},
			{Opcode: OpcodeSetGatingProgram},
			{Opcode: OpcodeDeleteConfig, Key: key},
			{Opcode: OpcodeThaw},
			{Opcode: OpcodeFreeze},
			{Opcode: OpcodeThawPermissionless, Idempotent: true},
			{Opcode: OpcodeFreezePermissionless},
			{Opcode: OpcodeTogglePermissionlessInstructions, EnableThaw: true},
		}
		for _, in := range inputs {
			decoded, err := UnmarshalInstructionData(in.Marshal())
			require.NoError(t, err, in.Opcode.String())
			assert.Equal(t, in, *decoded)
		}
	})
}

func TestUnmarshalInstructionData_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "unknown opcode", data: []byte{9}},
		{name: "short key", data: []byte{0, 1, 2}},
		{name: "thaw with payload", data: []byte{4, 0}},
		{name: "missing idempotent flag", data: []byte{6}},
		{name: "non boolean idempotent flag", data: []byte{7, 2}},
		{name: "toggle with one flag", data: []byte{8, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalInstructionData(tt.data)
			assert.ErrorIs(t, err, ledgerDomain.ErrInvalidInstructionData)
		})
	}
}

func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "thaw_permissionless", OpcodeThawPermissionless.String())
	assert.Equal(t, "unknown", Opcode(42).String())
}

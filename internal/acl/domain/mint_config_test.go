package domain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func TestMintConfig_Layout(t *testing.T) {
	config := &MintConfig{
		Mint:                     solana.NewWallet().PublicKey(),
		Authority:                solana.NewWallet().PublicKey(),
		GatingProgram:            solana.NewWallet().PublicKey(),
		Bump:                     254,
		EnablePermissionlessThaw: true,
	}

	data := config.Marshal()
	require.Len(t, data, 100)
	assert.Equal(t, byte(0x01), data[0])
	assert.Equal(t, config.Mint[:], data[1:33])
	assert.Equal(t, config.Authority[:], data[33:65])
	assert.Equal(t, config.GatingProgram[:], data[65:97])
	assert.Equal(t, []byte{254, 0, 1}, data[97:100])

	decoded, err := UnmarshalMintConfig(data)
	require.NoError(t, err)
	assert.Equal(t, config, decoded)
	assert.True(t, decoded.PermissionlessEnabled(false))
	assert.False(t, decoded.PermissionlessEnabled(true))
}

func TestUnmarshalMintConfig_Invalid(t *testing.T) {
	valid := (&MintConfig{Mint: solana.NewWallet().PublicKey()}).Marshal()

	tests := []struct {
		name string
		data func() []byte
	}{
		{name: "empty", data: func() []byte { return nil }},
		{name: "short", data: func() []byte { return valid[:99] }},
		{name: "long", data: func() []byte { return append(append([]byte{}, valid...), 0) }},
		{name: "wrong discriminator", data: func() []byte {
			d := append([]byte{}, valid...)
			d[0] = 2
			return d
		}},
		{name: "non boolean flag", data: func() []byte {
			d := append([]byte{}, valid...)
			d[98] = 7
			return d
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalMintConfig(tt.data())
			assert.ErrorIs(t, err, ErrInvalidMintConfig)
		})
	}
}

func TestMintConfig_HasGatingProgram(t *testing.T) {
	assert.False(t, (&MintConfig{}).HasGatingProgram())
	assert.True(t, (&MintConfig{GatingProgram: solana.NewWallet().PublicKey()}).HasGatingProgram())
}

func TestErrorCodes(t *testing.T) {
	codes := map[*ledgerDomain.ProgramError]uint32{
		ErrInvalidMintConfig:              0,
		ErrInvalidAuthority:               1,
		ErrInvalidTokenMint:               2,
		ErrInvalidSystemProgram:           3,
		ErrInvalidTokenProgram:            4,
		ErrInvalidGatingProgram:           5,
		ErrPermissionlessThawNotEnabled:   6,
		ErrPermissionlessFreezeNotEnabled: 7,
		ErrInvalidTokenAccountOwner:       8,
	}
	for err, code := range codes {
		assert.Equal(t, code, err.Code, err.Name)
		assert.Equal(t, "token-acl", err.Namespace)
	}
}

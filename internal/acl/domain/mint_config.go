// Package domain defines the engine's records: the per-mint configuration, the guard
// record, their derived addresses and the instruction codec.
package domain

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// MintConfigSize is the stored size of a MintConfig.
	MintConfigSize = 1 + 32 + 32 + 32 + 1 + 1 + 1
	// MintConfigDiscriminator tags MintConfig records.
	MintConfigDiscriminator byte = 0x01

	// GuardSize is the stored size of a guard record.
	GuardSize = 1
	// GuardActive marks a permissionless operation in flight.
	GuardActive byte = 1
)

// MintConfig is the engine's governance record for one mint.
type MintConfig struct {
	Mint                       solana.PublicKey
	Authority                  solana.PublicKey
	GatingProgram              solana.PublicKey
	Bump                       uint8
	EnablePermissionlessFreeze bool
	EnablePermissionlessThaw   bool
}

// HasGatingProgram reports whether permissionless operations are delegated.
func (c *MintConfig) HasGatingProgram() bool {
	return !c.GatingProgram.IsZero()
}

// PermissionlessEnabled reports whether the permissionless variant of op is enabled.
func (c *MintConfig) PermissionlessEnabled(freeze bool) bool {
	if freeze {
		return c.EnablePermissionlessFreeze
	}
	return c.EnablePermissionlessThaw
}

// Marshal encodes the record.
func (c *MintConfig) Marshal() []byte {
	data := make([]byte, MintConfigSize)
	data[0] = MintConfigDiscriminator
	copy(data[1:33], c.Mint[:])
	copy(data[33:65], c.Authority[:])
	copy(data[65:97], c.GatingProgram[:])
	data[97] = c.Bump
	data[98] = boolByte(c.EnablePermissionlessFreeze)
	data[99] = boolByte(c.EnablePermissionlessThaw)
	return data
}

// UnmarshalMintConfig decodes a stored record. Any size, tag or flag mismatch yields
// ErrInvalidMintConfig.
func UnmarshalMintConfig(data []byte) (*MintConfig, error) {
	if len(data) != MintConfigSize || data[0] != MintConfigDiscriminator || data[98] > 1 || data[99] > 1 {
		return nil, ErrInvalidMintConfig
	}
	return &MintConfig{
		Mint:                       solana.PublicKeyFromBytes(data[1:33]),
		Authority:                  solana.PublicKeyFromBytes(data[33:65]),
		GatingProgram:              solana.PublicKeyFromBytes(data[65:97]),
		Bump:                       data[97],
		EnablePermissionlessFreeze: data[98] == 1,
		EnablePermissionlessThaw:   data[99] == 1,
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// RestoreSkipReason explains why DeleteConfig left the mint's freeze authority alone.
type RestoreSkipReason string

const (
	RestoreSkipMintClosed       RestoreSkipReason = "mint_closed"
	RestoreSkipAuthorityChanged RestoreSkipReason = "authority_changed"
	RestoreSkipMintInvalid      RestoreSkipReason = "mint_invalid"
)

// DeleteConfigResult reports what DeleteConfig did with the freeze authority.
type DeleteConfigResult struct {
	AuthorityRestored bool              `json:"authority_restored"`
	RestoreSkipReason RestoreSkipReason `json:"restore_skip_reason,omitempty"`
}

// Package domain defines token-2022 compatible mint and token account layouts.
//
// Mints are stored as the 82-byte base layout; when extensions are present the data
// is padded to 165 bytes, followed by an account-type byte and TLV extension entries.
package domain

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

const (
	// MintBaseSize is the size of the base mint layout.
	MintBaseSize = 82
	// AccountBaseSize is the size of the base token account layout.
	AccountBaseSize = 165

	accountTypeOffset = AccountBaseSize
	tlvStart          = AccountBaseSize + 1
	tlvHeaderSize     = 4
)

// AccountType tags extended token program data.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = 0
	AccountTypeMint          AccountType = 1
	AccountTypeAccount       AccountType = 2
)

// ExtensionType identifies a TLV extension entry.
type ExtensionType uint16

const (
	ExtensionMintCloseAuthority  ExtensionType = 3
	ExtensionDefaultAccountState ExtensionType = 6
)

// Mint is a token mint.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey

	// CloseAuthority is the MintCloseAuthority extension; nil when absent.
	CloseAuthority *solana.PublicKey
	// DefaultAccountState is the DefaultAccountState extension; nil when absent.
	DefaultAccountState *AccountState
}

// HasExtensions reports whether the mint carries any extension.
func (m *Mint) HasExtensions() bool {
	return m.CloseAuthority != nil || m.DefaultAccountState != nil
}

// Marshal encodes the mint.
func (m *Mint) Marshal() []byte {
	size := MintBaseSize
	if m.HasExtensions() {
		size = tlvStart
		if m.CloseAuthority != nil {
			size += tlvHeaderSize + 32
		}
		if m.DefaultAccountState != nil {
			size += tlvHeaderSize + 1
		}
	}

	data := make([]byte, size)
	putOptionalKey(data[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(data[36:44], m.Supply)
	data[44] = m.Decimals
	if m.IsInitialized {
		data[45] = 1
	}
	putOptionalKey(data[46:82], m.FreezeAuthority)

	if !m.HasExtensions() {
		return data
	}

	data[accountTypeOffset] = byte(AccountTypeMint)
	offset := tlvStart
	if m.CloseAuthority != nil {
		offset = putTLV(data, offset, ExtensionMintCloseAuthority, m.CloseAuthority[:])
	}
	if m.DefaultAccountState != nil {
		putTLV(data, offset, ExtensionDefaultAccountState, []byte{byte(*m.DefaultAccountState)})
	}
	return data
}

// UnmarshalMint decodes initialized mint data. Uninitialized data yields
// ErrUninitializedState; malformed data yields ErrInvalidMintData.
func UnmarshalMint(data []byte) (*Mint, error) {
	m, err := UnmarshalMintUnchecked(data)
	if err != nil {
		return nil, err
	}
	if !m.IsInitialized {
		return nil, ErrUninitializedState
	}
	return m, nil
}

// UnmarshalMintUnchecked decodes mint data without requiring initialization, so
// extensions can be configured before the mint itself is initialized.
func UnmarshalMintUnchecked(data []byte) (*Mint, error) {
	if len(data) < MintBaseSize || (len(data) > MintBaseSize && len(data) <= accountTypeOffset) {
		return nil, ErrInvalidMintData
	}

	m := &Mint{
		MintAuthority:   optionalKey(data[0:36]),
		Supply:          binary.LittleEndian.Uint64(data[36:44]),
		Decimals:        data[44],
		IsInitialized:   data[45] == 1,
		FreezeAuthority: optionalKey(data[46:82]),
	}
	if len(data) == MintBaseSize {
		return m, nil
	}

	switch AccountType(data[accountTypeOffset]) {
	case AccountTypeMint:
	case AccountTypeUninitialized:
		if m.IsInitialized {
			return nil, ErrInvalidMintData
		}
	default:
		return nil, ErrInvalidMintData
	}

	err := walkTLV(data, func(ext ExtensionType, value []byte) error {
		switch ext {
		case ExtensionMintCloseAuthority:
			if len(value) != 32 {
				return ErrInvalidMintData
			}
			key := solana.PublicKeyFromBytes(value)
			if !key.IsZero() {
				m.CloseAuthority = &key
			}
		case ExtensionDefaultAccountState:
			if len(value) != 1 {
				return ErrInvalidMintData
			}
			state := AccountState(value[0])
			m.DefaultAccountState = &state
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Size returns the encoded length of the mint, which is the account space it needs.
func (m *Mint) Size() int {
	return len(m.Marshal())
}

func putTLV(data []byte, offset int, ext ExtensionType, value []byte) int {
	binary.LittleEndian.PutUint16(data[offset:], uint16(ext))
	binary.LittleEndian.PutUint16(data[offset+2:], uint16(len(value)))
	copy(data[offset+tlvHeaderSize:], value)
	return offset + tlvHeaderSize + len(value)
}

func walkTLV(data []byte, fn func(ExtensionType, []byte) error) error {
	offset := tlvStart
	for offset+tlvHeaderSize <= len(data) {
		ext := ExtensionType(binary.LittleEndian.Uint16(data[offset:]))
		length := int(binary.LittleEndian.Uint16(data[offset+2:]))
		if ext == 0 {
			return nil
		}
		start := offset + tlvHeaderSize
		if start+length > len(data) {
			return ErrInvalidMintData
		}
		if err := fn(ext, data[start:start+length]); err != nil {
			return err
		}
		offset = start + length
	}
	return nil
}

// putOptionalKey writes a COption<Pubkey>: u32 tag then 32 bytes.
func putOptionalKey(dst []byte, key *solana.PublicKey) {
	if key == nil {
		return
	}
	binary.LittleEndian.PutUint32(dst[0:4], 1)
	copy(dst[4:36], key[:])
}

func optionalKey(src []byte) *solana.PublicKey {
	if binary.LittleEndian.Uint32(src[0:4]) != 1 {
		return nil
	}
	key := solana.PublicKeyFromBytes(src[4:36])
	return &key
}

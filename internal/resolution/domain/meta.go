// Package domain defines extra-account descriptor lists: the persisted recipe a gating
// program publishes so callers can expand the accounts its decision entry point needs.
package domain

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// MetaSize is the packed size of one ExtraAccountMeta.
const MetaSize = 35

const (
	metaDiscriminatorLiteral    uint8 = 0
	metaDiscriminatorSeeds      uint8 = 1
	metaDiscriminatorPubkeyData uint8 = 2
	metaDiscriminatorExternal   uint8 = 1 << 7
)

// MetaKind is the variant of an ExtraAccountMeta.
type MetaKind int

const (
	MetaKindLiteral MetaKind = iota
	MetaKindDerived
	MetaKindPubkeyData
)

// ExtraAccountMeta describes one additional account. Discriminator selects the variant:
// 0 is a literal address, 1 an address derived under the gating program, 2 an address
// read from data and 128+i an address derived under the program at resolved index i.
type ExtraAccountMeta struct {
	Discriminator uint8
	AddressConfig [32]byte
	IsSigner      bool
	IsWritable    bool
}

// NewLiteralMeta describes a fixed address.
func NewLiteralMeta(key solana.PublicKey, isSigner, isWritable bool) ExtraAccountMeta {
	return ExtraAccountMeta{
		Discriminator: metaDiscriminatorLiteral,
		AddressConfig: key,
		IsSigner:      isSigner,
		IsWritable:    isWritable,
	}
}

// NewSeedsMeta describes an address derived from seeds under the gating program.
func NewSeedsMeta(seeds []Seed, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	config, err := PackSeeds(seeds)
	if err != nil {
		return ExtraAccountMeta{}, err
	}
	return ExtraAccountMeta{
		Discriminator: metaDiscriminatorSeeds,
		AddressConfig: config,
		IsSigner:      isSigner,
		IsWritable:    isWritable,
	}, nil
}

// NewExternalSeedsMeta describes an address derived from seeds under the program found
// at programIndex in the resolved list.
func NewExternalSeedsMeta(programIndex uint8, seeds []Seed, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	if programIndex >= metaDiscriminatorExternal {
		return ExtraAccountMeta{}, ErrInvalidSeedConfig
	}
	meta, err := NewSeedsMeta(seeds, isSigner, isWritable)
	if err != nil {
		return ExtraAccountMeta{}, err
	}
	meta.Discriminator = metaDiscriminatorExternal + programIndex
	return meta, nil
}

// NewPubkeyDataMeta describes an address read from instruction or account data.
func NewPubkeyDataMeta(location PubkeyData, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	config, err := PackPubkeyData(location)
	if err != nil {
		return ExtraAccountMeta{}, err
	}
	return ExtraAccountMeta{
		Discriminator: metaDiscriminatorPubkeyData,
		AddressConfig: config,
		IsSigner:      isSigner,
		IsWritable:    isWritable,
	}, nil
}

// Kind returns the variant of the meta.
func (m ExtraAccountMeta) Kind() (MetaKind, error) {
	switch {
	case m.Discriminator == metaDiscriminatorLiteral:
		return MetaKindLiteral, nil
	case m.Discriminator == metaDiscriminatorSeeds, m.Discriminator >= metaDiscriminatorExternal:
		return MetaKindDerived, nil
	case m.Discriminator == metaDiscriminatorPubkeyData:
		return MetaKindPubkeyData, nil
	default:
		return 0, ErrInvalidSeedConfig
	}
}

// ProgramIndex returns the resolved index of the deriving program for external derived
// metas; ok is false when the meta derives under the gating program itself.
func (m ExtraAccountMeta) ProgramIndex() (index int, ok bool) {
	if m.Discriminator < metaDiscriminatorExternal {
		return 0, false
	}
	return int(m.Discriminator - metaDiscriminatorExternal), true
}

func (m ExtraAccountMeta) pack(dst []byte) {
	dst[0] = m.Discriminator
	copy(dst[1:33], m.AddressConfig[:])
	dst[33] = boolByte(m.IsSigner)
	dst[34] = boolByte(m.IsWritable)
}

func unpackMeta(src []byte) ExtraAccountMeta {
	m := ExtraAccountMeta{Discriminator: src[0], IsSigner: src[33] == 1, IsWritable: src[34] == 1}
	copy(m.AddressConfig[:], src[1:33])
	return m
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Discriminator identifies the instruction a descriptor list belongs to.
type Discriminator [8]byte

// HashDiscriminator returns the first 8 bytes of sha256(input).
func HashDiscriminator(input string) Discriminator {
	sum := sha256.Sum256([]byte(input))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

package domain

import (
	"crypto/sha256"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func sampleMetas(t *testing.T) []ExtraAccountMeta {
	t.Helper()
	derived, err := NewSeedsMeta([]Seed{LiteralSeed([]byte("seed")), AccountKeySeed(2)}, false, true)
	require.NoError(t, err)
	external, err := NewExternalSeedsMeta(6, []Seed{AccountKeySeed(3)}, false, false)
	require.NoError(t, err)
	fromData, err := NewPubkeyDataMeta(PubkeyData{Kind: PubkeyDataKindAccountData, Index: 1, Offset: 32}, true, false)
	require.NoError(t, err)
	return []ExtraAccountMeta{
		NewLiteralMeta(solana.SystemProgramID, false, false),
		derived,
		external,
		fromData,
	}
}

func TestExtraAccountMeta_Kind(t *testing.T) {
	metas := sampleMetas(t)

	tests := []struct {
		meta     ExtraAccountMeta
		kind     MetaKind
		index    int
		hasIndex bool
	}{
		{meta: metas[0], kind: MetaKindLiteral},
		{meta: metas[1], kind: MetaKindDerived},
		{meta: metas[2], kind: MetaKindDerived, index: 6, hasIndex: true},
		{meta: metas[3], kind: MetaKindPubkeyData},
	}
	for _, tt := range tests {
		kind, err := tt.meta.Kind()
		require.NoError(t, err)
		assert.Equal(t, tt.kind, kind)
		index, ok := tt.meta.ProgramIndex()
		assert.Equal(t, tt.hasIndex, ok)
		assert.Equal(t, tt.index, index)
	}

	assert.Equal(t, uint8(134), metas[2].Discriminator)
	_, err := ExtraAccountMeta{Discriminator: 3}.Kind()
	assert.ErrorIs(t, err, ErrInvalidSeedConfig)
	_, err = NewExternalSeedsMeta(200, nil, false, false)
	assert.ErrorIs(t, err, ErrInvalidSeedConfig)
}

func TestExtraAccountMetaList_Marshal(t *testing.T) {
	discriminator := HashDiscriminator("example:instruction")
	list := &ExtraAccountMetaList{Discriminator: discriminator, Metas: sampleMetas(t)}

	data := list.Marshal()
	require.Len(t, data, ListSize(4))
	assert.Equal(t, discriminator[:], data[0:8])
	assert.Equal(t, []byte{4 + 4*35, 0, 0, 0}, data[8:12])
	assert.Equal(t, []byte{4, 0, 0, 0}, data[12:16])
	assert.Equal(t, solana.SystemProgramID[:], data[17:49])

	decoded, err := UnmarshalList(data, discriminator)
	require.NoError(t, err)
	assert.Equal(t, list, decoded)
}

func TestUnmarshalList_Errors(t *testing.T) {
	discriminator := HashDiscriminator("example:instruction")
	data := (&ExtraAccountMetaList{Discriminator: discriminator, Metas: sampleMetas(t)}).Marshal()

	_, err := UnmarshalList(data[:10], discriminator)
	assert.ErrorIs(t, err, ledgerDomain.ErrInvalidAccountData)

	_, err = UnmarshalList(data, HashDiscriminator("other"))
	assert.ErrorIs(t, err, ErrTlvUninitialized)

	_, err = UnmarshalList(data[:len(data)-1], discriminator)
	assert.ErrorIs(t, err, ledgerDomain.ErrInvalidAccountData)

	corrupted := append([]byte(nil), data...)
	corrupted[8] = 1
	_, err = UnmarshalList(corrupted, discriminator)
	assert.ErrorIs(t, err, ledgerDomain.ErrInvalidAccountData)
}

func TestHashDiscriminator(t *testing.T) {
	input := "efficient-allow-block-list-standard:can-thaw-permissionless"
	sum := sha256.Sum256([]byte(input))
	discriminator := HashDiscriminator(input)
	assert.Equal(t, sum[:8], discriminator[:])
}

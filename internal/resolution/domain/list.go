package domain

import (
	"encoding/binary"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

const listHeaderSize = 8 + 4 + 4

// ExtraAccountMetaList is the descriptor list stored for one instruction. The stored
// form is [8-byte discriminator][u32 length][u32 count][count * 35-byte metas], where
// length counts the bytes after it.
type ExtraAccountMetaList struct {
	Discriminator Discriminator
	Metas         []ExtraAccountMeta
}

// ListSize returns the stored size of a list with n metas.
func ListSize(n int) int {
	return listHeaderSize + n*MetaSize
}

// Marshal encodes the list.
func (l *ExtraAccountMetaList) Marshal() []byte {
	data := make([]byte, ListSize(len(l.Metas)))
	copy(data[0:8], l.Discriminator[:])
	binary.LittleEndian.PutUint32(data[8:12], uint32(4+len(l.Metas)*MetaSize))
	binary.LittleEndian.PutUint32(data[12:16], uint32(len(l.Metas)))
	for i, meta := range l.Metas {
		meta.pack(data[listHeaderSize+i*MetaSize:])
	}
	return data
}

// UnmarshalList decodes a stored list and checks it belongs to the expected instruction.
func UnmarshalList(data []byte, expected Discriminator) (*ExtraAccountMetaList, error) {
	if len(data) < listHeaderSize {
		return nil, ledgerDomain.ErrInvalidAccountData
	}

	var discriminator Discriminator
	copy(discriminator[:], data[0:8])
	if discriminator != expected {
		return nil, ErrTlvUninitialized
	}

	length := binary.LittleEndian.Uint32(data[8:12])
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if uint64(length) != 4+uint64(count)*MetaSize || count*MetaSize > len(data)-listHeaderSize {
		return nil, ledgerDomain.ErrInvalidAccountData
	}

	list := &ExtraAccountMetaList{Discriminator: discriminator, Metas: make([]ExtraAccountMeta, count)}
	for i := range list.Metas {
		offset := listHeaderSize + i*MetaSize
		list.Metas[i] = unpackMeta(data[offset : offset+MetaSize])
	}
	return list, nil
}

package domain

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// AccountState is the state of a token account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// String implements fmt.Stringer.
func (s AccountState) String() string {
	switch s {
	case AccountStateUninitialized:
		return "uninitialized"
	case AccountStateInitialized:
		return "initialized"
	case AccountStateFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Account is a token balance record for one holder of a mint.
type Account struct {
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Amount   uint64
	Delegate *solana.PublicKey
	State    AccountState
}

// IsFrozen reports whether the account is frozen.
func (a *Account) IsFrozen() bool {
	return a.State == AccountStateFrozen
}

// Marshal encodes the account in the base 165-byte layout.
func (a *Account) Marshal() []byte {
	data := make([]byte, AccountBaseSize)
	copy(data[0:32], a.Mint[:])
	copy(data[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(data[64:72], a.Amount)
	putOptionalKey(data[72:108], a.Delegate)
	data[108] = byte(a.State)
	return data
}

// UnmarshalAccount decodes token account data.
func UnmarshalAccount(data []byte) (*Account, error) {
	if len(data) < AccountBaseSize {
		return nil, ErrInvalidAccountData
	}
	if len(data) > AccountBaseSize && AccountType(data[accountTypeOffset]) != AccountTypeAccount {
		return nil, ErrInvalidAccountData
	}

	a := &Account{
		Mint:     solana.PublicKeyFromBytes(data[0:32]),
		Owner:    solana.PublicKeyFromBytes(data[32:64]),
		Amount:   binary.LittleEndian.Uint64(data[64:72]),
		Delegate: optionalKey(data[72:108]),
		State:    AccountState(data[108]),
	}
	if a.State == AccountStateUninitialized {
		return nil, ErrUninitializedState
	}
	if a.State > AccountStateFrozen {
		return nil, ErrInvalidAccountData
	}
	return a, nil
}

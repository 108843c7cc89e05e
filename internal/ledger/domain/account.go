// Package domain defines the host ledger models: accounts, instructions, transactions
// and the program error taxonomy shared by every program running on the ledger.
package domain

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// accountStorageOverhead is the per-account byte overhead charged by the rent schedule.
	accountStorageOverhead = 128
	// lamportsPerByteYear is the rent rate per byte per year.
	lamportsPerByteYear = 3480
	// exemptionThresholdYears is how many years of rent make an account rent-exempt.
	exemptionThresholdYears = 2
)

// Account is a single ledger entry. An address without a stored account is unowned and
// empty; it behaves as a system-owned account holding zero lamports.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{
		Address:  a.Address,
		Owner:    a.Owner,
		Lamports: a.Lamports,
		Data:     data,
	}
}

// IsSystemOwned reports whether the account is owned by the system program.
func (a *Account) IsSystemOwned() bool {
	return a.Owner.Equals(solana.SystemProgramID)
}

// IsEmpty reports whether the account holds neither lamports nor data.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// MinimumBalance returns the rent-exempt deposit for an account holding dataLen bytes.
func MinimumBalance(dataLen int) uint64 {
	return uint64(accountStorageOverhead+dataLen) * lamportsPerByteYear * exemptionThresholdYears
}

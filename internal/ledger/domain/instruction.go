package domain

import (
	"github.com/gagliardetto/solana-go"
)

// AccountMeta names an account an instruction touches and how.
type AccountMeta struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta builds an AccountMeta.
func NewAccountMeta(key solana.PublicKey, isWritable, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: key, IsSigner: isSigner, IsWritable: isWritable}
}

// Instruction is a single program invocation inside a transaction.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// SignerSet holds the identities an instruction may act for: verified transaction
// signers plus any derived addresses a program proved ownership of.
type SignerSet map[solana.PublicKey]struct{}

// NewSignerSet creates a SignerSet from keys.
func NewSignerSet(keys ...solana.PublicKey) SignerSet {
	s := make(SignerSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key signed.
func (s SignerSet) Has(key solana.PublicKey) bool {
	_, ok := s[key]
	return ok
}

// With returns a copy of the set extended with keys. The receiver is left untouched.
func (s SignerSet) With(keys ...solana.PublicKey) SignerSet {
	out := make(SignerSet, len(s)+len(keys))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

// InstructionContext is what a program receives when the runtime dispatches an instruction.
type InstructionContext struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
	Signers   SignerSet
}

// Account returns the i-th account meta or ErrNotEnoughAccountKeys.
func (c *InstructionContext) Account(i int) (AccountMeta, error) {
	if i < 0 || i >= len(c.Accounts) {
		return AccountMeta{}, ErrNotEnoughAccountKeys
	}
	return c.Accounts[i], nil
}

// Keys returns the first n account keys or ErrNotEnoughAccountKeys.
func (c *InstructionContext) Keys(n int) ([]solana.PublicKey, error) {
	if len(c.Accounts) < n {
		return nil, ErrNotEnoughAccountKeys
	}
	keys := make([]solana.PublicKey, n)
	for i := 0; i < n; i++ {
		keys[i] = c.Accounts[i].PublicKey
	}
	return keys, nil
}

// Remaining returns the account metas after the first n.
func (c *InstructionContext) Remaining(n int) []AccountMeta {
	if n >= len(c.Accounts) {
		return nil
	}
	return c.Accounts[n:]
}

// IsSigner reports whether key both signed the transaction and is marked as a signer.
func (c *InstructionContext) IsSigner(key solana.PublicKey) bool {
	return c.Signers.Has(key)
}

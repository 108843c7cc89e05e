// Package domain defines the calling convention between the engine and gating programs.
package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	resolutionDomain "github.com/allisson/tokenacl/internal/resolution/domain"
)

// Operation is the direction of a permissionless request.
type Operation string

const (
	OperationThaw   Operation = "thaw"
	OperationFreeze Operation = "freeze"
)

var (
	// ThawDiscriminator identifies the can-thaw-permissionless entry point.
	ThawDiscriminator = resolutionDomain.HashDiscriminator("efficient-allow-block-list-standard:can-thaw-permissionless")
	// FreezeDiscriminator identifies the can-freeze-permissionless entry point.
	FreezeDiscriminator = resolutionDomain.HashDiscriminator("efficient-allow-block-list-standard:can-freeze-permissionless")
)

// Discriminator returns the decision entry point for the operation.
func (o Operation) Discriminator() resolutionDomain.Discriminator {
	if o == OperationFreeze {
		return FreezeDiscriminator
	}
	return ThawDiscriminator
}

// ExtraMetasSeed returns the seed prefix of the operation's descriptor list account.
func (o Operation) ExtraMetasSeed() []byte {
	if o == OperationFreeze {
		return []byte("freeze_extra_account_metas")
	}
	return []byte("thaw_extra_account_metas")
}

// FindExtraMetasAddress derives the descriptor list account a gating program keeps for
// mint and operation.
func FindExtraMetasAddress(op Operation, mint, gate solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{op.ExtraMetasSeed(), mint[:]}, gate)
}

// Positions of the fixed accounts of a decision call.
const (
	AccountAuthority = iota
	AccountTokenAccount
	AccountMint
	AccountTokenAccountOwner
	AccountFlag
	fixedAccounts
)

// NewDecisionInstruction builds the fixed part of a decision call. The descriptor list
// account and the resolved extras are appended after these five accounts.
func NewDecisionInstruction(
	op Operation,
	gate, authority, tokenAccount, mint, owner, flag solana.PublicKey,
) ledgerDomain.Instruction {
	discriminator := op.Discriminator()
	return ledgerDomain.Instruction{
		ProgramID: gate,
		Accounts: []ledgerDomain.AccountMeta{
			ledgerDomain.NewAccountMeta(authority, false, false),
			ledgerDomain.NewAccountMeta(tokenAccount, false, false),
			ledgerDomain.NewAccountMeta(mint, false, false),
			ledgerDomain.NewAccountMeta(owner, false, false),
			ledgerDomain.NewAccountMeta(flag, false, false),
		},
		Data: discriminator[:],
	}
}

// AccountView is the state of one account as a gating program sees it.
type AccountView struct {
	ledgerDomain.AccountMeta
	Exists bool
	Owner  solana.PublicKey
	Data   []byte
}

// DecisionRequest is a decision call. Accounts follow the order of
// NewDecisionInstruction, then the descriptor list account and the resolved extras when
// the gating program publishes one.
type DecisionRequest struct {
	Operation Operation
	ProgramID solana.PublicKey
	Accounts  []AccountView
	Data      []byte
}

// Account returns the account at position i.
func (r *DecisionRequest) Account(i int) (AccountView, error) {
	if i < 0 || i >= len(r.Accounts) {
		return AccountView{}, ledgerDomain.ErrNotEnoughAccountKeys
	}
	return r.Accounts[i], nil
}

// Extra returns the accounts after the fixed five.
func (r *DecisionRequest) Extra() []AccountView {
	if len(r.Accounts) <= fixedAccounts {
		return nil
	}
	return r.Accounts[fixedAccounts:]
}

// DecisionProgram is a pluggable policy deciding permissionless freeze and thaw
// requests. Decide returns nil to approve. A denial is any error; programs deny with a
// *ledgerDomain.ProgramError whose code is surfaced to the submitter unchanged.
type DecisionProgram interface {
	ProgramID() solana.PublicKey
	Decide(ctx context.Context, req *DecisionRequest) error
}

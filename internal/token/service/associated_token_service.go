package service

import (
	"context"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// Associated token program instruction selectors.
const (
	AssociatedInstructionCreate           uint8 = 0
	AssociatedInstructionCreateIdempotent uint8 = 1
)

// AssociatedTokenService is the associated token account program: it derives the
// canonical token account of an owner for a mint and creates it.
type AssociatedTokenService struct {
	tokens *TokenService
}

// NewAssociatedTokenService creates a new AssociatedTokenService on top of tokens.
func NewAssociatedTokenService(tokens *TokenService) *AssociatedTokenService {
	return &AssociatedTokenService{tokens: tokens}
}

// ProgramID returns the associated token program identity.
func (s *AssociatedTokenService) ProgramID() solana.PublicKey {
	return tokenDomain.AssociatedTokenProgramID
}

// Process executes Create or CreateIdempotent. Accounts:
// [payer(s,w), associated account(w), owner, mint, system program, token program].
func (s *AssociatedTokenService) Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error {
	idempotent := false
	switch {
	case len(ix.Data) == 0, len(ix.Data) == 1 && ix.Data[0] == AssociatedInstructionCreate:
	case len(ix.Data) == 1 && ix.Data[0] == AssociatedInstructionCreateIdempotent:
		idempotent = true
	default:
		return ledgerDomain.ErrInvalidInstructionData
	}

	keys, err := ix.Keys(6)
	if err != nil {
		return err
	}
	payer, address, owner, mint := keys[0], keys[1], keys[2], keys[3]
	if !keys[4].Equals(solana.SystemProgramID) || !keys[5].Equals(tokenDomain.ProgramID) {
		return ledgerDomain.ErrIncorrectProgramID
	}

	expected, _, err := tokenDomain.FindAssociatedTokenAddress(owner, mint)
	if err != nil || !expected.Equals(address) {
		return ledgerDomain.ErrInvalidSeeds
	}

	_, err = s.tokens.CreateAssociatedAccount(ctx, payer, owner, mint, idempotent, ix.Signers)
	return err
}

// NewCreateAssociatedAccountInstruction builds the instruction creating the associated
// token account of owner for mint, paid by payer.
func NewCreateAssociatedAccountInstruction(payer, owner, mint solana.PublicKey, idempotent bool) ledgerDomain.Instruction {
	address, _, _ := tokenDomain.FindAssociatedTokenAddress(owner, mint)
	selector := AssociatedInstructionCreate
	if idempotent {
		selector = AssociatedInstructionCreateIdempotent
	}
	return ledgerDomain.Instruction{
		ProgramID: tokenDomain.AssociatedTokenProgramID,
		Accounts: []ledgerDomain.AccountMeta{
			ledgerDomain.NewAccountMeta(payer, true, true),
			ledgerDomain.NewAccountMeta(address, true, false),
			ledgerDomain.NewAccountMeta(owner, false, false),
			ledgerDomain.NewAccountMeta(mint, false, false),
			ledgerDomain.NewAccountMeta(solana.SystemProgramID, false, false),
			ledgerDomain.NewAccountMeta(tokenDomain.ProgramID, false, false),
		},
		Data: []byte{selector},
	}
}

package domain

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the token program these layouts belong to.
	ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// AssociatedTokenProgramID derives associated token account addresses.
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
)

// FindAssociatedTokenAddress derives the canonical token account of owner for mint.
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{owner[:], ProgramID[:], mint[:]},
		AssociatedTokenProgramID,
	)
}

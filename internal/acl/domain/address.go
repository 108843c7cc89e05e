package domain

import (
	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// DefaultProgramID is the engine's default program identity.
var DefaultProgramID = solana.MustPublicKeyFromBase58("TACLkU6CiCdkQN2MjoyDkVg2yAH9zkxiHDsiztQ52TP")

// Derivation seed prefixes.
var (
	MintConfigSeed = []byte("MINT_CFG")
	GuardSeed      = []byte("FLAG_ACCOUNT")
)

// FindMintConfigAddress derives the config record address of mint.
func FindMintConfigAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{MintConfigSeed, mint[:]}, programID)
}

// FindGuardAddress derives the guard record address of a token account.
func FindGuardAddress(programID, tokenAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{GuardSeed, tokenAccount[:]}, programID)
}

// DerivedSigner is the capability to act for one engine-derived address. It can only
// be obtained by re-deriving the address, so holding one proves the engine owns it.
type DerivedSigner struct {
	address solana.PublicKey
}

// Address returns the derived address.
func (s DerivedSigner) Address() solana.PublicKey {
	return s.address
}

// Authorize returns signers extended with the derived address.
func (s DerivedSigner) Authorize(signers ledgerDomain.SignerSet) ledgerDomain.SignerSet {
	return signers.With(s.address)
}

// NewConfigSigner verifies that the (mint, bump) pair stored in config derives address
// and returns the signing capability of that config record.
func NewConfigSigner(programID, address solana.PublicKey, config *MintConfig) (DerivedSigner, error) {
	derived, err := solana.CreateProgramAddress(
		[][]byte{MintConfigSeed, config.Mint[:], {config.Bump}},
		programID,
	)
	if err != nil || !derived.Equals(address) {
		return DerivedSigner{}, ledgerDomain.ErrInvalidSeeds
	}
	return DerivedSigner{address: derived}, nil
}

// NewGuardSigner returns the signing capability of tokenAccount's guard record.
func NewGuardSigner(programID, tokenAccount solana.PublicKey) (DerivedSigner, error) {
	address, _, err := FindGuardAddress(programID, tokenAccount)
	if err != nil {
		return DerivedSigner{}, ledgerDomain.ErrInvalidSeeds
	}
	return DerivedSigner{address: address}, nil
}

// Package service implements the token program: mint and token account lifecycle and
// freeze state transitions, plus the associated token account program.
package service

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// AccountRepository is the ledger storage the token program reads and writes.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Update(ctx context.Context, account *ledgerDomain.Account) error
}

// SystemProgram allocates and releases addresses on behalf of the token programs.
type SystemProgram interface {
	CreateAccount(
		ctx context.Context,
		payer, address solana.PublicKey,
		space int,
		owner solana.PublicKey,
		signers ledgerDomain.SignerSet,
	) error
	Close(ctx context.Context, address, receiver solana.PublicKey) error
}

// TokenService owns every account assigned to the token program.
type TokenService struct {
	accounts AccountRepository
	system   SystemProgram
	logger   *slog.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(accounts AccountRepository, system SystemProgram, logger *slog.Logger) *TokenService {
	return &TokenService{accounts: accounts, system: system, logger: logger}
}

// ProgramID returns the token program identity.
func (s *TokenService) ProgramID() solana.PublicKey {
	return tokenDomain.ProgramID
}

// load returns the ledger account at address if the token program owns it. Unowned
// addresses belong to the system program, so they fail the same owner check.
func (s *TokenService) load(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error) {
	account, err := s.accounts.Get(ctx, address)
	if err != nil {
		if apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
			return nil, ledgerDomain.ErrIncorrectProgramID
		}
		return nil, err
	}
	if !account.Owner.Equals(tokenDomain.ProgramID) {
		return nil, ledgerDomain.ErrIncorrectProgramID
	}
	return account, nil
}

// overwrite replaces the data prefix with encoded, keeping the allocated length.
func (s *TokenService) overwrite(ctx context.Context, holder *ledgerDomain.Account, encoded []byte) error {
	if len(encoded) > len(holder.Data) {
		return ledgerDomain.ErrInvalidAccountData
	}
	data := make([]byte, len(holder.Data))
	copy(data, encoded)
	holder.Data = data
	return s.accounts.Update(ctx, holder)
}

// GetMint returns the mint at address.
func (s *TokenService) GetMint(ctx context.Context, address solana.PublicKey) (*tokenDomain.Mint, error) {
	holder, err := s.load(ctx, address)
	if err != nil {
		return nil, err
	}
	return tokenDomain.UnmarshalMint(holder.Data)
}

// GetAccount returns the token account at address.
func (s *TokenService) GetAccount(ctx context.Context, address solana.PublicKey) (*tokenDomain.Account, error) {
	holder, err := s.load(ctx, address)
	if err != nil {
		return nil, err
	}
	return tokenDomain.UnmarshalAccount(holder.Data)
}

func validateOwner(expected, authority solana.PublicKey, signers ledgerDomain.SignerSet) error {
	if !expected.Equals(authority) {
		return tokenDomain.ErrOwnerMismatch
	}
	if !signers.Has(authority) {
		return ledgerDomain.ErrMissingRequiredSignature
	}
	return nil
}

func (s *TokenService) loadUninitializedMint(
	ctx context.Context,
	address solana.PublicKey,
) (*ledgerDomain.Account, *tokenDomain.Mint, error) {
	holder, err := s.load(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	mint, err := tokenDomain.UnmarshalMintUnchecked(holder.Data)
	if err != nil {
		return nil, nil, err
	}
	if mint.IsInitialized {
		return nil, nil, tokenDomain.ErrAlreadyInUse
	}
	return holder, mint, nil
}

// InitializeMintCloseAuthority configures the close authority extension on a mint that
// is not initialized yet.
func (s *TokenService) InitializeMintCloseAuthority(
	ctx context.Context,
	address solana.PublicKey,
	closeAuthority *solana.PublicKey,
) error {
	holder, mint, err := s.loadUninitializedMint(ctx, address)
	if err != nil {
		return err
	}
	if len(holder.Data) <= tokenDomain.MintBaseSize {
		return ledgerDomain.ErrInvalidAccountData
	}
	mint.CloseAuthority = closeAuthority
	return s.overwrite(ctx, holder, mint.Marshal())
}

// InitializeDefaultAccountState configures the state new token accounts of the mint
// start in.
func (s *TokenService) InitializeDefaultAccountState(
	ctx context.Context,
	address solana.PublicKey,
	state tokenDomain.AccountState,
) error {
	if state == tokenDomain.AccountStateUninitialized || state > tokenDomain.AccountStateFrozen {
		return ledgerDomain.ErrInvalidInstructionData
	}
	holder, mint, err := s.loadUninitializedMint(ctx, address)
	if err != nil {
		return err
	}
	if len(holder.Data) <= tokenDomain.MintBaseSize {
		return ledgerDomain.ErrInvalidAccountData
	}
	mint.DefaultAccountState = &state
	return s.overwrite(ctx, holder, mint.Marshal())
}

// InitializeMint initializes a mint whose account was allocated with exactly the space
// its configured extensions need.
func (s *TokenService) InitializeMint(
	ctx context.Context,
	address solana.PublicKey,
	decimals uint8,
	mintAuthority solana.PublicKey,
	freezeAuthority *solana.PublicKey,
) error {
	holder, mint, err := s.loadUninitializedMint(ctx, address)
	if err != nil {
		return err
	}

	mint.Decimals = decimals
	mint.MintAuthority = &mintAuthority
	mint.FreezeAuthority = freezeAuthority
	mint.IsInitialized = true

	encoded := mint.Marshal()
	if len(encoded) != len(holder.Data) {
		return ledgerDomain.ErrInvalidAccountData
	}
	if holder.Lamports < ledgerDomain.MinimumBalance(len(holder.Data)) {
		return tokenDomain.ErrNotRentExempt
	}
	if err := s.overwrite(ctx, holder, encoded); err != nil {
		return err
	}

	s.logger.Debug("mint initialized", slog.String("mint", address.String()))
	return nil
}

// InitializeAccount initializes a token account for mint held by owner. The account
// starts in the mint's default account state.
func (s *TokenService) InitializeAccount(ctx context.Context, address, mintAddress, owner solana.PublicKey) error {
	holder, err := s.load(ctx, address)
	if err != nil {
		return err
	}
	if len(holder.Data) != tokenDomain.AccountBaseSize {
		return ledgerDomain.ErrInvalidAccountData
	}
	if tokenDomain.AccountState(holder.Data[108]) != tokenDomain.AccountStateUninitialized {
		return tokenDomain.ErrAlreadyInUse
	}

	mint, err := s.GetMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if holder.Lamports < ledgerDomain.MinimumBalance(len(holder.Data)) {
		return tokenDomain.ErrNotRentExempt
	}

	state := tokenDomain.AccountStateInitialized
	if mint.DefaultAccountState != nil && *mint.DefaultAccountState != tokenDomain.AccountStateUninitialized {
		state = *mint.DefaultAccountState
	}
	account := &tokenDomain.Account{Mint: mintAddress, Owner: owner, State: state}
	return s.overwrite(ctx, holder, account.Marshal())
}

// CreateAssociatedAccount allocates and initializes the associated token account of
// owner for mint and returns its address. With idempotent set, an existing associated
// account for the same owner and mint is accepted as is.
func (s *TokenService) CreateAssociatedAccount(
	ctx context.Context,
	payer, owner, mintAddress solana.PublicKey,
	idempotent bool,
	signers ledgerDomain.SignerSet,
) (solana.PublicKey, error) {
	address, _, err := tokenDomain.FindAssociatedTokenAddress(owner, mintAddress)
	if err != nil {
		return solana.PublicKey{}, ledgerDomain.ErrInvalidSeeds
	}

	if idempotent {
		existing, err := s.accounts.Get(ctx, address)
		switch {
		case err == nil && existing.Owner.Equals(tokenDomain.ProgramID):
			account, err := tokenDomain.UnmarshalAccount(existing.Data)
			if err != nil {
				return solana.PublicKey{}, err
			}
			if !account.Owner.Equals(owner) {
				return solana.PublicKey{}, tokenDomain.ErrOwnerMismatch
			}
			if !account.Mint.Equals(mintAddress) {
				return solana.PublicKey{}, tokenDomain.ErrMintMismatch
			}
			return address, nil
		case err != nil && !apperrors.Is(err, ledgerDomain.ErrAccountNotFound):
			return solana.PublicKey{}, err
		}
	}

	// The associated token program signs for the address it derived.
	err = s.system.CreateAccount(ctx, payer, address, tokenDomain.AccountBaseSize, tokenDomain.ProgramID, signers.With(address))
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := s.InitializeAccount(ctx, address, mintAddress, owner); err != nil {
		return solana.PublicKey{}, err
	}

	s.logger.Debug("associated token account created",
		slog.String("address", address.String()),
		slog.String("owner", owner.String()),
		slog.String("mint", mintAddress.String()),
	)
	return address, nil
}

// SetFreezeAuthority replaces the freeze authority of a mint. A nil newAuthority removes
// it permanently.
func (s *TokenService) SetFreezeAuthority(
	ctx context.Context,
	mintAddress, authority solana.PublicKey,
	newAuthority *solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	holder, err := s.load(ctx, mintAddress)
	if err != nil {
		return err
	}
	mint, err := tokenDomain.UnmarshalMint(holder.Data)
	if err != nil {
		return err
	}
	if mint.FreezeAuthority == nil {
		return tokenDomain.ErrMintCannotFreeze
	}
	if err := validateOwner(*mint.FreezeAuthority, authority, signers); err != nil {
		return err
	}

	mint.FreezeAuthority = newAuthority
	return s.overwrite(ctx, holder, mint.Marshal())
}

// FreezeAccount freezes a token account. authority must be the mint's freeze authority.
func (s *TokenService) FreezeAccount(
	ctx context.Context,
	address, mintAddress, authority solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	return s.toggleFreeze(ctx, address, mintAddress, authority, signers, true)
}

// ThawAccount thaws a frozen token account. authority must be the mint's freeze authority.
func (s *TokenService) ThawAccount(
	ctx context.Context,
	address, mintAddress, authority solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	return s.toggleFreeze(ctx, address, mintAddress, authority, signers, false)
}

func (s *TokenService) toggleFreeze(
	ctx context.Context,
	address, mintAddress, authority solana.PublicKey,
	signers ledgerDomain.SignerSet,
	freeze bool,
) error {
	holder, err := s.load(ctx, address)
	if err != nil {
		return err
	}
	account, err := tokenDomain.UnmarshalAccount(holder.Data)
	if err != nil {
		return err
	}
	if freeze == account.IsFrozen() {
		return tokenDomain.ErrInvalidState
	}
	if !account.Mint.Equals(mintAddress) {
		return tokenDomain.ErrMintMismatch
	}

	mint, err := s.GetMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if mint.FreezeAuthority == nil {
		return tokenDomain.ErrMintCannotFreeze
	}
	if err := validateOwner(*mint.FreezeAuthority, authority, signers); err != nil {
		return err
	}

	account.State = tokenDomain.AccountStateInitialized
	if freeze {
		account.State = tokenDomain.AccountStateFrozen
	}
	return s.overwrite(ctx, holder, account.Marshal())
}

// CloseAccount closes a mint (through its close authority, once supply is zero) or an
// empty token account (through its owner) and moves its deposit to destination.
func (s *TokenService) CloseAccount(
	ctx context.Context,
	address, destination, authority solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	if address.Equals(destination) {
		return ledgerDomain.ErrInvalidAccountData
	}
	holder, err := s.load(ctx, address)
	if err != nil {
		return err
	}

	if mint, mintErr := tokenDomain.UnmarshalMint(holder.Data); mintErr == nil {
		if mint.CloseAuthority == nil {
			return ledgerDomain.ErrInvalidAccountData
		}
		if err := validateOwner(*mint.CloseAuthority, authority, signers); err != nil {
			return err
		}
		if mint.Supply != 0 {
			return tokenDomain.ErrNonNativeHasBalance
		}
	} else {
		account, err := tokenDomain.UnmarshalAccount(holder.Data)
		if err != nil {
			return err
		}
		if account.IsFrozen() {
			return tokenDomain.ErrAccountFrozen
		}
		if account.Amount != 0 {
			return tokenDomain.ErrNonNativeHasBalance
		}
		if err := validateOwner(account.Owner, authority, signers); err != nil {
			return err
		}
	}

	if err := s.system.Close(ctx, address, destination); err != nil {
		return err
	}
	s.logger.Debug("token program account closed", slog.String("address", address.String()))
	return nil
}

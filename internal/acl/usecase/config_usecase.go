package usecase

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// configStore reads and writes config records owned by the engine.
type configStore struct {
	programID solana.PublicKey
	accounts  AccountRepository
}

// load returns the record at address. Missing, foreign or malformed records yield
// ErrInvalidMintConfig.
func (s *configStore) load(
	ctx context.Context,
	address solana.PublicKey,
) (*ledgerDomain.Account, *aclDomain.MintConfig, error) {
	account, err := s.accounts.Get(ctx, address)
	if err != nil {
		if apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
			return nil, nil, aclDomain.ErrInvalidMintConfig
		}
		return nil, nil, err
	}
	if !account.Owner.Equals(s.programID) {
		return nil, nil, aclDomain.ErrInvalidMintConfig
	}
	config, err := aclDomain.UnmarshalMintConfig(account.Data)
	if err != nil {
		return nil, nil, err
	}
	return account, config, nil
}

func (s *configStore) save(ctx context.Context, account *ledgerDomain.Account, config *aclDomain.MintConfig) error {
	account.Data = config.Marshal()
	return s.accounts.Update(ctx, account)
}

// authorize loads the record and checks that authority signed and matches it.
func (s *configStore) authorize(
	ctx context.Context,
	authority, address solana.PublicKey,
	signers ledgerDomain.SignerSet,
) (*ledgerDomain.Account, *aclDomain.MintConfig, error) {
	if !signers.Has(authority) {
		return nil, nil, aclDomain.ErrInvalidAuthority
	}
	account, config, err := s.load(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	if !config.Authority.Equals(authority) {
		return nil, nil, aclDomain.ErrInvalidAuthority
	}
	return account, config, nil
}

// configUseCase implements ConfigUseCase.
type configUseCase struct {
	txManager database.TxManager
	store     *configStore
	system    SystemProgram
	tokens    TokenProgram
	logger    *slog.Logger
}

// NewConfigUseCase creates a ConfigUseCase for the engine deployed at programID.
func NewConfigUseCase(
	programID solana.PublicKey,
	txManager database.TxManager,
	accounts AccountRepository,
	system SystemProgram,
	tokens TokenProgram,
	logger *slog.Logger,
) ConfigUseCase {
	return &configUseCase{
		txManager: txManager,
		store:     &configStore{programID: programID, accounts: accounts},
		system:    system,
		tokens:    tokens,
		logger:    logger,
	}
}

// Create implements ConfigUseCase.
func (c *configUseCase) Create(ctx context.Context, in CreateConfigInput) (*aclDomain.MintConfig, error) {
	programID := c.store.programID
	var config *aclDomain.MintConfig

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !in.Signers.Has(in.Authority) {
			return aclDomain.ErrInvalidAuthority
		}
		expected, bump, err := aclDomain.FindMintConfigAddress(programID, in.Mint)
		if err != nil || !expected.Equals(in.MintConfig) {
			return aclDomain.ErrInvalidMintConfig
		}
		if !in.SystemProgram.Equals(solana.SystemProgramID) {
			return aclDomain.ErrInvalidSystemProgram
		}
		if !in.TokenProgram.Equals(c.tokens.ProgramID()) {
			return aclDomain.ErrInvalidTokenProgram
		}

		mint, err := c.tokens.GetMint(ctx, in.Mint)
		if err != nil {
			if apperrors.Is(err, ledgerDomain.ErrIncorrectProgramID) {
				return aclDomain.ErrInvalidTokenProgram
			}
			if _, ok := ledgerDomain.AsProgramError(err); ok {
				return aclDomain.ErrInvalidTokenMint
			}
			return err
		}
		if mint.DefaultAccountState == nil || mint.FreezeAuthority == nil {
			return aclDomain.ErrInvalidTokenMint
		}
		if !mint.FreezeAuthority.Equals(in.Authority) {
			return aclDomain.ErrInvalidAuthority
		}

		config = &aclDomain.MintConfig{
			Mint:          in.Mint,
			Authority:     in.Authority,
			GatingProgram: in.GatingProgram,
			Bump:          bump,
		}
		signer, err := aclDomain.NewConfigSigner(programID, in.MintConfig, config)
		if err != nil {
			return err
		}
		err = c.system.CreateAccount(
			ctx, in.Payer, in.MintConfig, aclDomain.MintConfigSize, programID, signer.Authorize(in.Signers),
		)
		if err != nil {
			return err
		}

		account, err := c.store.accounts.Get(ctx, in.MintConfig)
		if err != nil {
			return err
		}
		if err := c.store.save(ctx, account, config); err != nil {
			return err
		}

		custodian := in.MintConfig
		return c.tokens.SetFreezeAuthority(ctx, in.Mint, in.Authority, &custodian, in.Signers)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("mint config created",
		slog.String("mint", in.Mint.String()),
		slog.String("authority", in.Authority.String()),
		slog.String("gating_program", in.GatingProgram.String()),
	)
	return config, nil
}

// Delete implements ConfigUseCase.
func (c *configUseCase) Delete(ctx context.Context, in DeleteConfigInput) (*aclDomain.DeleteConfigResult, error) {
	result := &aclDomain.DeleteConfigResult{}

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !in.Signers.Has(in.Authority) {
			return aclDomain.ErrInvalidAuthority
		}
		if !in.TokenProgram.Equals(c.tokens.ProgramID()) {
			return aclDomain.ErrInvalidTokenProgram
		}
		_, config, err := c.store.authorize(ctx, in.Authority, in.MintConfig, in.Signers)
		if err != nil {
			return err
		}
		if !config.Mint.Equals(in.Mint) {
			return aclDomain.ErrInvalidTokenMint
		}

		mint, err := c.tokens.GetMint(ctx, in.Mint)
		switch {
		case err == nil && mint.FreezeAuthority != nil && mint.FreezeAuthority.Equals(in.MintConfig):
			signer, err := aclDomain.NewConfigSigner(c.store.programID, in.MintConfig, config)
			if err != nil {
				return err
			}
			newAuthority := in.NewFreezeAuthority
			err = c.tokens.SetFreezeAuthority(ctx, in.Mint, in.MintConfig, &newAuthority, signer.Authorize(in.Signers))
			if err != nil {
				return err
			}
			result.AuthorityRestored = true
		case err == nil:
			result.RestoreSkipReason = aclDomain.RestoreSkipAuthorityChanged
		case apperrors.Is(err, ledgerDomain.ErrIncorrectProgramID):
			result.RestoreSkipReason = aclDomain.RestoreSkipMintClosed
		default:
			if _, ok := ledgerDomain.AsProgramError(err); !ok {
				return err
			}
			result.RestoreSkipReason = aclDomain.RestoreSkipMintInvalid
		}

		return c.system.Close(ctx, in.MintConfig, in.Receiver)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("mint config deleted",
		slog.String("mint", in.Mint.String()),
		slog.Bool("authority_restored", result.AuthorityRestored),
		slog.String("restore_skip_reason", string(result.RestoreSkipReason)),
	)
	return result, nil
}

func (c *configUseCase) update(
	ctx context.Context,
	in UpdateConfigInput,
	mutate func(config *aclDomain.MintConfig),
) (*aclDomain.MintConfig, error) {
	var config *aclDomain.MintConfig
	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		account, loaded, err := c.store.authorize(ctx, in.Authority, in.MintConfig, in.Signers)
		if err != nil {
			return err
		}
		mutate(loaded)
		config = loaded
		return c.store.save(ctx, account, loaded)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// SetAuthority implements ConfigUseCase.
func (c *configUseCase) SetAuthority(
	ctx context.Context,
	in UpdateConfigInput,
	newAuthority solana.PublicKey,
) (*aclDomain.MintConfig, error) {
	config, err := c.update(ctx, in, func(config *aclDomain.MintConfig) {
		config.Authority = newAuthority
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("mint config authority changed",
		slog.String("mint", config.Mint.String()),
		slog.String("authority", newAuthority.String()),
	)
	return config, nil
}

// SetGatingProgram implements ConfigUseCase.
func (c *configUseCase) SetGatingProgram(
	ctx context.Context,
	in UpdateConfigInput,
	gatingProgram solana.PublicKey,
) (*aclDomain.MintConfig, error) {
	config, err := c.update(ctx, in, func(config *aclDomain.MintConfig) {
		config.GatingProgram = gatingProgram
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("mint config gating program changed",
		slog.String("mint", config.Mint.String()),
		slog.String("gating_program", gatingProgram.String()),
	)
	return config, nil
}

// TogglePermissionlessInstructions implements ConfigUseCase.
func (c *configUseCase) TogglePermissionlessInstructions(
	ctx context.Context,
	in UpdateConfigInput,
	enableFreeze, enableThaw bool,
) (*aclDomain.MintConfig, error) {
	config, err := c.update(ctx, in, func(config *aclDomain.MintConfig) {
		config.EnablePermissionlessFreeze = enableFreeze
		config.EnablePermissionlessThaw = enableThaw
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("mint config permissionless instructions toggled",
		slog.String("mint", config.Mint.String()),
		slog.Bool("freeze", enableFreeze),
		slog.Bool("thaw", enableThaw),
	)
	return config, nil
}

// Get implements ConfigUseCase.
func (c *configUseCase) Get(ctx context.Context, mint solana.PublicKey) (*aclDomain.MintConfig, error) {
	address, _, err := aclDomain.FindMintConfigAddress(c.store.programID, mint)
	if err != nil {
		return nil, aclDomain.ErrMintConfigNotFound
	}
	if _, err := c.store.accounts.Get(ctx, address); apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
		return nil, aclDomain.ErrMintConfigNotFound
	}
	_, config, err := c.store.load(ctx, address)
	return config, err
}

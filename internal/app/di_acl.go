package app

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/acl/client"
	aclService "github.com/allisson/tokenacl/internal/acl/service"
	aclUseCase "github.com/allisson/tokenacl/internal/acl/usecase"
	"github.com/allisson/tokenacl/internal/config"
	gateService "github.com/allisson/tokenacl/internal/gate/service"
)

// ProgramID returns the engine identity parsed from PROGRAM_ID.
func (c *Container) ProgramID() (solana.PublicKey, error) {
	err := c.lazy(&c.programIDInit, "programID", func() (err error) {
		c.programID, err = solana.PublicKeyFromBase58(c.config.ProgramID)
		if err != nil {
			return fmt.Errorf("invalid program id %q: %w", c.config.ProgramID, err)
		}
		return nil
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return c.programID, nil
}

// Locker returns the guard locker: advisory locks on PostgreSQL, named locks on
// MySQL and an in-process lease table for the memory driver.
func (c *Container) Locker() (aclService.Locker, error) {
	err := c.lazy(&c.lockerInit, "locker", func() error {
		if c.config.DBDriver == config.DBDriverMemory {
			c.locker = aclService.NewKeyedLocker()
			return nil
		}
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for locker: %w", err)
		}

		// Both SQL lockers are visible to every process sharing the database.
		switch c.config.DBDriver {
		case config.DBDriverMySQL:
			c.locker = aclService.NewMySQLLocker(db)
		default:
			c.locker = aclService.NewPostgreSQLLocker(db)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.locker, nil
}

// GuardManager returns the guard record manager.
func (c *Container) GuardManager() (*aclService.GuardManager, error) {
	err := c.lazy(&c.guardManagerInit, "guardManager", func() error {
		programID, err := c.ProgramID()
		if err != nil {
			return err
		}
		accounts, err := c.AccountRepository()
		if err != nil {
			return fmt.Errorf("failed to get account repository for guard manager: %w", err)
		}
		system, err := c.SystemService()
		if err != nil {
			return fmt.Errorf("failed to get system service for guard manager: %w", err)
		}
		locker, err := c.Locker()
		if err != nil {
			return err
		}
		c.guardManager = aclService.NewGuardManager(programID, accounts, system, locker, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.guardManager, nil
}

// GateRegistry returns the gating programs loaded from GATES_CONFIG_PATH or the defaults.
func (c *Container) GateRegistry() (*gateService.Registry, error) {
	err := c.lazy(&c.gateRegistryInit, "gateRegistry", func() error {
		programID, err := c.ProgramID()
		if err != nil {
			return err
		}
		accounts, err := c.AccountRepository()
		if err != nil {
			return fmt.Errorf("failed to get account repository for gate registry: %w", err)
		}
		system, err := c.SystemService()
		if err != nil {
			return fmt.Errorf("failed to get system service for gate registry: %w", err)
		}

		registryConfig, err := gateService.LoadRegistryConfig(c.config.GatesConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load gate registry: %w", err)
		}

		c.gateRegistry, err = gateService.BuildRegistry(registryConfig, gateService.Dependencies{
			EngineProgramID: programID,
			Accounts:        accounts,
			System:          system,
			Logger:          c.Logger(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.gateRegistry, nil
}

// decisionGateRegistry returns the registry as consumed by the engine, recording
// decisions when metrics are enabled.
func (c *Container) decisionGateRegistry() (aclUseCase.GateRegistry, error) {
	err := c.lazy(&c.decisionGatesInit, "decisionGates", func() error {
		registry, err := c.GateRegistry()
		if err != nil {
			return err
		}
		c.decisionGates = registry
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for gate registry: %w", err)
			}
			c.decisionGates = aclUseCase.NewGateRegistryWithMetrics(registry, businessMetrics)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.decisionGates, nil
}

// ConfigUseCase returns the mint config use case.
func (c *Container) ConfigUseCase() (aclUseCase.ConfigUseCase, error) {
	err := c.lazy(&c.configUseCaseInit, "configUseCase", func() (err error) {
		c.configUseCase, err = c.initConfigUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.configUseCase, nil
}

// FreezeUseCase returns the permissioned freeze and thaw use case.
func (c *Container) FreezeUseCase() (aclUseCase.FreezeUseCase, error) {
	err := c.lazy(&c.freezeUseCaseInit, "freezeUseCase", func() (err error) {
		c.freezeUseCase, err = c.initFreezeUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.freezeUseCase, nil
}

// PermissionlessUseCase returns the gated freeze and thaw use case.
func (c *Container) PermissionlessUseCase() (aclUseCase.PermissionlessUseCase, error) {
	err := c.lazy(&c.permissionlessUseCaseInit, "permissionlessUseCase", func() (err error) {
		c.permissionlessUseCase, err = c.initPermissionlessUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.permissionlessUseCase, nil
}

// Processor returns the engine as a ledger program.
func (c *Container) Processor() (*aclUseCase.Processor, error) {
	err := c.lazy(&c.processorInit, "processor", func() error {
		programID, err := c.ProgramID()
		if err != nil {
			return err
		}
		configs, err := c.ConfigUseCase()
		if err != nil {
			return fmt.Errorf("failed to get config use case for processor: %w", err)
		}
		freezes, err := c.FreezeUseCase()
		if err != nil {
			return fmt.Errorf("failed to get freeze use case for processor: %w", err)
		}
		permissionless, err := c.PermissionlessUseCase()
		if err != nil {
			return fmt.Errorf("failed to get permissionless use case for processor: %w", err)
		}
		c.processor = aclUseCase.NewProcessor(programID, configs, freezes, permissionless, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.processor, nil
}

// Builder returns the instruction builder used by CLI commands.
func (c *Container) Builder() (*client.Builder, error) {
	err := c.lazy(&c.builderInit, "builder", func() error {
		programID, err := c.ProgramID()
		if err != nil {
			return err
		}
		accounts, err := c.AccountRepository()
		if err != nil {
			return fmt.Errorf("failed to get account repository for builder: %w", err)
		}
		c.builder = client.NewBuilder(programID, aclUseCase.NewAccountDataFetcher(accounts))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.builder, nil
}

// Sender returns the transaction signer and submitter used by CLI commands.
func (c *Container) Sender() (*client.Sender, error) {
	err := c.lazy(&c.senderInit, "sender", func() error {
		transactions, err := c.TransactionUseCase()
		if err != nil {
			return fmt.Errorf("failed to get transaction use case for sender: %w", err)
		}
		c.sender = client.NewSender(transactions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.sender, nil
}

// initConfigUseCase creates the config use case with all its dependencies.
func (c *Container) initConfigUseCase() (aclUseCase.ConfigUseCase, error) {
	programID, err := c.ProgramID()
	if err != nil {
		return nil, err
	}
	s, err := c.accountStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account store for config use case: %w", err)
	}
	system, err := c.SystemService()
	if err != nil {
		return nil, fmt.Errorf("failed to get system service for config use case: %w", err)
	}
	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for config use case: %w", err)
	}

	baseUseCase := aclUseCase.NewConfigUseCase(programID, s.txManager, s.accounts, system, tokens, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for config use case: %w", err)
		}
		return aclUseCase.NewConfigUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initFreezeUseCase creates the freeze use case with all its dependencies.
func (c *Container) initFreezeUseCase() (aclUseCase.FreezeUseCase, error) {
	programID, err := c.ProgramID()
	if err != nil {
		return nil, err
	}
	s, err := c.accountStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account store for freeze use case: %w", err)
	}
	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for freeze use case: %w", err)
	}

	baseUseCase := aclUseCase.NewFreezeUseCase(programID, s.txManager, s.accounts, tokens, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for freeze use case: %w", err)
		}
		return aclUseCase.NewFreezeUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initPermissionlessUseCase creates the permissionless use case with all its dependencies.
func (c *Container) initPermissionlessUseCase() (aclUseCase.PermissionlessUseCase, error) {
	programID, err := c.ProgramID()
	if err != nil {
		return nil, err
	}
	s, err := c.accountStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account store for permissionless use case: %w", err)
	}
	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for permissionless use case: %w", err)
	}
	guards, err := c.GuardManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get guard manager for permissionless use case: %w", err)
	}
	gates, err := c.decisionGateRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get gate registry for permissionless use case: %w", err)
	}

	baseUseCase := aclUseCase.NewPermissionlessUseCase(
		programID,
		s.txManager,
		s.accounts,
		tokens,
		guards,
		gates,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for permissionless use case: %w", err)
		}
		return aclUseCase.NewPermissionlessUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

package app

import (
	"fmt"

	"github.com/allisson/tokenacl/internal/config"
	"github.com/allisson/tokenacl/internal/database"
	"github.com/allisson/tokenacl/internal/http"
	"github.com/allisson/tokenacl/internal/ledger/repository"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
	ledgerUseCase "github.com/allisson/tokenacl/internal/ledger/usecase"
	tokenService "github.com/allisson/tokenacl/internal/token/service"
)

// store bundles the account repository with the transaction manager driving it.
type store struct {
	accounts  ledgerUseCase.AccountRepository
	txManager database.TxManager
	pinger    http.Pinger
}

func (c *Container) accountStore() (*store, error) {
	err := c.lazy(&c.storeInit, "store", func() (err error) {
		c.store, err = c.initStore()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.store, nil
}

// AccountRepository returns the account repository for the configured driver.
func (c *Container) AccountRepository() (ledgerUseCase.AccountRepository, error) {
	s, err := c.accountStore()
	if err != nil {
		return nil, err
	}
	return s.accounts, nil
}

// TxManager returns the transaction manager matching the account repository.
func (c *Container) TxManager() (database.TxManager, error) {
	s, err := c.accountStore()
	if err != nil {
		return nil, err
	}
	return s.txManager, nil
}

// TransactionRecordRepository returns the submission record repository.
func (c *Container) TransactionRecordRepository() (ledgerUseCase.TransactionRecordRepository, error) {
	err := c.lazy(&c.recordRepoInit, "recordRepo", func() (err error) {
		c.recordRepo, err = c.initTransactionRecordRepository()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.recordRepo, nil
}

// SystemService returns the system program.
func (c *Container) SystemService() (*ledgerService.SystemService, error) {
	err := c.lazy(&c.systemServiceInit, "systemService", func() error {
		accounts, err := c.AccountRepository()
		if err != nil {
			return fmt.Errorf("failed to get account repository for system service: %w", err)
		}
		c.systemService = ledgerService.NewSystemService(accounts, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.systemService, nil
}

// TokenService returns the token program.
func (c *Container) TokenService() (*tokenService.TokenService, error) {
	err := c.lazy(&c.tokenServiceInit, "tokenService", func() error {
		accounts, err := c.AccountRepository()
		if err != nil {
			return fmt.Errorf("failed to get account repository for token service: %w", err)
		}
		system, err := c.SystemService()
		if err != nil {
			return fmt.Errorf("failed to get system service for token service: %w", err)
		}
		c.tokenService = tokenService.NewTokenService(accounts, system, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenService, nil
}

// AccountUseCase returns the account use case.
func (c *Container) AccountUseCase() (ledgerUseCase.AccountUseCase, error) {
	err := c.lazy(&c.accountUseCaseInit, "accountUseCase", func() (err error) {
		c.accountUseCase, err = c.initAccountUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.accountUseCase, nil
}

// TransactionUseCase returns the runtime with every program registered.
func (c *Container) TransactionUseCase() (ledgerUseCase.TransactionUseCase, error) {
	err := c.lazy(&c.transactionUseCaseInit, "transactionUseCase", func() (err error) {
		c.transactionUseCase, err = c.initTransactionUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.transactionUseCase, nil
}

// initStore selects the account repository and transaction manager by driver.
func (c *Container) initStore() (*store, error) {
	// The memory store is its own transaction manager
	if c.config.DBDriver == config.DBDriverMemory {
		repo := repository.NewMemoryAccountRepository()
		return &store{accounts: repo, txManager: repo, pinger: repo}, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for account repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	s := &store{txManager: database.NewTxManager(db), pinger: db}
	switch c.config.DBDriver {
	case config.DBDriverMySQL:
		s.accounts = repository.NewMySQLAccountRepository(db)
	case config.DBDriverPostgres:
		s.accounts = repository.NewPostgreSQLAccountRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return s, nil
}

// initTransactionRecordRepository creates the record repository for the configured driver.
func (c *Container) initTransactionRecordRepository() (ledgerUseCase.TransactionRecordRepository, error) {
	if c.config.DBDriver == config.DBDriverMemory {
		return repository.NewMemoryTransactionRecordRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for transaction record repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case config.DBDriverMySQL:
		return repository.NewMySQLTransactionRecordRepository(db), nil
	case config.DBDriverPostgres:
		return repository.NewPostgreSQLTransactionRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAccountUseCase creates the account use case with all its dependencies.
func (c *Container) initAccountUseCase() (ledgerUseCase.AccountUseCase, error) {
	s, err := c.accountStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account store for account use case: %w", err)
	}

	system, err := c.SystemService()
	if err != nil {
		return nil, fmt.Errorf("failed to get system service for account use case: %w", err)
	}

	baseUseCase := ledgerUseCase.NewAccountUseCase(s.txManager, s.accounts, system, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for account use case: %w", err)
		}
		return ledgerUseCase.NewAccountUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTransactionUseCase registers the system, token, associated token and engine
// programs plus every gate that also runs as a ledger program.
func (c *Container) initTransactionUseCase() (ledgerUseCase.TransactionUseCase, error) {
	s, err := c.accountStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account store for transaction use case: %w", err)
	}

	records, err := c.TransactionRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for transaction use case: %w", err)
	}

	system, err := c.SystemService()
	if err != nil {
		return nil, fmt.Errorf("failed to get system service for transaction use case: %w", err)
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for transaction use case: %w", err)
	}

	processor, err := c.Processor()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine processor for transaction use case: %w", err)
	}

	registry, err := c.GateRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get gate registry for transaction use case: %w", err)
	}

	programs := []ledgerUseCase.Program{
		system,
		tokens,
		tokenService.NewAssociatedTokenService(tokens),
		processor,
	}
	// Gates with a setup routine author their descriptor lists on the ledger
	for _, setup := range registry.SetupPrograms() {
		programs = append(programs, setup)
	}

	baseUseCase := ledgerUseCase.NewTransactionUseCase(s.txManager, records, c.Logger(), programs...)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for transaction use case: %w", err)
		}
		return ledgerUseCase.NewTransactionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

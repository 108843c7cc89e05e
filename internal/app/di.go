// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/acl/client"
	aclHTTP "github.com/allisson/tokenacl/internal/acl/http"
	aclService "github.com/allisson/tokenacl/internal/acl/service"
	aclUseCase "github.com/allisson/tokenacl/internal/acl/usecase"
	"github.com/allisson/tokenacl/internal/config"
	"github.com/allisson/tokenacl/internal/database"
	gateService "github.com/allisson/tokenacl/internal/gate/service"
	"github.com/allisson/tokenacl/internal/http"
	"github.com/allisson/tokenacl/internal/keys"
	ledgerHTTP "github.com/allisson/tokenacl/internal/ledger/http"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
	ledgerUseCase "github.com/allisson/tokenacl/internal/ledger/usecase"
	"github.com/allisson/tokenacl/internal/metrics"
	tokenService "github.com/allisson/tokenacl/internal/token/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	keyLoader       *keys.Loader

	// Storage
	store         *store
	recordRepo    ledgerUseCase.TransactionRecordRepository
	locker        aclService.Locker
	programID     solana.PublicKey
	gateRegistry  *gateService.Registry
	decisionGates aclUseCase.GateRegistry

	// Programs
	systemService *ledgerService.SystemService
	tokenService  *tokenService.TokenService
	guardManager  *aclService.GuardManager
	processor     *aclUseCase.Processor

	// Use Cases
	configUseCase         aclUseCase.ConfigUseCase
	freezeUseCase         aclUseCase.FreezeUseCase
	permissionlessUseCase aclUseCase.PermissionlessUseCase
	transactionUseCase    ledgerUseCase.TransactionUseCase
	accountUseCase        ledgerUseCase.AccountUseCase

	// Client
	builder *client.Builder
	sender  *client.Sender

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                        sync.Mutex
	loggerInit                sync.Once
	dbInit                    sync.Once
	metricsProviderInit       sync.Once
	businessMetricsInit       sync.Once
	keyLoaderInit             sync.Once
	storeInit                 sync.Once
	recordRepoInit            sync.Once
	lockerInit                sync.Once
	programIDInit             sync.Once
	gateRegistryInit          sync.Once
	decisionGatesInit         sync.Once
	systemServiceInit         sync.Once
	tokenServiceInit          sync.Once
	guardManagerInit          sync.Once
	processorInit             sync.Once
	configUseCaseInit         sync.Once
	freezeUseCaseInit         sync.Once
	permissionlessUseCaseInit sync.Once
	transactionUseCaseInit    sync.Once
	accountUseCaseInit        sync.Once
	builderInit               sync.Once
	senderInit                sync.Once
	httpServerInit            sync.Once
	metricsServerInit         sync.Once
	initErrors                map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// lazy runs fn once under name and replays its error on later calls.
func (c *Container) lazy(once *sync.Once, name string, fn func() error) error {
	once.Do(func() {
		// Store initialization error for subsequent calls
		if err := fn(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection. The memory driver has no connection.
func (c *Container) DB() (*sql.DB, error) {
	err := c.lazy(&c.dbInit, "db", func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.db, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.lazy(&c.metricsProviderInit, "metricsProvider", func() (err error) {
		if !c.config.MetricsEnabled {
			return nil
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business operation recorder; a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.lazy(&c.businessMetricsInit, "businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// KeyLoader returns the signer keypair loader.
func (c *Container) KeyLoader() *keys.Loader {
	c.keyLoaderInit.Do(func() {
		c.keyLoader = keys.NewLoader(c.config.KeypairKMSKeyURI)
	})
	return c.keyLoader
}

// HTTPServer returns the API server with every route registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	err := c.lazy(&c.httpServerInit, "httpServer", func() (err error) {
		c.httpServer, err = c.initHTTPServer()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.lazy(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush pending metrics
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if c.config.LogFormat == config.LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	// The memory driver keeps state in the account store
	if c.config.DBDriver == config.DBDriverMemory {
		return nil, nil
	}

	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		PingTimeout:        c.config.DBPingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	transactionUseCase, err := c.TransactionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction use case for http server: %w", err)
	}

	accountUseCase, err := c.AccountUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get account use case for http server: %w", err)
	}

	configUseCase, err := c.ConfigUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get config use case for http server: %w", err)
	}

	programID, err := c.ProgramID()
	if err != nil {
		return nil, err
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	// Readiness pings the database, or the memory store
	s, err := c.accountStore()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(s.pinger, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(
		c.config,
		ledgerHTTP.NewTransactionHandler(transactionUseCase, logger),
		ledgerHTTP.NewAccountHandler(accountUseCase, logger),
		aclHTTP.NewMintConfigHandler(programID, configUseCase, logger),
		provider,
	)

	return server, nil
}

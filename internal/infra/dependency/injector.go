// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/audit"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/image"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/statistics"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/transaction"
	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/wallet"
	"github.com/finance-tracker/wallet-ledger/internal/infra/cache"
	infradb "github.com/finance-tracker/wallet-ledger/internal/infra/db"
	"github.com/finance-tracker/wallet-ledger/internal/infra/server/router"
	"github.com/finance-tracker/wallet-ledger/internal/integration/adapters"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config       *config.Config
	DB           *gorm.DB
	Router       *router.Router
	RateLimiter  *middleware.RateLimiter
	DeleteWallet *wallet.DeleteWalletUseCase
	DetectDrift  *audit.DetectDriftUseCase
}

// Options overrides collaborators that tests replace.
type Options struct {
	ImageUploader adapter.ImageUploader
	TokenService  adapter.TokenService
	Clock         func() time.Time
}

// NewInjector creates a new dependency injector with all dependencies wired.
// A nil redisClient runs without wallet locks.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Injector {
	return NewInjectorWithOptions(cfg, db, redisClient, Options{})
}

// NewInjectorWithOptions is NewInjector with collaborator overrides.
func NewInjectorWithOptions(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) *Injector {
	// Create repositories
	walletRepo := persistence.NewWalletRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	uow := persistence.NewUnitOfWork(db)

	// Create adapters/services
	locker := NewWalletLocker(cfg, redisClient)

	uploader := opts.ImageUploader
	if uploader == nil {
		uploader = adapters.NewCloudinaryUploader(adapters.CloudinaryConfig{
			CloudName:    cfg.Images.CloudName,
			UploadPreset: cfg.Images.UploadPreset,
			BaseURL:      cfg.Images.BaseURL,
			Timeout:      cfg.Images.Timeout,
		})
	}

	tokenService := opts.TokenService
	if tokenService == nil {
		tokenService = adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	}

	resolveImage := image.NewResolveImageUseCase(uploader)

	// Create wallet use cases
	listWalletsUseCase := wallet.NewListWalletsUseCase(walletRepo)
	getWalletUseCase := wallet.NewGetWalletUseCase(walletRepo)
	walletSummaryUseCase := wallet.NewWalletSummaryUseCase(walletRepo)
	upsertWalletUseCase := wallet.NewUpsertWalletUseCase(walletRepo, resolveImage)
	deleteWalletUseCase := wallet.NewDeleteWalletUseCase(walletRepo, transactionRepo, cfg.Ledger.CascadeBatchSize)

	// Create transaction use cases
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(transactionRepo)
	getTransactionUseCase := transaction.NewGetTransactionUseCase(transactionRepo)
	submitTransactionUseCase := transaction.NewSubmitTransactionUseCase(transactionRepo, walletRepo, uow, locker, resolveImage)
	deleteTransactionUseCase := transaction.NewDeleteTransactionUseCase(transactionRepo, walletRepo, uow, locker)

	// Create statistics and audit use cases
	fetchStatsUseCase := statistics.NewFetchStatsUseCase(transactionRepo, opts.Clock, cfg.Ledger.Location())
	detectDriftUseCase := audit.NewDetectDriftUseCase(walletRepo, transactionRepo, locker)

	// Create controllers
	var redisHealthChecker controller.HealthChecker
	if redisClient != nil {
		redisHealthChecker = cache.HealthCheck(redisClient)
	}
	healthController := controller.NewHealthController(infradb.HealthCheck(db), redisHealthChecker)

	walletController := controller.NewWalletController(
		listWalletsUseCase,
		getWalletUseCase,
		walletSummaryUseCase,
		upsertWalletUseCase,
		deleteWalletUseCase,
	)

	transactionController := controller.NewTransactionController(
		listTransactionsUseCase,
		getTransactionUseCase,
		submitTransactionUseCase,
		deleteTransactionUseCase,
	)

	statisticsController := controller.NewStatisticsController(fetchStatsUseCase)

	// Create middleware
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(
		healthController,
		walletController,
		transactionController,
		statisticsController,
		rateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config:       cfg,
		DB:           db,
		Router:       r,
		RateLimiter:  rateLimiter,
		DeleteWallet: deleteWalletUseCase,
		DetectDrift:  detectDriftUseCase,
	}
}

// NewWalletLocker returns the Redis locker when a client is available and
// the no-op locker otherwise.
func NewWalletLocker(cfg *config.Config, redisClient *redis.Client) adapter.WalletLocker {
	if redisClient == nil {
		slog.Warn("Redis not configured, wallet updates are not serialized across requests")
		return adapters.NewNoopWalletLocker()
	}
	return adapters.NewRedisWalletLocker(redisClient, cfg.Ledger.LockTTL, cfg.Ledger.LockWait)
}

// Package container provides dependency injection and lifecycle management
// for the Billed expense service.
package container

import (
	"context"
	"fmt"
	"net/url"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/export"
	infraLark "github.com/garyjia/billed/internal/infrastructure/external/lark"
	"github.com/garyjia/billed/internal/infrastructure/gateway"
	"github.com/garyjia/billed/internal/infrastructure/notification"
	"github.com/garyjia/billed/internal/infrastructure/observability"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/internal/infrastructure/thumbnail"
	"github.com/garyjia/billed/internal/infrastructure/worker"
	"github.com/garyjia/billed/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// StorageBundle holds the attachment store and, for the local driver, the
// directory the HTTP server exposes.
type StorageBundle struct {
	Blobs      port.BlobStorage
	StaticDir  string
	StaticPath string
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if _, err := database.NewMigrator(db, logger).Run(database.Migrations()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &RepositoryBundle{
		Bill:       repository.NewBillRepository(db.DB, logger),
		Attachment: repository.NewAttachmentRepository(db.DB, logger),
	}, nil
}

// ProvideStorage selects the attachment store from the configured driver.
func ProvideStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	switch cfg.Driver {
	case config.StorageDriverS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		logger.Info("Using S3 attachment storage",
			zap.String("bucket", cfg.S3.Bucket),
			zap.String("region", cfg.S3.Region))
		return &StorageBundle{
			Blobs: storage.NewS3Storage(client, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, cfg.S3.PublicBaseURL, logger),
		}, nil

	case config.StorageDriverLocal, "":
		bundle := &StorageBundle{
			Blobs:     storage.NewLocalFileStorage(cfg.BaseDir, cfg.PublicBaseURL, logger),
			StaticDir: cfg.BaseDir,
		}
		if u, err := url.Parse(cfg.PublicBaseURL); err == nil && u.Path != "" && u.Path != "/" {
			bundle.StaticPath = u.Path
		}
		logger.Info("Using local attachment storage",
			zap.String("base_dir", cfg.BaseDir),
			zap.String("static_path", bundle.StaticPath))
		return bundle, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ProvideNotifier returns the Lark notifier when Lark is enabled and a
// logging notifier otherwise.
func ProvideNotifier(cfg *config.LarkConfig, logger *zap.Logger) port.Notifier {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Lark disabled, review notifications are logged only")
		return notification.NewLogNotifier(logger)
	}

	client := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
	})
	messenger := infraLark.NewMessenger(infraLark.NewSDKSender(client, logger), logger)
	return infraLark.NewReviewNotifier(messenger)
}

// ProvideDispatcher creates the event dispatcher and subscribes the owner
// notifications to review events.
func ProvideDispatcher(notifier port.Notifier, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}),
	)
	if notifier != nil {
		dispatcher.RegisterReviewNotifications(d, notifier)
	}
	return d, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Gateway    port.BillGateway
	Reporter   port.ErrorReporter
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Gateway == nil {
		return nil, fmt.Errorf("bill gateway is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	resizer := thumbnail.NewResizer()

	// a nil Dispatcher must stay a nil interface in the services
	var publisher port.EventPublisher
	if deps.Dispatcher != nil {
		publisher = deps.Dispatcher
	}

	return &ServiceBundle{
		Submission: service.NewSubmissionService(deps.Gateway, deps.Reporter, publisher, serviceLogger),
		Listing:    service.NewListingService(deps.Gateway, resizer, deps.Reporter, serviceLogger),
		Review: service.NewReviewService(
			deps.Gateway,
			resizer,
			export.NewExcelExporter(),
			deps.Reporter,
			publisher,
			serviceLogger,
		),
	}, nil
}

// ProvideGateway creates the bill gateway over repositories and storage.
func ProvideGateway(repos *RepositoryBundle, blobs port.BlobStorage, txManager port.TransactionManager, logger *zap.Logger) *gateway.BillGateway {
	return gateway.NewBillGateway(repos.Bill, repos.Attachment, blobs, txManager, logger)
}

// ProvideReporter creates the error sink for transport failures.
func ProvideReporter(logger *zap.Logger) *observability.ZapReporter {
	return observability.NewZapReporter(logger)
}

// ProvideWorkers creates the worker manager with its registered workers.
func ProvideWorkers(cfg *config.WorkerConfig, cleaner port.OrphanCleaner, logger *zap.Logger) (*worker.WorkerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("worker config is required")
	}

	manager := worker.NewWorkerManager(logger)

	sweeperCfg := worker.DefaultOrphanSweeperConfig()
	if cfg.OrphanSweepInterval > 0 {
		sweeperCfg.Interval = cfg.OrphanSweepInterval
	}
	if cfg.OrphanGracePeriod > 0 {
		sweeperCfg.GracePeriod = cfg.OrphanGracePeriod
	}
	manager.Register(worker.NewOrphanSweeper(sweeperCfg, cleaner, logger))

	return manager, nil
}

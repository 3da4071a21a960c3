package service

import (
	"github.com/arifsuz/pre-shipment-system/internal/config"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services groups the PSE services.
type Services struct {
	Company      *CompanyService
	Shipment     *ShipmentService
	Memo         *MemoService
	Workflow     *WorkflowService
	Import       *ImportService
	Auth         *AuthService
	User         *UserService
	Notification *NotificationService
	Stats        *StatsService
	Archive      *ArchiveService
}

// Deps are the external clients the services use. Redis and MinIO are
// optional and may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	MinIO  *minio.Client
	Events *sse.Hub
	Logger *zap.Logger
}

// NewServices wires all services over one set of repositories.
func NewServices(repos *repository.Repositories, deps Deps, cfg *config.Config) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	companies := NewCompanyService(repos.Company, logger)
	memos := NewMemoService(repos, deps.Events, logger)
	notifications := NewNotificationService(repos.Notification, deps.Events, logger)
	archive := NewArchiveService(deps.MinIO, cfg.MinIO.Bucket, logger)

	return &Services{
		Company:      companies,
		Shipment:     NewShipmentService(deps.DB, repos, companies, deps.Events, logger),
		Memo:         memos,
		Workflow:     NewWorkflowService(deps.DB, repos, companies, memos, deps.Events, logger),
		Import:       NewImportService(archive, notifications, logger),
		Auth:         NewAuthService(repos.User, deps.Redis, cfg.JWT, logger),
		User:         NewUserService(repos.User, logger),
		Notification: notifications,
		Stats:        NewStatsService(repos, deps.Redis, logger),
		Archive:      archive,
	}
}

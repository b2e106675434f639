package handlers

import (
	"log/slog"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/config"
	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handler struct {
	cfg               config.Config
	logger            *slog.Logger
	db                *gorm.DB
	rdb               *redis.Client
	authResolver      *auth.Resolver
	shortenerService  *services.ShortenerService
	resolutionService *services.ResolutionService
	accountService    *services.AccountService
	keyService        *services.APIKeyService
	auditService      *services.AuditService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	authResolver *auth.Resolver,
	shortenerService *services.ShortenerService,
	resolutionService *services.ResolutionService,
	accountService *services.AccountService,
	keyService *services.APIKeyService,
	auditService *services.AuditService,
) *Handler {
	return &Handler{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		rdb:               rdb,
		authResolver:      authResolver,
		shortenerService:  shortenerService,
		resolutionService: resolutionService,
		accountService:    accountService,
		keyService:        keyService,
		auditService:      auditService,
	}
}

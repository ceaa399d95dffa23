package app

import (
	"context"
	"time"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/internal/app/controller"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/back-pedagogico/stories-backend/internal/media"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/back-pedagogico/stories-backend/internal/router"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenBlocklist revokes tokens on logout and answers whether one was revoked.
type TokenBlocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Dependencies are the process-wide handles created at startup.
type Dependencies struct {
	DB    *gorm.DB
	Store storage.FileStore
	// Blocklist is optional. Without it logout is stateless.
	Blocklist TokenBlocklist
}

// App holds the wired services and the HTTP engine.
type App struct {
	Auth    service.AuthService
	Stories service.StoryService
	Persons service.PersonService
	Tags    service.TagService
	Engine  *gin.Engine
}

// New wires repositories, services and controllers onto one database handle.
func New(cfg *config.Config, deps Dependencies) *App {
	adminRepo := repository.NewAdminUserRepository(deps.DB)
	personRepo := repository.NewPersonRepository(deps.DB)
	tagRepo := repository.NewTagRepository(deps.DB)
	storyRepo := repository.NewStoryRepository(deps.DB)
	imageRepo := repository.NewImageRepository(deps.DB)

	var (
		revoker     service.TokenRevoker
		revocations middleware.TokenRevocationChecker
	)
	if deps.Blocklist != nil {
		revoker = deps.Blocklist
		revocations = deps.Blocklist
	}

	authService := service.NewAuthService(adminRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, revoker)
	storyService := service.NewStoryService(deps.DB, storyRepo, personRepo, tagRepo)
	publicService := service.NewPublicStoryService(storyRepo, cfg.Content.DefaultLanguage)
	personService := service.NewPersonService(deps.DB, personRepo, imageRepo, deps.Store)
	tagService := service.NewTagService(deps.DB, tagRepo)
	imageService := service.NewImageService(
		imageRepo,
		personRepo,
		deps.Store,
		media.NewProcessor(deps.Store, cfg.Upload.ThumbnailSize),
		cfg.Upload.AllowedExtensions,
	)

	controllers := router.Controllers{
		Auth:        controller.NewAuthController(authService),
		Story:       controller.NewStoryController(storyService, cfg.Content.DefaultLanguage),
		PublicStory: controller.NewPublicStoryController(publicService),
		Person:      controller.NewPersonController(personService),
		Tag:         controller.NewTagController(tagService),
		Image:       controller.NewImageController(imageService),
		Upload:      controller.NewUploadController(imageService),
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)
	health := func() error { return db.Ping(deps.DB) }

	return &App{
		Auth:    authService,
		Stories: storyService,
		Persons: personService,
		Tags:    tagService,
		Engine:  router.NewRouter(controllers, authMiddleware, health, cfg).Setup(),
	}
}

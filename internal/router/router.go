package router

import (
	"net/http"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/internal/app/controller"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// HealthCheck reports whether the backing services are reachable.
type HealthCheck func() error

type Controllers struct {
	Auth        *controller.AuthController
	Story       *controller.StoryController
	PublicStory *controller.PublicStoryController
	Person      *controller.PersonController
	Tag         *controller.TagController
	Image       *controller.ImageController
	Upload      *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	health         HealthCheck
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	health HealthCheck,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		health:         health,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	if r.config.Tracing.Enabled {
		router.Use(otelgin.Middleware(r.config.Tracing.ServiceName))
	}
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.Timeout(r.config.Server.RequestTimeout))

	router.GET("/health", r.healthHandler)

	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		{
			admin.POST("/login", r.controllers.Auth.Login)
			admin.POST("/logout", r.authMiddleware.Authenticate(), r.controllers.Auth.Logout)
			admin.GET("/me", r.authMiddleware.Authenticate(), r.controllers.Auth.GetMe)
		}

		public := api.Group("/public")
		{
			public.GET("/stories", r.controllers.PublicStory.ListStories)
			public.GET("/stories/:id", r.controllers.PublicStory.GetStory)
		}

		api.GET("/uploads/:filename", r.controllers.Upload.ServeFile)

		protected := api.Group("")
		protected.Use(r.authMiddleware.Authenticate())
		{
			stories := protected.Group("/stories")
			{
				stories.POST("", r.controllers.Story.CreateStory)
				stories.GET("", r.controllers.Story.ListStories)
				stories.GET("/:id", r.controllers.Story.GetStory)
				stories.PUT("/:id", r.controllers.Story.UpdateStory)
				stories.DELETE("/:id", r.controllers.Story.DeleteStory)
			}

			persons := protected.Group("/persons")
			{
				persons.POST("", r.controllers.Person.CreatePerson)
				persons.GET("", r.controllers.Person.ListPersons)
				persons.GET("/:id", r.controllers.Person.GetPerson)
				persons.PUT("/:id", r.controllers.Person.UpdatePerson)
				persons.DELETE("/:id", r.controllers.Person.DeletePerson)
				persons.POST("/:id/images",
					middleware.BodyLimit(r.config.Upload.MaxBytes),
					r.controllers.Image.UploadImage,
				)
				persons.GET("/:id/images", r.controllers.Image.ListImages)
			}

			protected.DELETE("/images/:id", r.controllers.Image.DeleteImage)

			tags := protected.Group("/tags")
			{
				tags.POST("", r.controllers.Tag.CreateTag)
				tags.GET("", r.controllers.Tag.ListTags)
				tags.GET("/:id", r.controllers.Tag.GetTag)
				tags.PUT("/:id", r.controllers.Tag.UpdateTag)
				tags.DELETE("/:id", r.controllers.Tag.DeleteTag)
			}
		}
	}

	return router
}

func (r *Router) healthHandler(c *gin.Context) {
	if r.health != nil {
		if err := r.health(); err != nil {
			logger.Error("Health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "ok",
	})
}

// corsMiddleware allows every origin when the list is empty or contains "*".
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}

	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mediakart/mediakart-backend/internal/config"
	"github.com/mediakart/mediakart-backend/internal/handlers"
	"github.com/mediakart/mediakart-backend/internal/middleware"
	"github.com/mediakart/mediakart-backend/internal/services"
	"github.com/mediakart/mediakart-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(db, cfg)
	catalogService := services.NewCatalogService(db, storageService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		// Authentication routes
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Catalog routes
		products := api.Group("/products")
		{
			products.GET("", catalogHandler.GetProducts)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/upload", middleware.UploadRateLimit(), catalogHandler.UploadProduct)
				protected.POST("/:id/buy", catalogHandler.BuyProduct)
				protected.GET("/:id/download", catalogHandler.DownloadProduct)
				protected.POST("/:id/rate", catalogHandler.RateProduct)
			}
		}
	}

	// Cover images are served statically; product files go through the
	// authorization-checked download route.
	r.Static("/uploads", cfg.Storage.UploadDir)

	return r, nil
}

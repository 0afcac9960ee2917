// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/config"
	"github.com/compia/editora-backend/internal/handlers"
	"github.com/compia/editora-backend/internal/middleware"
	"github.com/compia/editora-backend/internal/services"
	"github.com/compia/editora-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Services
	activityService := services.NewActivityService(db)
	jwtManager := utils.NewJWTManager(cfg.JWT)
	authService := services.NewAuthService(db, jwtManager, activityService)
	userService := services.NewUserService(db, activityService)
	categoryService := services.NewCategoryService(db, activityService)
	productService := services.NewProductService(db, activityService)
	orderService := services.NewOrderService(db, activityService)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, activityService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "editora-backend",
			"version": "1.0.0",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}
		c.JSON(status, gin.H{
			"status":   "healthy",
			"database": dbStatus,
		})
	})

	authRequired := middleware.AuthRequired(jwtManager, db)

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", categoryHandler.GetCategory)

			protected := categories.Group("")
			protected.Use(authRequired, middleware.RequirePermission(middleware.ActionManageCategories))
			{
				protected.POST("", categoryHandler.CreateCategory)
				protected.PUT("/:id", categoryHandler.UpdateCategory)
				protected.DELETE("/:id", categoryHandler.DeleteCategory)
			}
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)

			protected := products.Group("")
			protected.Use(authRequired, middleware.RequirePermission(middleware.ActionManageProducts))
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PUT("/:id", productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
			}

			upload := products.Group("")
			upload.Use(authRequired, middleware.RequirePermission(middleware.ActionUploadMedia))
			{
				upload.POST("/upload-image", middleware.UploadRateLimit(), productHandler.UploadImage)
			}
		}

		orders := v1.Group("/orders")
		orders.Use(authRequired)
		{
			orders.POST("/checkout", orderHandler.Checkout)
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(authRequired)
		{
			adminUsers := admin.Group("/users")
			adminUsers.Use(middleware.RequirePermission(middleware.ActionManageUsers))
			{
				adminUsers.GET("", userHandler.GetUsers)
				adminUsers.PATCH("/:id/role", userHandler.UpdateUserRole)
				adminUsers.PATCH("/:id/status", userHandler.UpdateUserStatus)
			}

			adminLogs := admin.Group("/logs")
			adminLogs.Use(middleware.RequirePermission(middleware.ActionViewActivityLogs))
			{
				adminLogs.GET("", userHandler.GetActivityLogs)
			}
		}
	}

	return r, nil
}

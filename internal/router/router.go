// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/config"
	"github.com/javajoker/farm-marketplace/internal/handlers"
	"github.com/javajoker/farm-marketplace/internal/middleware"
	"github.com/javajoker/farm-marketplace/internal/repository"
	"github.com/javajoker/farm-marketplace/internal/services"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

func Initialize(repo repository.Repository, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 unavailable, falling back to simulated uploads")
		storageService = services.NewStorageServiceWithClient(nil, cfg)
	}

	authService := services.NewAuthService(repo, cfg)
	accountService := services.NewAccountService(repo)
	categoryService := services.NewCategoryService(repo)
	productService := services.NewProductService(repo, storageService)
	orderService := services.NewOrderService(repo)
	paymentService := services.NewPaymentService(repo, cfg)
	reviewService := services.NewReviewService(repo)
	messageService := services.NewMessageService(repo)
	resourceService := services.NewResourceService(repo)
	bookmarkService := services.NewBookmarkService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, reviewService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	messageHandler := handlers.NewMessageHandler(messageService)
	resourceHandler := handlers.NewResourceHandler(resourceService, bookmarkService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"storage": cfg.Storage.Driver,
		})
	})

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "route")
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Account routes
		accounts := v1.Group("/accounts")
		accounts.Use(middleware.AuthRequired())
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.PATCH("/:id", accountHandler.UpdateAccount)
			accounts.DELETE("/:id", accountHandler.DeleteAccount)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", middleware.OptionalAuth(), categoryHandler.ListCategories)
			categories.GET("/:id", middleware.OptionalAuth(), categoryHandler.GetCategory)

			protected := categories.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", categoryHandler.CreateCategory)
				protected.PUT("/:id", categoryHandler.UpdateCategory)
				protected.DELETE("/:id", categoryHandler.DeleteCategory)
			}
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/low-stock", middleware.AuthRequired(), productHandler.GetLowStock)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/reviews", middleware.OptionalAuth(), productHandler.GetReviews)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PATCH("/:id", productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadImage)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/items", orderHandler.GetOrderItems)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
			orders.PATCH("/:id/payment", orderHandler.UpdatePaymentStatus)
			orders.POST("/:id/payment-intent", paymentHandler.CreatePaymentIntent)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:id", middleware.OptionalAuth(), reviewHandler.GetReview)

			protected := reviews.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", reviewHandler.CreateReview)
				protected.PATCH("/:id", reviewHandler.UpdateReview)
				protected.DELETE("/:id", reviewHandler.DeleteReview)
			}
		}

		// Message routes
		messages := v1.Group("/messages")
		messages.Use(middleware.AuthRequired())
		{
			messages.POST("", messageHandler.SendMessage)
			messages.GET("", messageHandler.ListMessages)
			messages.GET("/with/:accountId", messageHandler.GetConversation)
			messages.PATCH("/:id/read", messageHandler.MarkRead)
		}

		// Educational resource routes
		resources := v1.Group("/resources")
		{
			resources.GET("", middleware.OptionalAuth(), resourceHandler.ListResources)
			resources.GET("/:id", middleware.OptionalAuth(), resourceHandler.GetResource)
			resources.POST("/:id/view", middleware.OptionalAuth(), resourceHandler.ViewResource)

			protected := resources.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", resourceHandler.CreateResource)
				protected.PUT("/:id", resourceHandler.UpdateResource)
				protected.DELETE("/:id", resourceHandler.DeleteResource)
			}
		}

		// Bookmark routes
		bookmarks := v1.Group("/bookmarks")
		bookmarks.Use(middleware.AuthRequired())
		{
			bookmarks.GET("", resourceHandler.ListBookmarks)
			bookmarks.POST("", resourceHandler.CreateBookmark)
			bookmarks.DELETE("/:id", resourceHandler.DeleteBookmark)
		}
	}

	return r
}

// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/handlers"
	"github.com/javajoker/shopify-automation/internal/metrics"
	"github.com/javajoker/shopify-automation/internal/middleware"
	"github.com/javajoker/shopify-automation/internal/services"
)

const version = "1.0.0"

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	DB       *gorm.DB
	Source   services.SourceCatalog
	Products *services.ProductService
	Import   *services.ImportService
	SNS      *services.SNSService
	Users    *services.UserService
	Logs     *services.LogService
}

// Initialize builds the engine. Background helpers stop when ctx is done.
func Initialize(ctx context.Context, cfg *config.Config, svc Services, logger *logrus.Logger) *gin.Engine {
	// Initialize handlers
	productHandler := handlers.NewProductHandler(svc.Products)
	aliexpressHandler := handlers.NewAliExpressHandler(svc.Source, svc.Import)
	snsHandler := handlers.NewSNSHandler(svc.SNS)
	userHandler := handlers.NewUserHandler(svc.Users)
	logHandler := handlers.NewLogHandler(svc.Logs)

	limiter := middleware.NewRateLimiterFromConfig(cfg.RateLimit)
	go limiter.Run(ctx)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if svc.DB != nil {
			if sqlDB, err := svc.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(limiter.Middleware())
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/reconcile", productHandler.Reconcile)
			products.POST("/sync-shopify", productHandler.SyncShopify)
			products.GET("/shopify-status", productHandler.ShopifyStatus)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/seo", productHandler.GenerateSEO)
		}

		aliexpress := v1.Group("/aliexpress")
		{
			aliexpress.GET("/search", aliexpressHandler.Search)
			aliexpress.GET("/trending", aliexpressHandler.Trending)
			aliexpress.GET("/product/:id", aliexpressHandler.GetProduct)
			aliexpress.GET("/product/:id/analytics", aliexpressHandler.GetAnalytics)
			aliexpress.POST("/import", aliexpressHandler.Import)
			aliexpress.POST("/import-batch", aliexpressHandler.ImportBatch)
			aliexpress.GET("/import-status", aliexpressHandler.ImportStatus)
			aliexpress.GET("/import-jobs/:id", aliexpressHandler.GetImportJob)
		}

		sns := v1.Group("/sns")
		{
			sns.GET("/platforms", snsHandler.GetPlatforms)
			sns.GET("/content/:product_id", snsHandler.ListContent)
			sns.POST("/generate/:product_id", snsHandler.Generate)
			sns.GET("/item/:id", snsHandler.GetContent)
			sns.PUT("/content/:id", snsHandler.UpdateContent)
			sns.POST("/content/:id/regenerate", snsHandler.Regenerate)
			sns.DELETE("/content/:id", snsHandler.DeleteContent)
		}

		users := v1.Group("/users")
		{
			users.GET("", userHandler.GetUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/activate", userHandler.ActivateUser)
			users.POST("/:id/deactivate", userHandler.DeactivateUser)
		}

		logs := v1.Group("/logs")
		{
			logs.GET("", logHandler.GetLogs)
			logs.GET("/realtime", logHandler.Realtime)
			logs.GET("/errors", logHandler.GetErrors)
			logs.GET("/export", logHandler.Export)
			logs.DELETE("", logHandler.Purge)
		}
	}

	return r
}

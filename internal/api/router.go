package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divesh330/timevault/internal/api/handlers"
	"github.com/divesh330/timevault/internal/api/middleware"
	"github.com/divesh330/timevault/internal/audit"
	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/payment"
	"github.com/divesh330/timevault/internal/repository"
	"github.com/divesh330/timevault/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	processor payment.Processor,
	notifier services.TransactionNotifier,
	recorder audit.Recorder,
) *gin.Engine {
	handlers.RegisterValidators()

	userService := services.NewUserService(repos.Users, cfg)
	listingService := services.NewListingService(repos.Listings, cfg, recorder)
	transactionService := services.NewTransactionService(
		repos.Transactions, repos.Listings, repos.Users, processor, notifier)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(userService)
	listingHandler := handlers.NewListingHandler(listingService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	v1 := r.Group("/v1")
	{
		// Public routes (rate limiting already applied globally)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/listing/search", listingHandler.SearchListings)
		v1.GET("/listing/brands", listingHandler.GetSupportedBrands)
		v1.GET("/listing/:id", listingHandler.GetListingByID)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/auth/me", authHandler.Me)

			authRequired.POST("/listing", listingHandler.CreateListing)
			authRequired.PATCH("/listing/:id", listingHandler.UpdateListing)
			authRequired.DELETE("/listing/:id", listingHandler.RemoveListing)

			authRequired.POST("/transaction", transactionHandler.CreateTransaction)
			authRequired.GET("/transaction", transactionHandler.GetUserTransactions)
			authRequired.GET("/transaction/:id", transactionHandler.GetTransactionByID)
			authRequired.PATCH("/transaction/:id/status", transactionHandler.UpdateTransactionStatus)
		}

		// Admin routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.DELETE("/listing/:id", listingHandler.RemoveListing)
		}
	}

	return r
}

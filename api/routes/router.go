package routes

import (
	"net/http"
	"time"

	"hallbook/internal/auth"
	"hallbook/internal/booking"
	"hallbook/internal/captcha"
	"hallbook/internal/events"
	"hallbook/internal/invoices"
	"hallbook/internal/notifications"
	"hallbook/internal/rates"
	"hallbook/internal/shared/config"
	"hallbook/internal/shared/database"
	"hallbook/internal/shared/middleware"
	"hallbook/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config        *config.Config
	db            *database.DB
	cacheService  cache.Service
	notifications *notifications.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, notificationService *notifications.Service) *Router {
	return &Router{
		config:        cfg,
		db:            db,
		cacheService:  cacheService,
		notifications: notificationService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()

	// Rates feed both the admin screens and invoice derivation.
	rateService := rates.NewService(rates.NewRepository(pg), r.cacheService)

	invoiceService := invoices.NewService(
		invoices.NewRepository(pg),
		rateService,
		invoices.NewDeriver(r.config.Booking.DepositAmount),
	)

	verifier := captcha.NewVerifier(r.config.Captcha.Secret, r.config.Captcha.Armed)
	eventService := events.NewService(
		events.NewRepository(pg),
		booking.PolicyFromConfig(r.config.Booking),
		time.Duration(r.config.Booking.OverlapBufferMinutes)*time.Minute,
		verifier,
		r.cacheService,
		invoiceService,
		rateService,
	)

	// The events and invoices services consume each other through local
	// interfaces; wire both directions here.
	invoiceService.SetEventSource(eventService)
	if r.notifications != nil {
		eventService.SetNotifier(r.notifications)
		invoiceService.SetNotifier(r.notifications)
	}

	authService := auth.NewService(auth.NewRepository(pg), r.config)
	authRouter := auth.NewRouter(auth.NewController(authService))
	eventsRouter := events.NewRouter(events.NewController(eventService))
	ratesRouter := rates.NewRouter(rates.NewController(rateService))
	invoicesRouter := invoices.NewRouter(invoices.NewController(invoiceService))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRouter.SetupRoutes(api)
		eventsRouter.SetupPublicRoutes(api)

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireAdmin())
		{
			authRouter.SetupProtectedRoutes(admin)
			eventsRouter.SetupAdminRoutes(admin)
			ratesRouter.SetupAdminRoutes(admin)
			invoicesRouter.SetupAdminRoutes(admin)
		}
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "hallbook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "hallbook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

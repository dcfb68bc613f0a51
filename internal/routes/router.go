package routes

import (
	"net/http"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/database"
	"rigor-logistics/internal/delivery/http/handler"
	domainLocation "rigor-logistics/internal/domain/location"
	"rigor-logistics/internal/livefeed"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/middleware"
	"rigor-logistics/internal/notification"
	"rigor-logistics/internal/usecase/fleet"
	"rigor-logistics/internal/usecase/reimbursement"
	"rigor-logistics/internal/usecase/tracking"
	"rigor-logistics/internal/usecase/trip"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Services are the use cases behind the HTTP API. The tracking service is
// shared with telemetry ingestion.
type Services struct {
	Trips          *trip.Service
	Reimbursements *reimbursement.Service
	Tracking       *tracking.Service
	Fleet          *fleet.Service
}

func NewServices(cfg *config.Config, repos *database.Repositories, notifier notification.Notifier, publisher domainLocation.Publisher) *Services {
	return &Services{
		Trips: trip.NewService(trip.Dependencies{
			Tx:           repos.Tx,
			TripRepo:     repos.Trips,
			TruckerRepo:  repos.Truckers,
			TruckRepo:    repos.Trucks,
			AdminRepo:    repos.Admins,
			LocationRepo: repos.Locations,
			Notifier:     notifier,
			Publisher:    publisher,
			Tracking:     cfg.Tracking,
		}),
		Reimbursements: reimbursement.NewService(repos.Tx, repos.Reimbursements, repos.Trips, repos.Truckers, repos.Admins, notifier),
		Tracking:       tracking.NewService(repos.Tx, repos.Locations, repos.Trips, publisher, cfg.Tracking),
		Fleet:          fleet.NewService(repos.Tx, repos.Truckers, repos.Trucks, repos.Admins),
	}
}

// Options carries the optional runtime pieces. A nil Hub disables the
// websocket feed and a nil Notifier discards email.
type Options struct {
	Hub      *livefeed.Hub
	Notifier notification.Notifier
	// Stats are reported under GET /api/v1/admin/stats, keyed by component.
	Stats map[string]func() any
}

func SetupRoutes(cfg *config.Config, repos *database.Repositories, services *Services, opts Options) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := repos.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}

	tripHandler := handler.NewTripHandler(services.Trips)
	reimbursementHandler := handler.NewReimbursementHandler(services.Reimbursements)
	locationHandler := handler.NewLocationHandler(services.Tracking, opts.Hub)
	fleetHandler := handler.NewFleetHandler(services.Fleet)
	emailHandler := handler.NewEmailHandler(notifier)

	v1 := router.Group("/api/v1")
	{
		fleetHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			tripHandler.RegisterRoutes(protected)
			reimbursementHandler.RegisterRoutes(protected)
			locationHandler.RegisterRoutes(protected)
			fleetHandler.RegisterRoutes(protected)

			trucker := protected.Group("")
			trucker.Use(middleware.TruckerOnly())
			{
				reimbursementHandler.RegisterTruckerRoutes(trucker)
			}

			admin := protected.Group("")
			admin.Use(middleware.AdminOnly())
			{
				tripHandler.RegisterAdminRoutes(admin)
				reimbursementHandler.RegisterAdminRoutes(admin)
				fleetHandler.RegisterAdminRoutes(admin)
				emailHandler.RegisterAdminRoutes(admin)

				admin.GET("/admin/stats", func(c *gin.Context) {
					stats := make(gin.H, len(opts.Stats))
					for name, fn := range opts.Stats {
						stats[name] = fn()
					}
					utils.SuccessResponse(c, http.StatusOK, "Stats retrieved successfully", stats)
				})
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}

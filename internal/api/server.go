package api

import (
	"fmt"
	"net/http"

	"beautybook/internal/cache"
	"beautybook/internal/calendar"
	"beautybook/internal/config"
	"beautybook/internal/database"
	"beautybook/internal/handlers"
	"beautybook/internal/logger"
	"beautybook/internal/messaging"
	"beautybook/internal/metrics"
	"beautybook/internal/middleware"
	"beautybook/internal/repository"
	"beautybook/internal/service"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router       *gin.Engine
	config       *config.Config
	db           *database.DB
	nats         *messaging.NATSClient
	availability *cache.AvailabilityCache
	services     *service.Services
}

// NewServer подключает зависимости и собирает роутер
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// The cache is optional: without Valkey every availability read hits the database.
	var availabilityCache *cache.AvailabilityCache
	if cfg.Cache.Enabled {
		availabilityCache, err = cache.NewValkeyClient(cfg.Cache)
		if err != nil {
			logger.Get().Warn("Availability cache disabled", "error", err)
			availabilityCache = nil
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.StoresFrom(repos), calendar.SystemClock{}, cfg.Booking)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CORS(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	server := &Server{
		router:       router,
		config:       cfg,
		db:           db,
		nats:         natsClient,
		availability: availabilityCache,
		services:     services,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.nats, s.availability)
	RegisterRoutes(s.router, h, s.services.Users)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// RegisterRoutes mounts the /api tree on router.
func RegisterRoutes(router *gin.Engine, h *handlers.Handlers, auth middleware.Authenticator) {
	api := router.Group("/api")
	{
		availability := api.Group("/availability")
		{
			availability.GET("", h.GetAvailability)
			availability.GET("/slot", h.CheckSlot)
		}

		api.POST("/users", h.RegisterUser)
		api.POST("/bookings", middleware.OptionalBasicAuth(auth), h.CreateBooking)

		// Authenticated endpoints
		authed := api.Group("")
		authed.Use(middleware.BasicAuth(auth))
		{
			authed.GET("/bookings", h.ListBookings)
			authed.PATCH("/bookings/:id/cancel", h.CancelBooking)
			authed.POST("/account/link-guest-records", h.LinkGuestRecords)
		}

		// Operator endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.BasicAuth(auth), middleware.RequireOperator())
		{
			admin.PATCH("/bookings/:id", h.UpdateBooking)
			admin.PATCH("/bookings/:id/cancel", h.AdminCancelBooking)
			admin.PATCH("/bookings/:id/deposit", h.MarkDeposit)

			admin.GET("/blocks", h.ListBlocks)
			admin.POST("/blocks", h.CreateBlock)
			admin.DELETE("/blocks/:id", h.DeleteBlock)
		}
	}
}

// healthCheck отдает состояние пула соединений с БД
func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "beautybook-api",
		"version":  "1.0.0",
		"database": health,
	})
}

// Handler возвращает роутер для http.Server и тестов
func (s *Server) Handler() http.Handler {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()

	if err := s.nats.Close(); err != nil {
		log.Error("Error closing NATS connection", "error", err)
	}

	if err := s.availability.Close(); err != nil {
		log.Error("Error closing Valkey connection", "error", err)
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

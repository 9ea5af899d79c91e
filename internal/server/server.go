package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/auth"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/booking"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/config"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/sweeper"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/gin-gonic/gin"
)

// Handlers are the route groups the server mounts.
type Handlers struct {
	Bookings    *booking.Handler
	Wallet      *wallet.Handler
	Memberships *membership.Handler
	Sweeps      *sweeper.Handler
	// Ping reports database health. Optional.
	Ping func(ctx context.Context) error
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", Health(h.Ping))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/bookings", h.Bookings.CreateBooking)
		protected.POST("/bookings/recurring", h.Bookings.CreateRecurringBooking)
		protected.GET("/bookings", h.Bookings.ListMyBookings)
		protected.POST("/bookings/:visitID/cancel", h.Bookings.CancelBooking)
		protected.POST("/bookings/:visitID/reschedule", h.Bookings.RescheduleBooking)
		protected.POST("/bookings/:visitID/check-in", h.Bookings.CheckIn)
		protected.GET("/facilities/:facilityID/slots", h.Bookings.GetAvailableSlots)

		protected.GET("/wallet", h.Wallet.GetBalance)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)

		protected.GET("/memberships/:membershipID/entitlement", h.Memberships.GetEntitlement)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/sweeps", h.Sweeps.RunSweep)
		admin.POST("/visits/:visitID/refunds", h.Bookings.RefundFee)
	}

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Idempotency-Key, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// File: internal/app/server.go
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/ShIIIrochka/SecondStagePROD/internal/auth"
	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
	"github.com/ShIIIrochka/SecondStagePROD/internal/feed"
	"github.com/ShIIIrochka/SecondStagePROD/internal/jobs"
	"github.com/ShIIIrochka/SecondStagePROD/internal/middleware"
	"github.com/ShIIIrochka/SecondStagePROD/internal/promo"
	"github.com/ShIIIrochka/SecondStagePROD/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	userHandler    *user.Handler
	companyHandler *company.Handler
	promoHandler   *promo.Handler
	feedHandler    *feed.Handler

	// Jobs
	promoDigestJob *jobs.PromoDigestJob

	// Middleware instances
	userAuthMW    gin.HandlerFunc
	companyAuthMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokenService auth.TokenService,
	sessions auth.SessionStore,
	userHandler *user.Handler,
	companyHandler *company.Handler,
	promoHandler *promo.Handler,
	feedHandler *feed.Handler,
	promoDigestJob *jobs.PromoDigestJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", common.TotalCountHeader, middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Two principal kinds, two gates. A user token never opens a company
	// route and vice versa.
	userAuthMW := middleware.AuthRequired(common.KindUser, tokenService, sessions, logger.Named("AuthMiddleware"))
	companyAuthMW := middleware.AuthRequired(common.KindCompany, tokenService, sessions, logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	userHandler.RegisterRoutes(api, userAuthMW)
	companyHandler.RegisterRoutes(api)
	promoHandler.RegisterRoutes(api, companyAuthMW)
	feedHandler.RegisterRoutes(api, userAuthMW)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		userHandler:    userHandler,
		companyHandler: companyHandler,
		promoHandler:   promoHandler,
		feedHandler:    feedHandler,
		promoDigestJob: promoDigestJob,
		userAuthMW:     userAuthMW,
		companyAuthMW:  companyAuthMW,
	}, nil
}

func (s *Server) Start() error {
	if s.promoDigestJob != nil {
		if err := s.promoDigestJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start promo digest job", zap.Error(err))
		}
	} else {
		s.logger.Info("Promo digest job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.promoDigestJob != nil {
		s.promoDigestJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

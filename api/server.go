package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/vitalwatch/api/handlers"
	"github.com/OldStager01/vitalwatch/api/middleware"
	"github.com/OldStager01/vitalwatch/api/websocket"
	"github.com/OldStager01/vitalwatch/internal/metrics"
	"github.com/OldStager01/vitalwatch/pkg/config"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

const maxBodyBytes = 64 << 10

type Dependencies struct {
	Service handlers.PatientService
	DB      handlers.Checker
	// Cache is optional.
	Cache   handlers.Checker
	Metrics *metrics.Metrics
	// Events feeds the WebSocket bridge; nil disables live updates.
	Events  <-chan *models.Event
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	deps       Dependencies
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg *config.WebSocketConfig, mode string, deps Dependencies) *Server {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if mode == "test" {
		gin.SetMode(gin.TestMode)
	}

	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	wsHub := websocket.NewHub(wsCfg)
	wsHub.OnClientCount = deps.Metrics.SetWebSocketClients

	s := &Server{
		router: gin.New(),
		config: cfg,
		deps:   deps,
		wsHub:  wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.CORS(corsConfig(s.config.CORS)))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.Metrics(s.deps.Metrics))
	s.router.Use(middleware.RequestSizeLimit(maxBodyBytes))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func corsConfig(cfg config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		out.AllowOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		out.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		out.AllowHeaders = cfg.AllowedHeaders
	}
	if len(cfg.ExposedHeaders) > 0 {
		out.ExposeHeaders = cfg.ExposedHeaders
	}
	out.AllowCredentials = cfg.AllowCredentials
	return out
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.DB, s.deps.Cache)
	patientHandler := handlers.NewPatientHandler(s.deps.Service, s.config.DefaultLimit, s.config.MaxLimit)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Forecasting reads a window of history per call
	endpointLimits := middleware.NewEndpointRateLimiter()
	endpointLimits.AddEndpoint("/patients/:id/forecast", 30, time.Minute)

	patients := s.router.Group("/patients/:id")
	patients.Use(endpointLimits.Middleware())
	{
		patients.POST("/vitals", patientHandler.RecordVitals)
		patients.POST("/risk", patientHandler.AssessRisk)
		patients.GET("/risk/latest", patientHandler.LatestRisk)
		patients.GET("/forecast", patientHandler.Forecast)
		patients.GET("/alerts", patientHandler.ListAlerts)
		patients.PUT("/alerts/:alertID/ack", patientHandler.AcknowledgeAlert)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idle := s.config.IdleTimeout
	if idle == 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

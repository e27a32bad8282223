package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/furxx2000/orderdeck/internal/config"
	"github.com/furxx2000/orderdeck/internal/database"
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/outbox"
	"github.com/furxx2000/orderdeck/internal/repository"
	"github.com/furxx2000/orderdeck/internal/service"
	"github.com/furxx2000/orderdeck/pkg/kafka"
	"github.com/furxx2000/orderdeck/pkg/logger"
	"github.com/furxx2000/orderdeck/pkg/ratelimit"
)

type Server struct {
	config          *config.Config
	logger          logger.Logger
	router          *mux.Router
	httpServer      *http.Server
	db              *database.Database
	orderRepo       *repository.OrderRepository
	outboxRepo      *repository.OutboxRepository
	orderService    *service.OrderService
	outboxProcessor *outbox.Processor
	kafkaProducer   *kafka.Producer
	ipLimiter       *ratelimit.IPRateLimiter
}

// NewServer creates a new API server with the given configuration and logger.
func NewServer(cfg *config.Config, logger logger.Logger) (*Server, error) {
	r := mux.NewRouter()
	db, err := database.New(cfg, logger)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := db.Seed(50); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	orderRepo := repository.NewOrderRepository(db, logger)
	outboxRepo := repository.NewOutboxRepository(db, logger)
	orderService := service.NewOrderService(orderRepo, outboxRepo, logger)

	server := &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		config:       cfg,
		db:           db,
		orderRepo:    orderRepo,
		outboxRepo:   outboxRepo,
		orderService: orderService,
		ipLimiter:    ratelimit.NewIPRateLimiter(cfg.Rate.MaxTokens, cfg.Rate.RefillRate),
	}

	// Event publishing is optional. Without a broker, delivery changes
	// still commit and the outbox rows stay pending.
	if cfg.Kafka.Enabled {
		kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)

		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}

		processorConfig := outbox.ProcessorConfig{
			PollingInterval: 5 * time.Second,
			BatchSize:       10,
			MaxRetries:      3,
		}
		outboxProcessor := outbox.NewProcessor(outboxRepo, processorConfig, logger)

		kafkaHandler := outbox.NewKafkaHandler(kafkaProducer, cfg.Kafka.OrdersTopic, logger)
		outboxProcessor.RegisterHandler(models.EventDeliveryStatusChanged, kafkaHandler)

		server.kafkaProducer = kafkaProducer
		server.outboxProcessor = outboxProcessor
	}

	server.setupRoutes()

	if server.outboxProcessor != nil {
		server.outboxProcessor.Start()
	}

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.outboxProcessor != nil {
		s.outboxProcessor.Stop()
	}

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	s.ipLimiter.Stop()

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for our API
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	api.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/paginated", s.getPaginatedOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.updateDeliveryStatusHandler).Methods(http.MethodPatch)
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}

// Middleware enforcing the per-client request budget
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ipLimiter.Allow(clientIP(r)) {
			s.respondWithError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/matheusmosca/sales-orders/internal/catalog"
	"github.com/matheusmosca/sales-orders/internal/events"
	"github.com/matheusmosca/sales-orders/internal/idempotency"
	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/ledger"
	"github.com/matheusmosca/sales-orders/internal/mailer"
	"github.com/matheusmosca/sales-orders/internal/orders"
	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/platform/config"
	"github.com/matheusmosca/sales-orders/internal/platform/logger"
	"github.com/matheusmosca/sales-orders/internal/platform/telemetry"
	"github.com/matheusmosca/sales-orders/internal/sales"
	"github.com/matheusmosca/sales-orders/internal/sellers"
	"github.com/matheusmosca/sales-orders/internal/storage/mongostore"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := bootLogger(os.Stderr)
		boot.Fatal().Err(err).Msg("❌ Failed to load config")
	}

	log := logger.New(cfg.Log, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	// Initialize OpenTelemetry
	providers, err := telemetry.Init(ctx, cfg.ServiceName, cfg.Version, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down telemetry")
		}
	}()

	// Initialize database
	mongoClient, err := mongostore.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create indexes")
	}

	tracer := otel.Tracer(cfg.ServiceName)
	engineOpts := []inventory.Option{
		inventory.WithTracer(tracer),
		inventory.WithMeter(otel.Meter(cfg.ServiceName)),
		inventory.WithCompensationTimeout(cfg.Inventory.CompensationTimeout),
	}

	// Ledger de movimentações (opcional)
	var movements catalog.MovementReader = catalog.NoMovements{}
	if cfg.Postgres.Enabled() {
		pool, err := ledger.Connect(ctx, cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect to ledger database")
		}
		defer pool.Close()

		stockLedger := ledger.NewPostgresLedger(pool)
		if err := stockLedger.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to create ledger schema")
		}
		engineOpts = append(engineOpts, inventory.WithRecorder(stockLedger))
		movements = stockLedger
	} else {
		log.Warn().Msg("⚠️ Postgres not configured, stock movements will not be recorded")
	}

	// Idempotência (opcional)
	idempotent := gin.HandlerFunc(idempotency.Noop)
	if cfg.Redis.Enabled() {
		redisClient, err := idempotency.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect to Redis")
		}
		defer redisClient.Close()
		idempotent = idempotency.Middleware(idempotency.NewRedisStore(redisClient, cfg.Redis.IdempotencyTTL))
	} else {
		log.Warn().Msg("⚠️ Redis not configured, Idempotency-Key header will be ignored")
	}

	// Eventos (opcional)
	var publisher interface {
		orders.EventPublisher
		Close() error
	} = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka)
	} else {
		log.Warn().Msg("⚠️ Kafka not configured, order events will only be logged")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	// E-mail (opcional)
	var mail sellers.Mailer = mailer.LogMailer{}
	if cfg.Mail.Enabled() {
		mail = mailer.NewRelayMailer(cfg.Mail)
	} else {
		log.Warn().Msg("⚠️ Mail relay not configured, confirmation e-mails will only be logged")
	}

	// Initialize dependencies
	productRepository := mongostore.NewProductRepository(db, cfg.Mongo.WriteConcurrency)
	clientRepository := mongostore.NewClientRepository(db)
	orderRepository := mongostore.NewOrderRepository(db)
	sellerRepository := mongostore.NewSellerRepository(db)

	engine := inventory.NewEngine(productRepository, engineOpts...)
	tokens := auth.NewTokens(cfg.Auth)

	orderHandler := orders.NewOrderHandler(
		orders.NewOrderUseCase(orderRepository, clientRepository, engine, publisher, tracer),
	)
	catalogHandler := catalog.NewHandler(
		catalog.NewProductUseCase(productRepository, engine, movements, tracer),
		catalog.NewClientUseCase(clientRepository),
	)
	sellerHandler := sellers.NewSellerHandler(
		sellers.NewSellerUseCase(sellerRepository, mail, tokens, cfg.Mail.ConfirmURL),
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	serverMetrics := telemetry.NewServerMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		logger.Middleware(log),
		serverMetrics.Middleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		if err := mongoClient.Ping(c.Request.Context(), nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(telemetry.Handler(prometheus.DefaultGatherer)))

	api := r.Group("/api")
	sellerHandler.RegisterPublic(api)

	authed := api.Group("", auth.Middleware(tokens))
	admin := auth.RequireRole(sales.RoleAdmin)
	orderHandler.Register(authed, idempotent)
	catalogHandler.Register(authed, admin)
	sellerHandler.Register(authed, admin)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("🚀 Sales Service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}

// bootLogger é usado antes da configuração estar carregada
func bootLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", "sales-service").Logger()
}

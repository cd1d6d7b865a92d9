package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-ledger-service/config"
	"github.com/fekuna/omnipos-ledger-service/internal/catalog"
	catalogRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	orderH "github.com/fekuna/omnipos-ledger-service/internal/order/handler"
	"github.com/fekuna/omnipos-ledger-service/internal/order/idempotency"
	"github.com/fekuna/omnipos-ledger-service/internal/order/indexer"
	"github.com/fekuna/omnipos-ledger-service/internal/order/publisher"
	orderRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-ledger-service/internal/order/usecase"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/search"
	stockH "github.com/fekuna/omnipos-ledger-service/internal/stock/handler"
	stockListenerPkg "github.com/fekuna/omnipos-ledger-service/internal/stock/listener"
	stockRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/stock/repository"
	stockUCPkg "github.com/fekuna/omnipos-ledger-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-ledger-service/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	tr := i18n.New()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		if err := migrations.Apply(context.Background(), db); err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
	}

	txManager := postgres.NewTxManager(db, postgres.TxOptions{
		Timeout:    cfg.Checkout.Timeout,
		MaxRetries: cfg.Checkout.MaxRetries,
	}, appLogger)

	// 4. Initialize Repositories
	catalogRepo := catalogRepoPkg.NewPGRepository(db)
	stockRepo := stockRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	var (
		lookup    catalog.Lookup = catalogRepo
		orderOpts []orderUCPkg.Option
	)

	// 5. Initialize Redis (checkout idempotency, catalog cache)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, idempotency falls back to the database", zap.Error(err))
		} else {
			defer redisClient.Close()
			orderOpts = append(orderOpts, orderUCPkg.WithIdempotencyStore(idempotency.NewRedisStore(redisClient)))
			lookup = catalog.NewCachedLookup(catalogRepo, redisClient, cfg.Redis.CatalogTTL, appLogger)
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 6. Initialize Kafka
	var stockConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderEventsTopic,
		})
		defer producer.Close()
		orderOpts = append(orderOpts, orderUCPkg.WithPublisher(publisher.NewKafkaPublisher(producer)))

		stockConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.StockMovementsTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer stockConsumer.Close()
		appLogger.Info("Kafka configured",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("order_events_topic", cfg.Kafka.OrderEventsTopic),
			zap.String("stock_movements_topic", cfg.Kafka.StockMovementsTopic),
		)
	}

	// 7. Initialize Elasticsearch (best-effort)
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, orders will not be indexed", zap.Error(err))
		} else {
			orderOpts = append(orderOpts, orderUCPkg.WithIndexer(indexer.NewElasticIndexer(esClient)))
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, lookup, txManager, appLogger)
	var orderUC order.UseCase = orderUCPkg.NewOrderUseCase(orderRepo, stockUC, lookup, txManager, orderUCPkg.Config{
		IdempotencyTTL:    cfg.Checkout.IdempotencyTTL,
		InFlightTTL:       2 * cfg.Checkout.Timeout,
		StrictTransitions: cfg.Checkout.StrictTransitions,
		RestockOnCancel:   cfg.Checkout.RestockOnCancel,
	}, appLogger, orderOpts...)

	// 9. Start Listeners
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if stockConsumer != nil {
		go stockListenerPkg.NewStockListener(stockConsumer, stockUC, appLogger).Start(ctx)
	}

	// 10. Initialize Handlers
	stockHandler := stockH.NewStockHandler(stockUC, appLogger)
	orderHandler := orderH.NewOrderHandler(orderUC, appLogger)

	// 11. Start gRPC Server
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			rpc.TenantInterceptor(),
			rpc.ErrorInterceptor(tr, appLogger),
		),
	)
	stockH.RegisterStockServiceServer(grpcServer, stockHandler)
	orderH.RegisterOrderServiceServer(grpcServer, orderHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(stockH.StockServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(orderH.OrderServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// 12. Start HTTP Server
	router := httpx.NewRouter(appLogger)
	v1 := router.Group("/v1", httpx.TenantMiddleware(tr))
	stockHandler.RegisterRoutes(v1, tr)
	orderHandler.RegisterRoutes(v1, tr)

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

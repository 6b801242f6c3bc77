package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atlasgrc/atlas/api/audit"
	"github.com/atlasgrc/atlas/api/config"
	"github.com/atlasgrc/atlas/api/controller"
	"github.com/atlasgrc/atlas/api/db"
	"github.com/atlasgrc/atlas/api/idp"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/middleware"
	"github.com/atlasgrc/atlas/api/router"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize metrics
	middleware.InitMetrics()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize utilities and external clients
	validationUtil := util.NewValidationUtil()
	sessionCache := util.NewSessionCache()
	idpClient := idp.NewHTTPClient(
		config.GetString("idp.baseUrl"),
		config.GetString("idp.secretKey"),
		config.GetDuration("idp.requestTimeout"),
	)
	auditRepository, err := audit.NewElasticsearchRepository(
		config.GetString("elasticsearch.url"),
		config.GetString("activity.index"),
	)
	if err != nil {
		logger.Fatal("Failed to initialize Elasticsearch repository", zap.Error(err))
	}

	webhookSecret, err := middleware.ParseWebhookSecret(config.GetString("idp.webhookSecret"))
	if err != nil {
		logger.Fatal("Invalid webhook signing secret", zap.Error(err))
	}

	// Initialize services
	services, err := service.InitializeServices(
		db.Neo4jDriver,
		idpClient,
		auditRepository,
		validationUtil,
		sessionCache,
		eventBus,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		controllers,
		webhookSecret,
		config.GetDuration("webhook.tolerance"),
		100,
		time.Minute,
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

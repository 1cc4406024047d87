package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"real-estate-market/internal/auth"
	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/config"
	"real-estate-market/internal/database"
	"real-estate-market/internal/events"
	"real-estate-market/internal/handlers"
	"real-estate-market/internal/jobs"
	"real-estate-market/internal/repository"
	"real-estate-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if cfg.Database.Driver == "sqlite" {
		err = database.ConnectSQLite(cfg.Database.Path)
	} else {
		err = database.Connect(cfg.GetDSN())
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize ledger and services
	repo := repository.NewRepository(database.DB)
	ledger := blockchain.NewLedger(database.DB, cfg.Runtime.ExistentialDeposit)
	exec := services.NewExecutor(database.DB, repo, ledger, events.NewRecorder(database.DB))
	marketService := services.NewMarketplaceService(exec, cfg.Runtime)
	managementService := services.NewManagementService(exec, cfg.Runtime)
	governanceService := services.NewGovernanceService(exec, cfg.Runtime, managementService)

	// Metrics
	metrics := jobs.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	// Event publisher
	var publisher events.Publisher = events.LogPublisher{}
	if cfg.Redis.URL != "" {
		redisPublisher, err := events.NewRedisPublisher(context.Background(), cfg.Redis.URL, cfg.Redis.Stream)
		if err != nil {
			log.Fatalf("Failed to connect event stream: %v", err)
		}
		defer redisPublisher.Close()
		publisher = redisPublisher
	}

	// Start background jobs
	producer := jobs.NewBlockProducer(governanceService, metrics, cfg.Chain.BlockTime)
	go producer.Start()
	relay := jobs.NewEventRelay(repo, publisher, metrics, cfg.Chain.RelayInterval, cfg.Chain.RelayBatchSize)
	go relay.Start()

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(router, &handlers.Handlers{
		Auth:        handlers.NewAuthHandler(),
		Marketplace: handlers.NewMarketplaceHandler(marketService),
		Management:  handlers.NewManagementHandler(managementService),
		Governance:  handlers.NewGovernanceHandler(governanceService),
		Admin:       handlers.NewAdminHandler(marketService, managementService, cfg.App.EnableFaucet),
		Chain: handlers.NewChainHandler(repo, ledger.Chain, map[string]string{
			"marketplace": marketService.AccountID(),
			"treasury":    marketService.TreasuryAccount(),
			"management":  managementService.AccountID(),
			"governance":  governanceService.AccountID(),
		}),
	}, cfg.App.IsAdmin)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	producer.Stop()
	relay.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Deliver what the last blocks emitted
	if _, err := relay.RelayPending(ctx); err != nil {
		log.Printf("Failed to flush events: %v", err)
	}

	log.Println("Server exited")
}

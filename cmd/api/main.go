package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"url-monitor-go/internal/admin"
	"url-monitor-go/internal/auth"
	"url-monitor-go/internal/handler"
	"url-monitor-go/internal/middleware"
	"url-monitor-go/internal/monitor"
	"url-monitor-go/internal/notification"
	"url-monitor-go/internal/store"
	"url-monitor-go/internal/store/memory"
	"url-monitor-go/internal/store/postgres"
	"url-monitor-go/internal/urls"
	"url-monitor-go/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Pick the storage backend. Postgres when a database URL is
	// configured, otherwise everything lives in memory.
	var urlStore store.Store
	var accountStore auth.AccountStore
	var adminPersister admin.Persister

	if cfg.DatabaseURL != "" {
		db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pgStore, err := postgres.NewURLStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize URL store: %v", err)
		}
		urlStore = pgStore

		accountStore, err = auth.NewPostgresAccountStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize account store: %v", err)
		}

		adminPersister, err = admin.NewPostgresPersister(db)
		if err != nil {
			log.Fatalf("Failed to initialize admin store: %v", err)
		}
	} else {
		log.Printf("DATABASE_URL not set, using in-memory storage")
		urlStore = memory.NewURLStore()
		accountStore = auth.NewMemoryAccountStore()
	}

	// Initialize Telegram notification service
	telegramService := notification.NewTelegramService(notification.TelegramConfig{
		APIToken: cfg.TelegramToken,
	})

	var alerter monitor.Alerter
	if cfg.TelegramToken != "" {
		bot, err := telegramService.SetupBot()
		if err != nil {
			log.Printf("Warning: Telegram bot setup failed: %v", err)
		} else {
			log.Printf("Telegram bot connected: @%s", bot.Username)
		}
		alerter = telegramService
	} else {
		log.Printf("Warning: TELEGRAM_BOT_TOKEN not set, alerts disabled")
	}

	// Initialize services
	adminRegistry := admin.NewRegistry(cfg.PrimaryAdminID, adminPersister)
	urlService := urls.NewURLService(urlStore)
	scheduler := monitor.NewScheduler(urlStore, alerter, cfg.PingInterval, cfg.RequestTimeout, cfg.RetentionDays)
	authService := auth.NewAuthService(accountStore, cfg.JWTSecret)

	if err := authService.EnsureAccount(cfg.PrimaryAdminID, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("Failed to provision admin account: %v", err)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	urlHandler := handler.NewURLHandler(urlService)
	monitorHandler := handler.NewMonitorHandler(scheduler)
	botHandler := handler.NewTelegramBotHandler(telegramService, urlService, scheduler, adminRegistry)

	// Start the periodic ping loop
	scheduler.Start()
	defer scheduler.Stop()

	// Set up Gin router
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}
	router.Use(cors.New(corsConfig))

	// Public routes
	router.POST("/api/login", authHandler.Login)
	router.POST("/webhook/telegram", botHandler.WebhookHandler)

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/urls", urlHandler.GetURLs)
		protected.POST("/urls", urlHandler.AddURL)
		protected.DELETE("/urls", urlHandler.RemoveURL)
		protected.GET("/urls/stats", urlHandler.GetUptimeStats)

		protected.GET("/monitor/status", monitorHandler.GetStatus)
		protected.POST("/monitor/ping", monitorHandler.PingNow)
		protected.POST("/monitor/test", monitorHandler.TestURL)
	}

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

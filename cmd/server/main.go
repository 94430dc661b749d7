package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	"github.com/styloinvest/backend/docs"
	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/database"
	"github.com/styloinvest/backend/internal/handlers"
	mW "github.com/styloinvest/backend/internal/middleware"
	"github.com/styloinvest/backend/internal/services"
	"github.com/styloinvest/backend/internal/store"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Stylo Invest Backend API
// @version 1.0
// @description API for the referral-based investment portal
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("store.driver", "STORE_DRIVER")

	viper.BindEnv("ledger.fixed_investment", "LEDGER_FIXED_INVESTMENT")
	viper.BindEnv("ledger.initial_bonus", "LEDGER_INITIAL_BONUS")
	viper.BindEnv("ledger.daily_earning", "LEDGER_DAILY_EARNING")
	viper.BindEnv("ledger.referral_bonus", "LEDGER_REFERRAL_BONUS")
	viper.BindEnv("withdraw.min", "WITHDRAW_MIN")
	viper.BindEnv("withdraw.max", "WITHDRAW_MAX")
	viper.BindEnv("withdraw.min_referrals", "WITHDRAW_MIN_REFERRALS")
	viper.BindEnv("base_url", "BASE_URL")

	viper.SetDefault("jwt.secret_key", "change-me-in-production")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("admin.password", "admin")
	viper.SetDefault("store.driver", "postgres")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Stylo Invest Backend API"
	docs.SwaggerInfo.Description = "API for the referral-based investment portal"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	ledgerCfg := config.LoadLedgerConfig()

	// Initialize storage
	var st store.Store
	switch viper.GetString("store.driver") {
	case "memory":
		st = store.NewMemory()
		log.Println("Using in-memory store")
	default:
		db := database.InitDatabase()
		defer db.Close()

		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		st = pg
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	referralService := services.NewReferralService(st, ledgerCfg)
	accrualService := services.NewAccrualService(st, ledgerCfg)
	approvalService := services.NewApprovalService(st, referralService, ledgerCfg)
	accountService := services.NewAccountService(st, ledgerCfg)
	withdrawalService := services.NewWithdrawalService(st, referralService, redisClient, ledgerCfg)
	authService := services.NewAuthService(st, redisClient)
	qrService := services.NewQRService(ledgerCfg)

	authHandler := handlers.NewAuthHandler(authService, approvalService)
	portalHandler := handlers.NewPortalHandler(accrualService, accountService, referralService, withdrawalService, qrService)
	adminHandler := handlers.NewAdminHandler(approvalService, accountService, withdrawalService)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Static file server for payment screenshots
	r.Handle("/static/screenshots/*", http.StripPrefix("/static/screenshots/",
		mW.StaticFileServer("./static/screenshots")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/admin/login", authHandler.AdminLogin)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/submissions/{id}/status", authHandler.SubmissionStatus)

		// Investor endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/me/dashboard", portalHandler.Dashboard)
			r.Get("/me/withdrawals", portalHandler.ListWithdrawals)
			r.Post("/me/withdrawals", portalHandler.RequestWithdrawal)
			r.Put("/me/withdrawal-info", portalHandler.SetWithdrawalInfo)
			r.Get("/me/referral-qr", portalHandler.ReferralQR)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.AdminMiddleware)

			r.Get("/admin/submissions", adminHandler.ListSubmissions)
			r.Post("/admin/submissions/{id}/decision", adminHandler.DecideSubmission)
			r.Get("/admin/accounts", adminHandler.ListAccounts)
			r.Get("/admin/accounts/{id}", adminHandler.GetAccount)
			r.Delete("/admin/accounts/{id}", adminHandler.DeleteAccount)
			r.Post("/admin/accounts/{id}/adjust-balance", adminHandler.AdjustBalance)
			r.Put("/admin/accounts/{id}/withdrawal-override", adminHandler.SetWithdrawalOverride)
			r.Get("/admin/withdrawals", adminHandler.ListPendingWithdrawals)
			r.Post("/admin/withdrawals/{id}/decision", adminHandler.DecideWithdrawal)
			r.Get("/admin/statistics", adminHandler.Statistics)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

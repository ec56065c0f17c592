package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/history"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	config := loadConfig()

	// Optional history store
	var historyStore history.Store
	if config.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     config.RedisURL,
			Password: config.RedisPassword,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connected to Redis")
		historyStore = history.NewRedisStore(redisClient, config.HistoryLimit)
	}

	// Optional bet ledger
	var betLedger ledger.Ledger
	if config.DatabaseURL != "" {
		db, err := sql.Open("postgres", config.DatabaseURL)
		if err != nil {
			fmt.Printf("❌ Failed to open Postgres connection: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			fmt.Printf("❌ Failed to ping Postgres: %v\n", err)
			os.Exit(1)
		}

		pgLedger := ledger.NewPostgresLedger(db)
		if err := pgLedger.EnsureSchema(context.Background()); err != nil {
			fmt.Printf("❌ Failed to prepare bets table: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connected to Postgres")
		betLedger = pgLedger
	}

	// Create handler
	handler := handlers.NewHandler(
		config.DefaultBankroll,
		config.KellyFraction,
		config.HistoryLimit,
		historyStore,
		betLedger,
	)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", handler.HealthCheck)
	r.Post("/api/v1/evaluate", handler.Evaluate)
	r.Post("/api/v1/convert", handler.Convert)
	r.Get("/api/v1/history", handler.History)
	r.Post("/api/v1/bets", handler.LogBet)
	r.Get("/api/v1/bets", handler.ListBets)

	// Start server
	addr := fmt.Sprintf(":%d", config.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		fmt.Printf("✓ Stake Advisor started on port %d\n", config.Port)
		fmt.Printf("  Default Bankroll: $%.2f\n", config.DefaultBankroll)
		fmt.Printf("  Kelly Fraction: %.2f (1/%.0f Kelly)\n", config.KellyFraction, 1.0/config.KellyFraction)
		if historyStore == nil {
			fmt.Println("  History: disabled (REDIS_URL not set)")
		}
		if betLedger == nil {
			fmt.Println("  Bet Ledger: disabled (DATABASE_URL not set)")
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("✗ Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n✓ Shutting down gracefully...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("✗ Shutdown error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Stake Advisor stopped")
}

// Config holds service configuration
type Config struct {
	Port            int
	DefaultBankroll float64
	KellyFraction   float64
	HistoryLimit    int
	RedisURL        string
	RedisPassword   string
	DatabaseURL     string
}

// loadConfig loads configuration from environment
func loadConfig() Config {
	return Config{
		Port:            getEnvInt("STAKE_SERVICE_PORT", 8087),
		DefaultBankroll: getEnvFloat("DEFAULT_BANKROLL", 1000.0),
		KellyFraction:   getEnvFloat("KELLY_DEFAULT_FRACTION", 0.5),
		HistoryLimit:    getEnvInt("HISTORY_LIMIT", 50),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

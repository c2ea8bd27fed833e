package main

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/xbank/transaction-service/internal/config"
	"github.com/xbank/transaction-service/internal/events"
	"github.com/xbank/transaction-service/internal/handler"
	"github.com/xbank/transaction-service/internal/middleware"
	"github.com/xbank/transaction-service/internal/redisclient"
	"github.com/xbank/transaction-service/internal/repository"
	"github.com/xbank/transaction-service/internal/security"
	"github.com/xbank/transaction-service/internal/service"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	// Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.Fatalf("failed to ping database: %v", err)
	}

	if err := runMigrations(cfg); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	// Redis connection, used only as the event transport
	redis, err := redisclient.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		logrus.Fatalf("failed to connect to redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis)

	// Audit consumer for the transaction event stream
	auditLog := events.NewSubscriber(redis, events.TransactionStream, "audit", "audit-1", func(ctx context.Context, event events.Event) error {
		logrus.WithFields(logrus.Fields{
			"type":      event.Type,
			"timestamp": event.Timestamp,
			"data":      event.Data,
		}).Info("Transaction event")
		return nil
	})
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	go func() {
		if err := auditLog.Run(auditCtx); err != nil && err != context.Canceled {
			logrus.Errorf("audit subscriber stopped: %v", err)
		}
	}()

	repo := repository.NewTransactionRepository(db)
	transactionService := service.NewTransactionService(repo, publisher, security.AllowAll{})
	transactionHandler := handler.NewTransactionHandler(transactionService, transactionService, cfg.AppName)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Transaction routes
	api := router.Group("/api/transactions", middleware.IdentityMiddleware(cfg.JWTSecret))
	{
		api.POST("", transactionHandler.CreateTransaction)
		api.PUT("", transactionHandler.EditTransaction)
		api.DELETE("/:id", transactionHandler.DeleteTransaction)
		api.GET("", transactionHandler.GetAllTransactions)
	}

	logrus.Infof("Transaction service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// File: campuspay/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuspay/config"
	"campuspay/cron"
	"campuspay/database"
	invoiceRepoPkg "campuspay/database/repository/invoice"
	ledgerRepoPkg "campuspay/database/repository/ledger"
	sessionRepoPkg "campuspay/database/repository/session"
	studentRepoPkg "campuspay/database/repository/student"
	transactionRepoPkg "campuspay/database/repository/transaction"
	"campuspay/handlers"
	"campuspay/middleware"
	"campuspay/routes"
	"campuspay/services/gateway"
	"campuspay/services/notification"
	"campuspay/services/payment"
	"campuspay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitCounterCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	sessRepo := sessionRepoPkg.NewMongoSessionRepo()
	txnRepo := transactionRepoPkg.NewMongoTransactionRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()
	invoiceRepo := invoiceRepoPkg.NewMongoInvoiceRepo()
	studentRepo := studentRepoPkg.NewMongoStudentRepo()

	// payment gateways.
	gatewayRegistry := gateway.NewRegistryFromConfig(config.AppConfig, logger)

	// notifications: settlement enqueues, the background worker delivers.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	queueNotifier := &notification.QueueNotifier{Client: asynqClient, Logger: logger}
	smsNotifier := &notification.SMSNotifier{
		Sender:   &notification.LogSMSSender{Logger: logger},
		Students: studentRepo,
		Logger:   logger,
	}
	cron.InitNotificationWorker(smsNotifier)

	// services.
	paymentService := &payment.DefaultPaymentService{
		Sessions:     sessRepo,
		Transactions: txnRepo,
		Ledger:       ledgerRepo,
		Invoices:     invoiceRepo,
		Students:     studentRepo,
		Gateways:     gatewayRegistry,
		Receipts: &payment.RedisReceiptGenerator{
			Client: utils.GetCounterClient(),
			Ledger: ledgerRepo,
			Logger: logger,
		},
		Notifier:      queueNotifier,
		Logger:        logger,
		SessionTTL:    config.AppConfig.SessionTimeout(),
		WebhookSecret: config.AppConfig.WebhookSecret,
		Currency:      config.AppConfig.DefaultCurrency,
	}

	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	webhookHandler := handlers.NewWebhookHandler(paymentService, logger)

	// Register routes.
	routes.RegisterRoutes(router, paymentHandler, webhookHandler)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetCounterClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

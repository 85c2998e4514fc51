package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/config"
	"slotbook/cron"
	"slotbook/database"
	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	hostRepo "slotbook/database/repository/host"
	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/models"
	"slotbook/routes"
	"slotbook/services/availability"
	"slotbook/services/booking"
	"slotbook/services/calendar"
	"slotbook/services/notification"
	"slotbook/services/payment"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitTaskRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	hosts := hostRepo.NewMongoHostRepo()
	rules := availabilityRepo.NewMongoAvailabilityRepo()
	bookings := bookingRepo.NewMongoBookingRepo()

	if err := rules.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure availability indexes: %v", err)
	}
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	lockTTL := config.LockTTL()
	secrets := payment.SecretsFromConfig(config.AppConfig)

	// services.
	availabilitySvc := &availability.DefaultAvailabilityService{
		Rules:    rules,
		Hosts:    hosts,
		Bookings: bookings,
		LockTTL:  lockTTL,
	}

	payuVerifier := &payment.PayUVerifier{Secrets: secrets}
	bookingSvc := &booking.DefaultBookingService{
		Bookings:     bookings,
		Availability: availabilitySvc,
		Orders:       &booking.SandboxOrderClient{},
		Secrets:      secrets,
		Verifiers: map[string]payment.Verifier{
			models.GatewayRazorpay: &payment.RazorpayVerifier{Secrets: secrets},
			models.GatewayPayU:     payuVerifier,
		},
		PayU:           payuVerifier,
		Dispatcher:     tasks.NewAsynqDispatcher(),
		LockTTL:        lockTTL,
		BaseURL:        config.AppConfig.BaseURL,
		PayUPaymentURL: config.AppConfig.PayUPaymentURL,
	}

	bookingHandler := handlers.NewBookingHandler(bookingSvc, availabilitySvc, logger)

	routes.RegisterRoutes(router, bookingHandler)

	// Background enrichment worker and stale booking sweeper.
	cron.InitEnrichmentWorker(bookings, hosts, &notification.LogNotifier{}, &calendar.NoopEnricher{}, lockTTL)
	utils.StartHealthMonitor(utils.GetTaskRedisClient(), database.MongoClient)

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

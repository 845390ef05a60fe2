package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicedesk/config"
	"voicedesk/cron"
	"voicedesk/database"
	bookingRepo "voicedesk/database/repository/booking"
	"voicedesk/handlers"
	"voicedesk/middleware"
	"voicedesk/routes"
	"voicedesk/services/booking"
	"voicedesk/services/calendar"
	"voicedesk/services/conversation"
	"voicedesk/services/crm"
	"voicedesk/services/notification"
	"voicedesk/services/tasks"
	"voicedesk/services/voicefn"
	"voicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	repo := bookingRepo.NewMongoBookingRepo()

	// Integrations. A missing credential disables that integration only; the
	// rest of the system keeps running and the sync runner flags affected
	// bookings for manual follow-up.
	var notifier notification.NotificationService
	if svc, err := notification.NewSMTPNotificationService(); err != nil {
		logger.Sugar().Warnf("main: email notifications disabled: %v", err)
	} else {
		notifier = svc
	}

	var calGateway calendar.Gateway
	if gw, err := calendar.NewGoogleCalendarGateway(); err != nil {
		logger.Sugar().Warnf("main: calendar sync disabled: %v", err)
	} else {
		calGateway = gw
	}

	var crmGateway crm.Gateway
	if gw, err := crm.NewHubSpotGateway(); err != nil {
		logger.Sugar().Warnf("main: CRM sync disabled: %v", err)
	} else {
		crmGateway = gw
	}

	// Services.
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	scheduler := tasks.NewAsynqSyncScheduler(redisOpts)

	bookingService := &booking.DefaultBookingService{
		Repo:             repo,
		Scheduler:        scheduler,
		AllowedDurations: config.AllowedDurationSet(),
	}

	calendarService := &calendar.Service{
		Gateway:    calGateway,
		Repo:       repo,
		HoursStart: config.AppConfig.BusinessHoursStart,
		HoursEnd:   config.AppConfig.BusinessHoursEnd,
	}

	voiceService := &voicefn.DefaultVoiceFunctionsService{
		BookingSvc:  bookingService,
		CalendarSvc: calendarService,
	}

	var extractor conversation.IntentExtractor = &conversation.RuleExtractor{}
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gem, err := conversation.NewGeminiExtractor(key)
		if err != nil {
			logger.Sugar().Warnf("main: gemini extractor unavailable, using rule extractor: %v", err)
		} else {
			extractor = gem
		}
	}

	ctxStore := conversation.NewRedisContextStore(
		utils.GetContextCacheClient(),
		config.AppConfig.ConversationTTL,
	)
	conversationService := &conversation.DefaultConversationService{
		Store:     ctxStore,
		Extractor: extractor,
		Voice:     voiceService,
	}

	// Background sync worker.
	syncRunner := &booking.SyncRunner{
		Repo:           repo,
		Notifier:       notifier,
		Calendar:       calGateway,
		CRM:            crmGateway,
		MaxAttempts:    config.AppConfig.SyncMaxAttempts,
		RetryDelay:     config.AppConfig.SyncRetryDelay,
		GatewayTimeout: config.AppConfig.GatewayTimeout,
	}
	cron.InitSyncWorker(syncRunner)

	utils.StartHealthMonitor(database.MongoClient)

	// Handlers.
	conversationHandler := handlers.NewConversationHandler(conversationService)
	transcribeHandler := handlers.NewTranscribeHandler(conversationService)
	voiceHandler := handlers.NewVoiceFunctionsHandler(voiceService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	handlerBundle := &handlers.HandlerBundle{
		ConversationMessageHandler: conversationHandler.ProcessMessageHandler,
		TranscribeHandler:          transcribeHandler.TranscribeMessageHandler,
		VoiceFunctionsHandler:      voiceHandler.DispatchHandler,

		CreateBookingHandler: bookingHandler.CreateBookingHandler,
		GetBookingHandler:    bookingHandler.GetBookingHandler,
		UpdateBookingHandler: bookingHandler.UpdateBookingHandler,
		CancelBookingHandler: bookingHandler.CancelBookingHandler,
		ListBookingsHandler:  bookingHandler.ListBookingsHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

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

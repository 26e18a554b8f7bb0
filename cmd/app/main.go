package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lingoplatform/internal/application/usecase"
	"lingoplatform/internal/config"
	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/cache"
	"lingoplatform/internal/infrastructure/email"
	"lingoplatform/internal/infrastructure/llm"
	"lingoplatform/internal/infrastructure/payment"
	"lingoplatform/internal/infrastructure/repository"
	"lingoplatform/internal/infrastructure/security"
	"lingoplatform/internal/middleware"
	handlers "lingoplatform/internal/transport/http"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.Fatalf("Invalid APP_TIMEZONE %q: %v", cfg.AppTimezone, err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Chapter{},
		&domain.Lesson{},
		&domain.Exam{},
		&domain.CompletedLesson{},
		&domain.CompletedExam{},
		&domain.CompletedChapter{},
		&domain.LessonWatch{},
		&domain.XPHistoryEntry{},
		&domain.DailyUsage{},
		&domain.Subscription{},
		&domain.SubscriptionTransaction{},
		&domain.SubscriptionPlan{},
		&domain.ChatMessage{},
		&domain.ExamAttempt{},
	); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// infrastructure
	clock := usecase.NewClock(loc)
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)
	hasher := security.NewPasswordHasher()
	tokenCache := cache.NewTokenCache(rdb)
	orderCache := cache.NewOrderCache(rdb)
	mailer := email.NewEmailSender(cfg.SendGridKey, cfg.SenderEmail, cfg.FrontendURL)
	openaiClient := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	gateway := payment.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	xpRepo := repository.NewXPRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db, rdb)
	subRepo := repository.NewSubscriptionRepository(db)
	chatRepo := repository.NewChatRepository(db)
	examRepo := repository.NewExamRepository(db)

	if err := seedCatalog(db, catalogRepo, subRepo, log); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// usecases
	xpLedger := usecase.NewXPLedger(xpRepo)
	streakTracker := usecase.NewStreakTracker(usageRepo, profileRepo, clock, loc)
	progressTracker := usecase.NewProgressTracker(progressRepo, xpLedger, clock, loc, cfg.LessonXP, log)
	entitlements := usecase.NewEntitlementResolver(subRepo, progressRepo, catalogRepo, clock)
	gamification := usecase.NewGamificationService(
		progressTracker, streakTracker, xpLedger, entitlements,
		catalogRepo, progressRepo, profileRepo,
		clock, loc, cfg.WatchThresholdSeconds, cfg.DailyLoginXP, log,
	)
	authUseCase := usecase.NewAuthUseCase(
		userRepo, profileRepo, xpLedger,
		tokenManager, hasher, tokenCache, mailer,
		clock, loc, cfg.WelcomeXP, log,
	)
	chatService := usecase.NewChatService(chatRepo, xpLedger, openaiClient, cfg.ChatMessageCost, log)
	examService := usecase.NewExamService(
		examRepo, catalogRepo, progressTracker, entitlements, xpLedger,
		openaiClient, clock, loc, cfg.ExamXP, log,
	)
	subService := usecase.NewSubscriptionService(subRepo, gateway, orderCache, clock, log)

	// transport
	limiter := middleware.NewRateLimiter(rdb)
	router := handlers.NewRouter(
		handlers.NewAuthHandler(authUseCase),
		handlers.NewUserHandler(gamification, entitlements, xpLedger, profileRepo),
		handlers.NewContentHandler(catalogRepo, gamification, progressTracker, entitlements),
		handlers.NewExamHandler(examService),
		handlers.NewChatHandler(chatService),
		handlers.NewPaymentHandler(subService),
		limiter,
		tokenManager,
		strings.Split(cfg.AllowedOrigins, ","),
	)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server is running on %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
}

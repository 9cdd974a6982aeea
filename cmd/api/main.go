package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"teamzen/internal/config"
	"teamzen/internal/db"
	"teamzen/internal/email"
	"teamzen/internal/events"
	apihttp "teamzen/internal/http"
	"teamzen/internal/llm"
	"teamzen/internal/repository"
	"teamzen/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	teamRepo := repository.NewPgTeamRepository(pool)
	cycleRepo := repository.NewPgCycleRepository(pool)
	responseRepo := repository.NewPgResponseRepository(pool)

	var (
		tokenStore    service.RefreshTokenStore
		adviceCache   service.AdviceCache
		adviceLimiter service.AdviceRateLimiter
		notifier      events.Notifier = events.NoopNotifier{}
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			adviceCache = service.NewRedisAdviceCache(redisClient)
			adviceLimiter = service.NewRedisAdviceRateLimiter(redisClient, 10*time.Minute, 5)
			notifier = events.NewRedisNotifier(redisClient, logger)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	inviteSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			inviteSender = sender
		}
	}

	var adviceClient llm.Client
	if cfg.AdviceAPIKey != "" {
		adviceClient = llm.NewHTTPClient(cfg.AdviceBaseURL, cfg.AdviceAPIKey, cfg.AdviceModel, logger)
	} else {
		logger.Warn("advice api key not configured, using heuristic only")
	}

	userSvc := service.NewUserService(logger, userRepo)
	teamSvc := service.NewTeamService(logger, teamRepo, inviteSender)
	cycleSvc := service.NewCycleService(logger, teamRepo, cycleRepo, notifier)
	responseSvc := service.NewResponseService(logger, cycleRepo, responseRepo, notifier)
	metricsSvc := service.NewMetricsService(logger, teamRepo, cycleRepo, responseRepo)
	adviceSvc := service.NewAdviceService(logger, adviceClient, adviceCache, adviceLimiter, metricsSvc, teamRepo, cycleRepo, responseRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	teamHandler := apihttp.NewTeamHandler(logger, teamSvc)
	cycleHandler := apihttp.NewCycleHandler(logger, cycleSvc)
	responseHandler := apihttp.NewResponseHandler(logger, responseSvc, metricsSvc)
	adviceHandler := apihttp.NewAdviceHandler(logger, adviceSvc, metricsSvc)
	eventsHandler := apihttp.NewEventsHandler(logger, notifier)

	router := apihttp.NewRouter(logger, jwtSvc, authHandler, teamHandler, cycleHandler, responseHandler, adviceHandler, eventsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

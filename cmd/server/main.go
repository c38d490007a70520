package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yukikurage/points-api/internal/cache"
	"github.com/yukikurage/points-api/internal/clients/telegram"
	"github.com/yukikurage/points-api/internal/clients/twitter"
	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/constants"
	"github.com/yukikurage/points-api/internal/database"
	"github.com/yukikurage/points-api/internal/handlers"
	"github.com/yukikurage/points-api/internal/health"
	"github.com/yukikurage/points-api/internal/jobs"
	"github.com/yukikurage/points-api/internal/lock"
	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/notify"
	"github.com/yukikurage/points-api/internal/ratelimit"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/services"
	"github.com/yukikurage/points-api/internal/verify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	log, cleanup, err := logger.New(cfg.Log, cfg.Sentry, cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()
	slog.SetDefault(log)

	gin.SetMode(cfg.Server.GinMode)

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))

	// Redis backs sessions, the completion lock, the leaderboard cache and rate
	// limits. Without it the server falls back to cookie sessions and runs uncached.
	var (
		redisClient *redis.Client
		locker      services.Locker
		limiter     ratelimit.Limiter
		boardCache  *cache.Cache
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer redisClient.Close()

		locker = lock.New(redisClient, cfg.Verify.LockTTL, log)
		limiter = ratelimit.NewRedisLimiter(redisClient, log)
		boardCache = cache.New(redisClient, "points", cfg.Cache.LeaderboardTTL)
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	} else {
		log.Warn("redis is not configured, running without cache, lock and rate limits")
	}

	tg, err := telegram.New(cfg.Telegram, log)
	if err != nil {
		return err
	}
	if !cfg.Telegram.Offline && cfg.Telegram.Token != "" {
		checker.AddCheck("telegram", health.NewTelegramChecker(tg.Bot()))
	}

	flags := config.NewFlags(cfg.Features)
	config.Watch(v, flags, log)

	verifier := verify.NewDispatcher(cfg.Verify.Timeout, log).
		Register(models.PlatformTelegram, verify.NewTelegramVerifier(tg, cfg.Telegram.AnnouncementChatID, cfg.Telegram.CommunityChatID, log)).
		Register(models.PlatformTwitter, verify.NewTwitterVerifier(twitter.New(cfg.Twitter), cfg.Twitter.FollowAccount, flags, cfg.Verify.QuoteDelay, log))

	// Repositories
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	completions := repository.NewCompletionRepository(db)
	invites := repository.NewInviteRepository(db)
	notes := repository.NewNotificationRepository(db)
	content := repository.NewContentRepository(db)
	admins := repository.NewAdminRepository(db)

	notifier := notify.NewDispatcher(notes, cfg.Verify.Timeout, log)

	// Services
	authService := services.NewAuthService(users, admins, cfg.Telegram.BotUsername, log)
	taskService := services.NewTaskService(tasks)
	completionService := services.NewCompletionService(tasks, users, completions, verifier, notifier, locker, flags, log)
	referralService := services.NewReferralService(users, invites, notifier, cfg.Referral.RewardPoints, log)
	userService := services.NewUserService(users, completions, invites, authService, boardCache, log)
	broadcastService := services.NewBroadcastService(users, tg, cfg.Telegram.BroadcastConcurrency, log)

	if err := authService.EnsureAdmin(ctx, services.AdminCredentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	store, err := sessionStore(cfg)
	if err != nil {
		return err
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, log),
		Tasks:        handlers.NewTaskHandler(taskService),
		Completion:   handlers.NewCompletionHandler(completionService, referralService),
		Users:        handlers.NewUserHandler(userService),
		Content:      handlers.NewContentHandler(services.NewAnnouncementService(content, users, notifier, log), services.NewCarouselService(content)),
		Notification: handlers.NewNotificationHandler(services.NewNotificationService(notes, notifier)),
		Bot:          handlers.NewBotHandler(broadcastService),
		Health:       handlers.NewHealthHandler(checker),
	}, taskService, limiter, cfg.RateLimit, log)

	var scheduler jobs.Scheduler
	if cfg.Scheduler.Enabled {
		sweeps := jobs.NewSweeps(completions, tasks, broadcastService, cfg.Scheduler, log)
		scheduler, err = jobs.NewScheduler(sweeps, cfg.Scheduler, log)
		if err != nil {
			return err
		}
		if err := scheduler.RegisterTasks(); err != nil {
			return err
		}
		scheduler.Run()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", srv.Addr), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.Any("error", err))
	}
	if scheduler != nil {
		scheduler.Shutdown(shutdownCtx)
	}
	notifier.Wait()

	log.Info("server stopped")
	return nil
}

func sessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.Redis.Addr == "" {
		return cookie.NewStore([]byte(cfg.Session.Secret)), nil
	}

	store, err := redisStore.NewStore(
		cfg.Redis.PoolSize,
		"tcp",
		cfg.Redis.Addr,
		cfg.Redis.Password,
		[]byte(cfg.Session.Secret),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis session store: %w", err)
	}
	return store, nil
}

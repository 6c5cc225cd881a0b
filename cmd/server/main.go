// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/sweeper/internal/auth"
	"github.com/jason-s-yu/sweeper/internal/cache"
	"github.com/jason-s-yu/sweeper/internal/config"
	"github.com/jason-s-yu/sweeper/internal/database"
	"github.com/jason-s-yu/sweeper/internal/gateway"
	"github.com/jason-s-yu/sweeper/internal/handlers"
	"github.com/jason-s-yu/sweeper/internal/middleware"
	"github.com/jason-s-yu/sweeper/internal/room"
	"github.com/jason-s-yu/sweeper/internal/session"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ttl, err := auth.ParseTTL(cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("invalid TOKEN_EXPIRE_TIME: %v", err)
	}
	if err := auth.Init(ttl); err != nil {
		logger.Fatalf("failed to initialize auth keys: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Accounts and leaderboards need Postgres; rooms work without it.
	var (
		users   handlers.UserStore
		history handlers.LeaderboardStore
	)
	if cfg.DatabaseEnabled {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer database.Close()
		users, history = database.Users{}, database.History{}
	} else {
		logger.Warn("DATABASE_URL not set; accounts and leaderboards are disabled")
	}

	var recorder gateway.MatchRecorder
	if cfg.RedisEnabled {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Warnf("redis unavailable, match results will not be recorded: %v", err)
		} else {
			defer rdb.Close()
			recorder = cache.NewRecordQueue(rdb, cfg.QueueName)
		}
	}

	rooms := room.NewRegistry(logger)
	sessions := session.NewDirectory(logger)
	gw := gateway.New(logger, rooms, sessions, recorder, cfg.OutboxSize)

	shutdown := make(chan struct{})
	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HealthHandler)

	// rooms
	mux.Handle("/api/rooms/list", logged(handlers.ListRoomsHandler(rooms)))
	mux.Handle("/ws", handlers.RoomWSHandler(logger, gw, handlers.WSOptions{
		OriginPatterns: cfg.AllowedOrigins,
		ReadLimit:      cfg.ReadLimit,
		Shutdown:       shutdown,
	}))

	// leaderboard
	mux.Handle("/api/leaderboard/global", logged(handlers.LeaderboardHandler(logger, history)))
	mux.Handle("/api/leaderboard/submit", logged(handlers.SubmitScoreHandler(logger, history)))

	// user endpoints
	mux.Handle("/user/create", logged(handlers.CreateUserHandler(logger, users)))
	mux.Handle("/user/login", logged(handlers.LoginHandler(logger, users, ttl)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	close(shutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	logger.Infof("closed %d open rooms", rooms.Close())
	gw.Wait()
}

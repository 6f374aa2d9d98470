package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskmirror/api"
	"taskmirror/config"
	"taskmirror/mirror"
	"taskmirror/remote"
	"taskmirror/session"
)

func main() {
	cfg, err := config.Load(os.Getenv("TASKMIRROR_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	client := remote.New(cfg, logger)
	m := mirror.New(client)

	var subscribe session.SubscribeFunc
	if cfg.EnableRealtime {
		if cfg.RealtimeAddr == "" {
			logger.Warn("realtime enabled but no realtime address configured, falling back to reload-after-write")
			cfg.EnableRealtime = false
		} else {
			rc := redis.NewClient(&redis.Options{Addr: cfg.RealtimeAddr})
			feed := remote.NewFeed(rc, cfg.RealtimeChannel, logger)
			subscribe = func(ctx context.Context, onProjectsChanged, onTasksChanged func()) (session.Canceler, error) {
				return feed.Subscribe(ctx, onProjectsChanged, onTasksChanged)
			}
		}
	}

	sess := session.New(cfg, client, m, subscribe, session.LogSink{Logger: logger}, logger)
	if err := sess.Start(context.Background()); err != nil {
		// The host surface stays up so the UI can report the problem and
		// retry through /api/refresh once configuration is fixed.
		logger.Errorf("session start: %v", err)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	api.Register(e, sess, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		sess.Close()
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}

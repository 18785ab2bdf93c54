package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/cache"
	"github.com/legaltech/webgate/internal/config"
	"github.com/legaltech/webgate/internal/db"
	"github.com/legaltech/webgate/internal/handler"
	"github.com/legaltech/webgate/internal/router"
	"github.com/legaltech/webgate/internal/session"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	log.Println("audit store migrations applied")

	client := backend.New(cfg.BackendBaseURL, time.Duration(cfg.BackendTimeoutSecs)*time.Second)

	// The cache is advisory; with no Redis configured every layer falls
	// through to the backend directly.
	var userCache *cache.UserCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		userCache = cache.New(rdb, time.Duration(cfg.CacheTTLSecs)*time.Second)
		log.Printf("user cache enabled (redis=%s ttl=%ds)", cfg.RedisAddr, cfg.CacheTTLSecs)
	}
	fetchUser := cache.Wrap(userCache, client.FetchMe)

	sessions := session.NewManager(session.TokenFetchFunc(fetchUser))
	if cfg.SessionIdleMins > 0 {
		sessions.Idle = time.Duration(cfg.SessionIdleMins) * time.Minute
	}

	pages, err := handler.NewPages()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	h := router.New(cfg, database, client, sessions, fetchUser, userCache, pages, version)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Root context cancelled on shutdown, propagates to the janitor.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	go sessions.StartJanitor(rootCtx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("webgate listening on :%s (backend=%s driver=%s)", cfg.Port, cfg.BackendBaseURL, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")
	rootCancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("stopped")
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/MaicolCorrea/Chat-Realtime/internal/api"
	"github.com/MaicolCorrea/Chat-Realtime/internal/chat"
	"github.com/MaicolCorrea/Chat-Realtime/internal/config"
	"github.com/MaicolCorrea/Chat-Realtime/internal/events"
	"github.com/MaicolCorrea/Chat-Realtime/internal/hub"
	"github.com/MaicolCorrea/Chat-Realtime/internal/logger"
	"github.com/MaicolCorrea/Chat-Realtime/internal/presence"
	"github.com/MaicolCorrea/Chat-Realtime/internal/store"
	"github.com/MaicolCorrea/Chat-Realtime/internal/ws"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	// a store that failed to open keeps the process serving; every operation
	// just fails and gets logged
	st := store.Open(cfg.Store.Path, logg)
	st.Init()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = pub.Close() }()

	h := hub.New()
	tracker := presence.NewTracker()
	router := chat.NewRouter(st, tracker, h, pub, cfg.Chat.HistoryLimit, logg)
	wsh := ws.NewHandler(h, router, logg)
	app := api.NewServer(cfg, wsh, rdb)

	errs := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logg.Infow("starting chat service", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		logg.Fatalw("server error", "error", e)
	case s := <-sig:
		logg.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		logg.Warnw("shutdown error", "error", err)
	}
	logg.Info("shutting down")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pizzadrive/orderbot/internal/archive"
	"github.com/pizzadrive/orderbot/internal/auth"
	"github.com/pizzadrive/orderbot/internal/cart"
	"github.com/pizzadrive/orderbot/internal/commerce"
	"github.com/pizzadrive/orderbot/internal/config"
	"github.com/pizzadrive/orderbot/internal/events"
	"github.com/pizzadrive/orderbot/internal/flow"
	"github.com/pizzadrive/orderbot/internal/geocode"
	"github.com/pizzadrive/orderbot/internal/httpx"
	kafkax "github.com/pizzadrive/orderbot/internal/kafka"
	"github.com/pizzadrive/orderbot/internal/postgres"
	"github.com/pizzadrive/orderbot/internal/redisx"
	"github.com/pizzadrive/orderbot/internal/reminder"
	"github.com/pizzadrive/orderbot/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (session store)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Commerce backend behind the token guard
	guard := auth.NewGuard(commerce.TokenSource(cfg.CommerceBaseURL, cfg.CommerceClientID, cfg.CommerceClientSecret, nil))
	backend := commerce.NewClient(cfg.CommerceBaseURL, guard)

	// Kafka producers for order lifecycle events
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPaid, 1024)
	pPaid.Start(ctx)

	engine := &flow.Engine{
		Sessions: redisx.NewSessionStore(rdb),
		Catalog:  backend,
		Carts:    cart.New(backend),
		Geocoder: geocode.New(cfg.GeocoderURL, cfg.GeocoderKey),
		Publisher: &events.KafkaPublisher{
			Placed:  pPlaced,
			Paid:    pPaid,
			Service: cfg.ServiceName,
		},
		LocationsFlow: cfg.LocationsFlow,
		ReminderDelay: cfg.ReminderDelay,
	}

	router := httpx.NewRouter(rdb)

	// Order archive is optional
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer db.Close()
		repo := &archive.Repo{DB: db}
		engine.Archiver = repo
		sh := &httpx.StatsHandler{Archive: repo}
		sh.Register(router)
	}

	var bot *telegram.Bot
	sched := reminder.NewScheduler(reminder.NotifierFunc(func(sessionID string) {
		bot.NotifyDelay(sessionID)
	}))
	defer sched.Stop()
	engine.Reminders = sched

	bot, err := telegram.New(cfg.TelegramToken, engine, cfg.PaymentProviderToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	log.Printf("authorized as @%s", bot.API.Self.UserName)
	go bot.Run(ctx)

	// Ops endpoints
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close()
	pPaid.Close()
	cancel()
	pPlaced.WaitClosed()
	pPaid.WaitClosed()
}

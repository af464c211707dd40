package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/pizzadrive/orderbot/internal/config"
	"github.com/pizzadrive/orderbot/internal/dispatch"
	"github.com/pizzadrive/orderbot/internal/events"
	kafkax "github.com/pizzadrive/orderbot/internal/kafka"
	"github.com/pizzadrive/orderbot/internal/redisx"
	"github.com/pizzadrive/orderbot/internal/telegram"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	chatID, err := strconv.ParseInt(cfg.DispatcherChatID, 10, 64)
	if err != nil {
		log.Fatalf("DISPATCHER_CHAT_ID: %v", err)
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	svc := &dispatch.Service{
		Notifier: &telegram.DispatcherNotifier{API: api, ChatID: chatID},
		Dedup:    &redisx.Deduper{RDB: rdb, Service: cfg.ServiceName + "-dispatch"},
	}

	group := getenv("DISPATCH_GROUP", "dispatch-svc")
	workers := mustAtoi(os.Getenv("DISPATCH_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderPlaced, workers)

	go func() {
		log.Printf("dispatch consumer started: group=%s topic=%s workers=%d", group, events.TopicOrderPlaced, workers)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

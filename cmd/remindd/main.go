package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvolkov/remindd/internal/bot"
	"github.com/dvolkov/remindd/internal/config"
	"github.com/dvolkov/remindd/internal/database"
	"github.com/dvolkov/remindd/internal/engine"
	"github.com/dvolkov/remindd/internal/notify"
	"github.com/dvolkov/remindd/internal/repository"
	"github.com/dvolkov/remindd/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}
	if cfg.TelegramChatID == 0 {
		log.Fatal("TELEGRAM_CHAT_ID is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	notifier := notify.NewTelegram(api, cfg.TelegramChatID)
	clock := engine.SystemClock{}

	regenerator := engine.NewRegenerator(taskRepo, scheduleRepo, ruleRepo, reminderRepo, clock, cfg.HorizonDays)
	dispatcher := engine.NewDispatcher(taskRepo, reminderRepo, notifier, clock, cfg.DispatchLookback, cfg.RepeatGrace)

	sched := scheduler.New(regenerator, dispatcher, clock, cfg.WorkHoursStart, cfg.WorkHoursEnd)
	go sched.Start(ctx)

	b := bot.New(api, taskRepo, reminderRepo, sched.Notify)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting callback bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily_survey_bot/internal/app"
	"daily_survey_bot/internal/infra/config"
	idb "daily_survey_bot/internal/infra/database"
	"daily_survey_bot/internal/infra/logger"
	"daily_survey_bot/internal/infra/scheduler"
	itg "daily_survey_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
	}).Info("Configuration loaded")

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.Migrate(db); err != nil {
		log.Fatalf("FATAL: Could not migrate database: %v", err)
	}
	log.Info("Database ready")

	// Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	surveyRepo := idb.NewPostgresSurveyRepository(db)

	// Services
	userService := app.NewUserService(userRepo, cfg.AdminTelegramID, log.WithField("component", "user_service"))
	surveyService := app.NewSurveyService(userRepo, surveyRepo, cfg.AdminTelegramID, cfg.ReportChatID,
		log.WithField("component", "survey_service"))

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	tgClient := itg.NewTelebotAdapter(bot)

	// Scheduler
	registry, err := scheduler.NewJobRegistry()
	if err != nil {
		log.Fatalf("FATAL: Could not create job registry: %v", err)
	}
	dispatchScheduler := scheduler.NewDispatchScheduler(
		registry,
		userRepo,
		surveyRepo,
		tgClient,
		log.WithField("component", "scheduler"),
		cfg.CronSpecResync,
		cfg.CronSpecOverdueScan,
		cfg.OverdueCutoff,
		surveyService.ReportTargets(),
	)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start dispatch scheduler: %v", err)
	}

	// Handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions := itg.NewSessionManager(cfg.SessionTTL)
	itg.RegisterCommandHandlers(ctx, bot, userService, surveyService, log.WithField("component", "commands"))
	itg.RegisterSurveyHandlers(ctx, bot, surveyService, sessions, tgClient, log.WithField("component", "survey"))
	log.Info("Handlers registered, starting bot")

	go bot.Start()

	// Graceful shutdown: stop the periodic triggers before the DB pool goes.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	bot.Stop()
	dispatchScheduler.Stop()
	log.Info("Shutdown complete")
}

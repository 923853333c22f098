package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"container_bot/internal/app"
	"container_bot/internal/infra/config"
	idb "container_bot/internal/infra/database"
	"container_bot/internal/infra/logger"
	"container_bot/internal/infra/scheduler"
	"container_bot/internal/infra/sheets"
	"container_bot/internal/infra/spreadsheet"
	"container_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Container Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"operators":   len(cfg.AdminTelegramIDs),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.Migrate(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database schema")
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	chatRepo := idb.NewPostgresChatRepository(db)
	messageRepo := idb.NewPostgresMessageRepository(db)
	broadcastRepo := idb.NewPostgresBroadcastRepository(db)

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c telebot.Context) { // Global error handler
			logCtx := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				logCtx = logCtx.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			logCtx.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	client := telegram.NewTelebotAdapter(bot)
	baseLogger := logrus.NewEntry(logger.Log)

	fanout := app.NewFanoutExecutor(client, cfg.FanoutPacing, baseLogger)

	var exporter app.OfferExporter
	if cfg.SheetsEnabled() {
		e, err := sheets.NewExporter(ctx, sheets.Config{
			CredentialsJSON: cfg.GoogleSheetsCredentials,
			SpreadsheetID:   cfg.GoogleSheetsSpreadsheetID,
			Range:           cfg.GoogleSheetsRange,
		}, baseLogger)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create sheets exporter")
		}
		exporter = e
	} else {
		mainLogger.Warn("Google Sheets export is not configured; uploaded offers will not be exported")
	}

	dispatcher := app.NewDispatcher(app.DispatcherDeps{
		OperatorIDs:     cfg.AdminTelegramIDs,
		Dialogs:         app.NewDialogService(app.NewInMemoryDialogStore(), broadcastRepo, client, baseLogger),
		Broadcasts:      app.NewBroadcastService(app.NewInMemorySessionStore(), chatRepo, userRepo, fanout, client, baseLogger),
		Statistics:      app.NewStatisticsService(chatRepo, userRepo, client, baseLogger),
		Registration:    app.NewRegistrationService(userRepo, chatRepo, messageRepo, baseLogger),
		Imports:         app.NewImportService(map[string]app.OfferParser{".xlsx": spreadsheet.NewXLSXParser()}, exporter, client, baseLogger),
		Client:          client,
		HelpExampleFile: cfg.HelpExampleFile,
	}, baseLogger)

	broadcaster := app.NewScheduledBroadcaster(broadcastRepo, chatRepo, userRepo, fanout, app.ScheduleTargets{
		DailyChatID:        cfg.DailyChatID,
		DailyChannelChatID: cfg.DailyChannelChatID,
		WeeklyChatID:       cfg.WeeklyChatID,
		DailyChatLinks:     toLinks(cfg.DailyChatLinks),
		DailyChannelLinks:  toLinks(cfg.DailyChannelLinks),
	}, baseLogger)

	broadcastScheduler := scheduler.NewBroadcastScheduler(broadcaster, baseLogger, cfg.CronSpecDaily, cfg.CronSpecWeekly)
	if err := broadcastScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start broadcast scheduler")
	}

	// Register Handlers
	telegram.RegisterUpdateHandlers(ctx, bot, dispatcher, logger.Component("telegram"))
	telegram.PublishCommandMenus(bot, cfg.AdminTelegramIDs, logger.Component("telegram"))

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	broadcastScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

func toLinks(links config.Links) []app.Link {
	out := make([]app.Link, 0, len(links))
	for _, l := range links {
		out = append(out, app.Link{Title: l.Title, URL: l.URL})
	}
	return out
}

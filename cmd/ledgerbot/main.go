package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/config"
	"ledgerbot/internal/core"
	apphttp "ledgerbot/internal/http"
	"ledgerbot/internal/log"
	"ledgerbot/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting ledgerbot")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	result := cli.InitBackend(ctx, logger, cfg)

	api, err := telegram.NewBot(telegram.Options{
		Token: cfg.TelegramToken,
		Proxy: telegram.ProxyConfig{
			Server:   cfg.ProxyServer,
			User:     cfg.ProxyUser,
			Password: cfg.ProxyPassword,
		},
	}, logger)
	if err != nil {
		logger.Error("Failed to connect to Telegram", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	loc := cfg.Location()
	runner, err := bot.NewRunner(bot.RunnerOptions{
		Ledger:  result.Service,
		Catalog: core.NewCatalog(cfg.Modes, cfg.Accounts),
		Sender:  telegram.NewSender(api, logger),
		Clock:   func() time.Time { return time.Now().In(loc) },
		Logger:  logger,
		Shards:  cfg.DispatchWorkers,
	})
	if err != nil {
		logger.Error("Failed to create bot runner", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	opts := apphttp.Options{
		Addr:              ":" + cfg.Port,
		Ready:             apphttp.ReadyFunc(result.Ready),
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Logger:            logger,
	}
	if cfg.BotTransport == config.TransportWebhook {
		u, _ := url.Parse(cfg.WebhookURL) // checked by Validate
		opts.WebhookPath = u.Path
		if opts.WebhookPath == "" {
			opts.WebhookPath = "/"
		}
		opts.Webhook = telegram.WebhookHandler(api, runner.Submit, logger)
	}
	srv := apphttp.NewServer(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	exitCode := 0
	switch cfg.BotTransport {
	case config.TransportWebhook:
		if err := telegram.SetWebhook(api, cfg.WebhookURL); err != nil {
			logger.Error("Failed to register webhook", log.FieldError, err)
			exitCode = 1
			stop()
		} else {
			logger.Info("Webhook registered", "url", cfg.WebhookURL)
		}
	default:
		g.Go(func() error { return telegram.Poll(gctx, api, runner.Submit, logger) })
	}

	logger.Info("Bot is running",
		"transport", cfg.BotTransport,
		log.FieldBackend, cfg.DataBackend,
		"port", cfg.Port,
		"shards", runner.Shards())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Bot stopped with error", log.FieldError, err)
		exitCode = 1
	}

	cli.RunCleanup(logger, 30*time.Second, result.Cleanup)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

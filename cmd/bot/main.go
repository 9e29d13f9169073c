package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mixma5ter/binance-trading-bot/internal/config"
	"github.com/mixma5ter/binance-trading-bot/internal/exchange"
	"github.com/mixma5ter/binance-trading-bot/internal/logging"
	"github.com/mixma5ter/binance-trading-bot/internal/notifier"
	"github.com/mixma5ter/binance-trading-bot/internal/trader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\nThe program was stopped\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogFile)
	defer log.Sync()

	tg, err := notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.NotificationRetries, cfg.NotificationDelay, log)
	if err != nil {
		log.Fatalw("telegram setup failed", "error", err)
	}

	var ex exchange.Exchange
	switch cfg.Exchange {
	case "wallex":
		ex = exchange.NewWallexExchange(cfg.WallexAPIKey, log)
	default:
		ex, err = exchange.NewBinanceExchange(cfg.BinanceAPIKey, cfg.BinanceSecretKey, cfg.BinanceMarketType, log)
		if err != nil {
			log.Fatalw("exchange setup failed", "error", err)
		}
	}

	if err := ex.ValidateCredentials(); err != nil {
		// Reported to the operator before halting, like any fatal
		// startup failure once the notification channel is up.
		if nerr := tg.SendWithRetry(fmt.Sprintf("%v. The program was stopped", err)); nerr != nil {
			log.Errorw("startup failure notification failed", "error", nerr)
		}
		log.Fatalw("credential validation failed", "exchange", ex.Name(), "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, shutting down", "signal", sig)
		cancel()
	}()

	t := trader.New(cfg, ex, tg, log)
	if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalw("trading loop terminated", "error", err)
	}
	log.Infow("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chama-ledger/internal/adapter/notifier"
	"chama-ledger/internal/app"
	"chama-ledger/internal/config"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/infrastructure/logger"
	"chama-ledger/internal/usecase/reminder"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("chama-ledger-reminder-worker", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	broker, err := app.OpenBroker(cfg, log)
	if err != nil {
		log.Fatal("open amqp", zap.Error(err))
	}

	// Without a broker, due events are recorded in-process.
	var uc *reminder.Usecase
	var events loan.Notifier
	if broker != nil {
		defer broker.Close()
		events = notifier.NewJSON(broker)
	} else {
		log.Info("AMQP_URL not set, recording reminders in-process")
		events = notifier.NewJSON(notifier.PublisherFunc(func(ctx context.Context, _ string, body []byte) error {
			return uc.HandleEvent(ctx, body)
		}))
	}
	uc = reminder.NewUsecase(store.Loans, store.Notifications, events, log)

	g, gctx := errgroup.WithContext(ctx)
	if broker != nil {
		g.Go(func() error {
			err := broker.Consume(gctx, uc.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		scan := func() {
			if _, err := uc.ScanDue(gctx, time.Now().UTC(), cfg.ReminderWindow()); err != nil {
				log.Error("due scan failed", zap.Error(err))
			}
		}
		scan()
		ticker := time.NewTicker(cfg.ReminderInterval())
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				scan()
			}
		}
	})

	log.Info("reminder worker started",
		zap.Duration("interval", cfg.ReminderInterval()),
		zap.Duration("window", cfg.ReminderWindow()),
		zap.Bool("broker", broker != nil))
	if err := g.Wait(); err != nil {
		log.Error("reminder worker stopped", zap.Error(err))
		return
	}
	log.Info("reminder worker stopped")
}

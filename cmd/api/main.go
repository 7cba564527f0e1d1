package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadp "chama-ledger/internal/adapter/http"
	"chama-ledger/internal/adapter/middleware"
	"chama-ledger/internal/app"
	"chama-ledger/internal/config"
	"chama-ledger/internal/infrastructure/cache"
	"chama-ledger/internal/infrastructure/logger"
	approvaluc "chama-ledger/internal/usecase/approval"
	loanuc "chama-ledger/internal/usecase/loan"
	"chama-ledger/internal/usecase/reminder"
	"chama-ledger/internal/usecase/report"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("chama-ledger-api", cfg.LogLevel)
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

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()
	reports := cache.NewByteCache(rdb, "chama:report:", cfg.ReportCacheTTL())

	broker, err := app.OpenBroker(cfg, log)
	if err != nil {
		log.Fatal("open amqp", zap.Error(err))
	}
	if broker != nil {
		defer broker.Close()
	} else {
		log.Info("AMQP_URL not set, ledger events go to the log")
	}
	events := app.Notifier(broker, reports, log)

	loans := loanuc.NewUsecase(store.UoW, store.Loans, events,
		loanuc.WithLogger(log),
		loanuc.WithRetry(cfg.ConflictRetries, cfg.ConflictBackoff()))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"store": store.Ping,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:         httpadp.NewLoanHandler(loans),
		Approvals:     httpadp.NewApprovalHandler(approvaluc.NewUsecase(loans, store.Approvals)),
		Reports:       httpadp.NewReportHandler(report.NewUsecase(store.Loans, reports, log)),
		Notifications: httpadp.NewNotificationHandler(reminder.NewUsecase(store.Loans, store.Notifications, events, log)),
	}, middleware.Idempotency(rdb, cfg.IdempotencyTTL(), log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr), zap.String("store", store.Backend))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

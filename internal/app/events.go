package app

import (
	"chama-ledger/internal/adapter/notifier"
	"chama-ledger/internal/config"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/infrastructure/messaging"

	"go.uber.org/zap"
)

// OpenBroker dials RabbitMQ when AMQP_URL is set. A nil client means events
// go to the log only.
func OpenBroker(cfg *config.Config, log *zap.Logger) (*messaging.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	return messaging.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
}

// Notifier picks the event sink and optionally attaches cache invalidation.
func Notifier(broker *messaging.Client, cache notifier.Invalidator, log *zap.Logger) loan.Notifier {
	var sink loan.Notifier = notifier.NewLog(log)
	if broker != nil {
		sink = notifier.NewJSON(broker)
	}
	if cache == nil {
		return sink
	}
	return notifier.Multi{sink, notifier.NewCacheBuster(cache)}
}

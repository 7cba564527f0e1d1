// Package app assembles the adapters selected by configuration. Both
// binaries build their object graph through it.
package app

import (
	"context"
	"fmt"

	mongorepo "chama-ledger/internal/adapter/repository/mongo"
	mysqlrepo "chama-ledger/internal/adapter/repository/mysql"
	"chama-ledger/internal/config"
	"chama-ledger/internal/domain/approval"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/notification"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/infrastructure/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the persistence side of the ledger for one backend.
type Store struct {
	Backend       string
	UoW           uow.UnitOfWork
	Loans         loan.Repository
	Approvals     approval.Repository
	Notifications notification.Repository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// OpenStore connects to the configured backend and brings its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		if err := db.MigrateMySQL(cfg.MySQLDSN()); err != nil {
			return nil, fmt.Errorf("migrate mysql: %w", err)
		}
		gdb, err := db.OpenGorm(cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		log.Info("store ready", zap.String("backend", cfg.StoreBackend), zap.String("host", cfg.MySQLHost))
		return gormStore(cfg.StoreBackend, gdb)

	case config.BackendSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("store ready", zap.String("backend", cfg.StoreBackend), zap.String("path", cfg.SQLitePath))
		return gormStore(cfg.StoreBackend, gdb)

	case config.BackendMongo:
		client, mdb, err := db.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := mongorepo.EnsureIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("store ready", zap.String("backend", cfg.StoreBackend), zap.String("db", cfg.MongoDB))
		return &Store{
			Backend:       cfg.StoreBackend,
			UoW:           mongorepo.NewUoW(mdb),
			Loans:         mongorepo.NewLoanRepository(mdb),
			Approvals:     mongorepo.NewApprovalRepository(mdb),
			Notifications: mongorepo.NewNotificationRepository(mdb),
			ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:         client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func gormStore(backend string, gdb *gorm.DB) (*Store, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &Store{
		Backend:       backend,
		UoW:           mysqlrepo.NewGormUoW(gdb),
		Loans:         mysqlrepo.NewLoanRepository(gdb),
		Approvals:     mysqlrepo.NewApprovalRepository(gdb),
		Notifications: mysqlrepo.NewNotificationRepository(gdb),
		ping:          sqlDB.PingContext,
		close:         func(context.Context) error { return sqlDB.Close() },
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"licensepanel/config"
	"licensepanel/database"
	"licensepanel/handlers"
	"licensepanel/logger"
	"licensepanel/memstore"
	"licensepanel/mongostore"
	"licensepanel/redisquota"
	"licensepanel/services"
)

// backend는 설정에 따라 연결된 저장소와 헬스체크, 종료 함수를 묶는다.
type backend struct {
	stores       services.Stores
	quotaBackend string
	checks       map[string]handlers.HealthCheck
	closers      []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackend connects the record store and, when configured, the Redis
// quota counter.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{checks: map[string]handlers.HealthCheck{}}

	switch cfg.Store.Backend {
	case config.StoreSQLite, config.StoreMySQL:
		db, err := database.Initialize(ctx, cfg.Store.Backend, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		dialect := services.DialectSQLite
		if cfg.Store.Backend == config.StoreMySQL {
			dialect = services.DialectMySQL
		}
		b.stores = services.NewSQLStores(services.NewSQLExecutor(db), dialect)
		b.checks["store"] = db.PingContext
		b.closers = append(b.closers, func() error { return database.Close(db) })

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Store.Database)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		b.stores = mongostore.New(db)
		b.checks["store"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		b.closers = append(b.closers, func() error { return client.Disconnect(context.Background()) })
		logger.Info("MongoDB store initialized (database %s)", cfg.Store.Database)

	case config.StoreMemory:
		b.stores = memstore.New().Stores()
		logger.Warn("Using in-memory store, data is lost on restart")

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	b.quotaBackend = cfg.Store.Backend

	if cfg.Quota.Backend == config.QuotaRedis {
		client, err := redisquota.Connect(ctx, cfg.Quota.RedisAddr, cfg.Quota.RedisPassword, cfg.Quota.RedisDB)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.stores.Quotas = redisquota.New(client, cfg.Quota.KeyPrefix)
		b.quotaBackend = config.QuotaRedis
		b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.closers = append(b.closers, client.Close)
		logger.Info("Redis quota store connected (%s)", cfg.Quota.RedisAddr)
	}

	return b, nil
}

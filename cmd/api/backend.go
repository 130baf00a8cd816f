package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/application/readcache"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	cachestore "github.com/jhoicas/retail-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// backend repositorios del almacén de registro elegido por STORE_DRIVER.
type backend struct {
	branches     repository.BranchRepository
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	movements    repository.StockMovementRepository
	expenses     repository.ExpenseRepository
	txRunner     ports.TxRunner
	ping         func(ctx context.Context) error
	close        func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		s := memory.NewStore()
		if cfg.Store.SeedBranchesFile != "" {
			cat, err := catalog.LoadFiles(cfg.Store.SeedBranchesFile, cfg.Store.SeedProductsFile, cfg.Store.SeedCharset)
			if err != nil {
				return nil, fmt.Errorf("sembrar almacén en memoria: %w", err)
			}
			for _, b := range cat.Branches {
				s.AddBranch(b)
			}
			for _, p := range cat.Products {
				s.AddProduct(p)
			}
			log.Info().Int("branches", len(cat.Branches)).Int("products", len(cat.Products)).Msg("almacén en memoria sembrado")
		}
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &backend{
			branches:     s.Branches(),
			products:     s.Products(),
			transactions: s.Transactions(),
			movements:    s.Movements(),
			expenses:     s.Expenses(),
			txRunner:     s,
			ping:         func(context.Context) error { return nil },
			close:        func() {},
		}, nil

	case config.StorePostgres:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &backend{
			branches:     postgres.NewBranchRepository(pool),
			products:     postgres.NewProductRepository(pool),
			transactions: postgres.NewTransactionRepository(pool),
			movements:    postgres.NewStockMovementRepository(pool),
			expenses:     postgres.NewExpenseRepository(pool),
			txRunner:     postgres.NewTxRunner(pool),
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("store driver %q", cfg.Store.Driver)
}

// openCacheStore construye el almacén de la caché de lectura según CACHE_DRIVER.
func openCacheStore(ctx context.Context, cfg *config.Config) (readcache.Store, func() error, error) {
	if cfg.Cache.Driver != config.CacheRedis {
		return cachestore.NewMemoryStore(), func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := cachestore.NewRedisStore(client, cfg.Redis.Prefix)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	return store, client.Close, nil
}

func ttlPolicy(cfg config.CacheConfig) readcache.TTLPolicy {
	return readcache.TTLPolicy{
		Default: cfg.TTL,
		ByClass: map[string]time.Duration{
			readcache.ClassStock:  cfg.StockTTL,
			readcache.ClassReport: cfg.ReportTTL,
		},
	}
}

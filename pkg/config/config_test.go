package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain"
)

func validConfig() *Config {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	return fromViper(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Ledger.GlobalHistoryLimit)
	assert.Equal(t, 10, cfg.Ledger.ProductHistoryLimit)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "postgres://postgres:@localhost:5432/retail_ledger?sslmode=disable", cfg.DB.ConnectionString())
	require.NoError(t, cfg.Validate())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_STOCK_TTL_SECONDS", "5")
	t.Setenv("LEDGER_PRODUCT_HISTORY_LIMIT", "20")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Second, cfg.Cache.StockTTL)
	assert.Equal(t, 20, cfg.Ledger.ProductHistoryLimit)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
	require.NoError(t, cfg.Validate())
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss:w/rd", DBName: "d", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@h:5432/d?sslmode=require", c.DSN())
}

func TestValidate_Errores(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"sin secreto", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"store desconocido", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"cache desconocida", func(c *Config) { c.Cache.Driver = "memcached" }, "CACHE_DRIVER"},
		{"redis sin addr", func(c *Config) { c.Cache.Driver = CacheRedis; c.Redis.Addr = "" }, "REDIS_ADDR"},
		{"semilla incompleta", func(c *Config) { c.Store.SeedBranchesFile = "b.csv" }, "STORE_SEED_BRANCHES"},
		{"ttl cero", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL_SECONDS"},
		{"limite cero", func(c *Config) { c.Ledger.ProductHistoryLimit = 0 }, "LEDGER_GLOBAL_HISTORY_LIMIT"},
		{"maximo menor", func(c *Config) { c.Ledger.MaxHistoryLimit = 20 }, "LEDGER_MAX_HISTORY_LIMIT"},
		{"conexiones", func(c *Config) { c.DB.MinConns = 50 }, "DB_MAX_CONNS"},
		{"muestreo", func(c *Config) { c.Tracing.SampleRatio = 2 }, "TRACING_SAMPLE_RATIO"},
		{"zona horaria", func(c *Config) { c.Report.Timezone = "Marte/Olympus" }, "REPORT_TIMEZONE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			var ce *domain.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.key, ce.Key)
		})
	}
}

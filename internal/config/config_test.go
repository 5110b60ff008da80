package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "USD", cfg.Ledger.DefaultCurrency)
	assert.Equal(t, 3, cfg.Ledger.MaxConflictRetries)
	assert.Equal(t, 30*time.Second, cfg.Ledger.BalanceCacheTTL)
	assert.Equal(t, int64(100), cfg.Ledger.TokenValues["loyalty"])
	assert.Len(t, cfg.Ledger.TokenValues, 4)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_MAX_OPEN_CONNS", "12")
	t.Setenv("LEDGER_BALANCE_CACHE_TTL", "2m")
	t.Setenv("TOKEN_VALUE_FANZCOIN", "250")
	t.Setenv("LEDGER_MAX_CONFLICT_RETRIES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12, cfg.DB.MaxOpenConns)
	assert.Equal(t, 2*time.Minute, cfg.Ledger.BalanceCacheTTL)
	assert.Equal(t, int64(250), cfg.Ledger.TokenValues["fanzcoin"])
	assert.Equal(t, 3, cfg.Ledger.MaxConflictRetries)
}

func TestDBConfig_DSN(t *testing.T) {
	dsn := DBConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", Name: "ledger", SSLMode: "require",
	}.DSN()

	assert.Equal(t, "host=db user=u password=p dbname=ledger port=5433 sslmode=require TimeZone=UTC", dsn)
}

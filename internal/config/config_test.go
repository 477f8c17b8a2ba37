package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/complexity"
)

// unset clears keys for the duration of the test and restores them after.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.7, cfg.Bank.Probability)
	assert.Equal(t, 10, cfg.Quiz.DailyGoal)
	assert.Equal(t, complexity.ModeAdaptive, cfg.Quiz.Mode)
	assert.Equal(t, GeneratorAuto, cfg.Quiz.Generator)
	assert.Equal(t, 3, cfg.Bank.Retry.MaxAttempts)
	assert.Empty(t, cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ADAPTIQ_DB", "/tmp/x.db")
	t.Setenv("ADAPTIQ_REDIS_ADDR", "localhost:6379")
	t.Setenv("ADAPTIQ_REDIS_TTL", "90s")
	t.Setenv("ADAPTIQ_BANK_PROBABILITY", "0.25")
	t.Setenv("ADAPTIQ_BANK_MAX_ATTEMPTS", "5")
	t.Setenv("ADAPTIQ_DAILY_GOAL", "15")
	t.Setenv("ADAPTIQ_GRADE", "4")
	t.Setenv("ADAPTIQ_MODE", "random")
	t.Setenv("ADAPTIQ_SEED", "42")
	t.Setenv("ADAPTIQ_GENERATOR", "arithmetic")
	t.Setenv("ADAPTIQ_LLM_PROVIDER", "mock")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 0.25, cfg.Bank.Probability)
	assert.Equal(t, 5, cfg.Bank.Retry.MaxAttempts)
	assert.Equal(t, 15, cfg.Quiz.DailyGoal)
	assert.Equal(t, 4, cfg.Quiz.Grade)
	assert.Equal(t, complexity.ModeRandom, cfg.Quiz.Mode)
	assert.Equal(t, uint64(42), cfg.Quiz.Seed)
	assert.Equal(t, GeneratorArithmetic, cfg.Quiz.Generator)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_ParseErrors(t *testing.T) {
	t.Setenv("ADAPTIQ_DAILY_GOAL", "ten")
	t.Setenv("ADAPTIQ_BANK_PROBABILITY", "high")
	t.Setenv("ADAPTIQ_REDIS_TTL", "forever")
	t.Setenv("ADAPTIQ_SEED", "-1")

	_, err := FromEnv()
	require.Error(t, err)
	for _, key := range []string{"ADAPTIQ_DAILY_GOAL", "ADAPTIQ_BANK_PROBABILITY", "ADAPTIQ_REDIS_TTL", "ADAPTIQ_SEED"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"probability above 1", func(c *Config) { c.Bank.Probability = 1.5 }, false},
		{"probability negative", func(c *Config) { c.Bank.Probability = -0.1 }, false},
		{"zero goal", func(c *Config) { c.Quiz.DailyGoal = 0 }, false},
		{"zero bank limit", func(c *Config) { c.Bank.Limit = 0 }, false},
		{"zero attempts", func(c *Config) { c.Bank.Retry.MaxAttempts = 0 }, false},
		{"negative ttl", func(c *Config) { c.Redis.TTL = -time.Second }, false},
		{"negative grade", func(c *Config) { c.Quiz.Grade = -1 }, false},
		{"bad mode", func(c *Config) { c.Quiz.Mode = "chaotic" }, false},
		{"bad generator", func(c *Config) { c.Quiz.Generator = "oracle" }, false},
		{"llm without key", func(c *Config) {
			c.Quiz.Generator = GeneratorLLM
			c.LLM.Provider = "anthropic"
		}, false},
		{"llm mock", func(c *Config) {
			c.Quiz.Generator = GeneratorLLM
			c.LLM.Provider = "mock"
		}, true},
		{"auto ignores llm key", func(c *Config) { c.LLM.Provider = "anthropic" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	unset(t, "ADAPTIQ_DAILY_GOAL", "ADAPTIQ_GRADE", "ADAPTIQ_REDIS_ADDR")
	t.Setenv("ADAPTIQ_GRADE", "3")

	path := filepath.Join(t.TempDir(), ".env")
	content := "ADAPTIQ_DAILY_GOAL=7\nADAPTIQ_GRADE=5\nADAPTIQ_REDIS_ADDR=cache:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Quiz.DailyGoal)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	// The environment wins over the file.
	assert.Equal(t, 3, cfg.Quiz.Grade)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Quiz.DailyGoal, cfg.Quiz.DailyGoal)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("ADAPTIQ_BANK_PROBABILITY", "2")
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

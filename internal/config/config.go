// Package config loads runtime settings from an optional .env file and
// ADAPTIQ_* environment variables. Variables already set in the
// environment win over the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/retry"
)

// Generator names accepted by ADAPTIQ_GENERATOR.
const (
	GeneratorAuto       = "auto"
	GeneratorArithmetic = "arithmetic"
	GeneratorLLM        = "llm"
	GeneratorNone       = "none"
)

// Config is the full runtime configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means store.DefaultDBPath().
	DBPath string

	LogMode  string
	LogLevel string

	Redis RedisConfig
	Bank  BankConfig
	Quiz  QuizConfig

	LLM llm.Config
}

// RedisConfig configures the optional question bank cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// BankConfig configures question bank lookups.
type BankConfig struct {
	// Probability is the chance of drawing the next bank question instead
	// of generating one.
	Probability float64

	// Limit caps how many bank questions are fetched per quiz.
	Limit int

	Retry retry.Policy
}

// QuizConfig holds quiz assembly defaults.
type QuizConfig struct {
	DailyGoal int
	Grade     int
	Mode      complexity.Mode

	// Seed makes sampling reproducible. Zero means random.
	Seed uint64

	// Generator selects the question generator: auto, arithmetic, llm or none.
	Generator string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogMode:  "dev",
		LogLevel: "warn",
		Redis: RedisConfig{
			TTL: 10 * time.Minute,
		},
		Bank: BankConfig{
			Probability: quiz.DefaultConfig().BankProbability,
			Limit:       50,
			Retry:       retry.DefaultPolicy(),
		},
		Quiz: QuizConfig{
			DailyGoal: 10,
			Mode:      complexity.ModeAdaptive,
			Generator: GeneratorAuto,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads the given .env files (".env" when none are given), ignoring
// missing ones, then builds the configuration from the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// FromEnv builds a Config from ADAPTIQ_* variables over Default.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.LLM = llm.ConfigFromEnv()

	var errs []error
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	integer := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	float := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: not a number", key, v))
				return
			}
			*dst = f
		}
	}
	duration := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: not a duration", key, v))
				return
			}
			*dst = d
		}
	}

	str(&cfg.DBPath, "ADAPTIQ_DB")
	str(&cfg.LogMode, "ADAPTIQ_LOG_MODE")
	str(&cfg.LogLevel, "ADAPTIQ_LOG_LEVEL")

	str(&cfg.Redis.Addr, "ADAPTIQ_REDIS_ADDR")
	str(&cfg.Redis.Password, "ADAPTIQ_REDIS_PASSWORD")
	integer(&cfg.Redis.DB, "ADAPTIQ_REDIS_DB")
	duration(&cfg.Redis.TTL, "ADAPTIQ_REDIS_TTL")

	float(&cfg.Bank.Probability, "ADAPTIQ_BANK_PROBABILITY")
	integer(&cfg.Bank.Limit, "ADAPTIQ_BANK_LIMIT")
	integer(&cfg.Bank.Retry.MaxAttempts, "ADAPTIQ_BANK_MAX_ATTEMPTS")
	duration(&cfg.Bank.Retry.InitialDelay, "ADAPTIQ_BANK_INITIAL_DELAY")
	duration(&cfg.Bank.Retry.MaxDelay, "ADAPTIQ_BANK_MAX_DELAY")

	integer(&cfg.Quiz.DailyGoal, "ADAPTIQ_DAILY_GOAL")
	integer(&cfg.Quiz.Grade, "ADAPTIQ_GRADE")
	str(&cfg.Quiz.Generator, "ADAPTIQ_GENERATOR")
	if v := os.Getenv("ADAPTIQ_MODE"); v != "" {
		cfg.Quiz.Mode = complexity.Mode(v)
	}
	if v := os.Getenv("ADAPTIQ_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADAPTIQ_SEED=%q: not an unsigned integer", v))
		} else {
			cfg.Quiz.Seed = n
		}
	}

	return cfg, errors.Join(errs...)
}

// Validate checks ranges and enum values. The LLM section is validated
// only when the LLM generator is explicitly selected.
func (c Config) Validate() error {
	var errs []error
	if c.Bank.Probability < 0 || c.Bank.Probability > 1 {
		errs = append(errs, fmt.Errorf("bank probability must be within [0, 1], got %v", c.Bank.Probability))
	}
	if c.Bank.Limit < 1 {
		errs = append(errs, fmt.Errorf("bank limit must be at least 1, got %d", c.Bank.Limit))
	}
	if c.Bank.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("bank max attempts must be at least 1, got %d", c.Bank.Retry.MaxAttempts))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis TTL must not be negative, got %s", c.Redis.TTL))
	}
	if c.Quiz.DailyGoal < 1 {
		errs = append(errs, fmt.Errorf("daily goal must be at least 1, got %d", c.Quiz.DailyGoal))
	}
	if c.Quiz.Grade < 0 {
		errs = append(errs, fmt.Errorf("grade must not be negative, got %d", c.Quiz.Grade))
	}
	if _, err := complexity.ParseMode(string(c.Quiz.Mode)); err != nil {
		errs = append(errs, err)
	}
	switch c.Quiz.Generator {
	case GeneratorAuto, GeneratorArithmetic, GeneratorNone:
	case GeneratorLLM:
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generator %q", c.Quiz.Generator))
	}
	return errors.Join(errs...)
}

// Package config assembles runtime configuration from a .env file, QUDURAT_*
// environment variables and an optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/logging"
	"github.com/qudurat/qudurat/internal/motivation"
	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/sections"
)

// Config is the full runtime configuration.
type Config struct {
	Env      string
	LogLevel string
	DBPath   string // empty means store.DefaultDBPath

	TelegramToken string
	Debug         bool
	// RequireSubscription closes the bot to users without a running
	// subscription.
	RequireSubscription bool

	RedisURL    string // empty selects the in-memory session registry
	AMQPURL     string // empty disables event publishing
	MetricsAddr string // empty disables the metrics server
	// UpdateCheckInterval is how often serve looks for a newer release.
	// Zero disables the check.
	UpdateCheckInterval time.Duration

	ArtifactsDir string
	PassagesDir  string
	GiftsDir     string

	SofficePath  string
	FFmpegPath   string
	PdftoppmPath string

	SettingsFile string
	RewardsExcel string

	LLM      llm.Config
	Settings Settings
}

// Settings is the YAML-editable content of the bot.
type Settings struct {
	Welcome    string              `yaml:"welcome"`
	Support    string              `yaml:"support"`
	Sections   []sections.Rule     `yaml:"sections"`
	Rewards    []rewards.Target    `yaml:"rewards"`
	Motivation motivation.Messages `yaml:"motivation"`
	LLM        llm.Config          `yaml:"llm"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Welcome:  "أهلاً بك في بوت قدرات! 👋\nاختر من القائمة ما تريد البدء به.",
		Sections: sections.DefaultRules(),
		Rewards: []rewards.Target{
			{Metric: rewards.MetricPercentage, Value: 90, Reward: "شهادة تفوق"},
			{Metric: rewards.MetricStudyHours, Value: 10, Reward: "ملف مراجعة شامل"},
			{Metric: rewards.MetricAnswered, Value: 500, Reward: "اختبار محاكي إضافي"},
			{Metric: rewards.MetricPoints, Value: 1000, Reward: "شهر اشتراك مجاني"},
		},
		LLM: llm.DefaultConfig(),
	}
}

// Default returns the configuration before any file or variable is read.
func Default() Config {
	return Config{
		Env:          logging.EnvLocal,
		LogLevel:     "info",
		ArtifactsDir: filepath.Join("data", "artifacts"),
		PassagesDir:  filepath.Join("data", "passages"),
		GiftsDir:     filepath.Join("data", "daily_gifts"),
		SofficePath:  "soffice",
		FFmpegPath:   "ffmpeg",
		PdftoppmPath: "pdftoppm",
		SettingsFile: "qudurat.yaml",
		LLM:          llm.DefaultConfig(),
		Settings:     DefaultSettings(),

		UpdateCheckInterval: 24 * time.Hour,
	}
}

// Load reads .env (if present), the environment and the settings file.
// settingsPath overrides QUDURAT_SETTINGS when non-empty. A missing
// settings file is only an error when it was named explicitly.
func Load(settingsPath string) (Config, error) {
	loadDotEnv()

	cfg := Default()
	explicit := settingsPath != "" || os.Getenv("QUDURAT_SETTINGS") != ""
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if settingsPath != "" {
		cfg.SettingsFile = settingsPath
	}

	settings, err := LoadSettings(cfg.SettingsFile)
	switch {
	case err == nil:
		cfg.Settings = settings
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults stay
	default:
		return Config{}, err
	}

	if cfg.RewardsExcel != "" {
		targets, err := rewards.LoadTargetsExcel(cfg.RewardsExcel)
		if err != nil {
			return Config{}, fmt.Errorf("load reward targets: %w", err)
		}
		cfg.Settings.Rewards = targets
	}

	cfg.LLM = cfg.Settings.LLM
	llm.ApplyEnv(&cfg.LLM)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnvOrDefault("QUDURAT_ENV", c.Env)
	c.LogLevel = getEnvOrDefault("QUDURAT_LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnvOrDefault("QUDURAT_DB", c.DBPath)
	c.TelegramToken = getEnvOrDefault("QUDURAT_TELEGRAM_TOKEN", os.Getenv("BOT_TOKEN"))
	c.RedisURL = getEnvOrDefault("QUDURAT_REDIS_URL", c.RedisURL)
	c.AMQPURL = getEnvOrDefault("QUDURAT_AMQP_URL", c.AMQPURL)
	c.MetricsAddr = getEnvOrDefault("QUDURAT_METRICS_ADDR", c.MetricsAddr)
	c.ArtifactsDir = getEnvOrDefault("QUDURAT_ARTIFACTS_DIR", c.ArtifactsDir)
	c.PassagesDir = getEnvOrDefault("QUDURAT_PASSAGES_DIR", c.PassagesDir)
	c.GiftsDir = getEnvOrDefault("QUDURAT_GIFTS_DIR", c.GiftsDir)
	c.SofficePath = getEnvOrDefault("QUDURAT_SOFFICE", c.SofficePath)
	c.FFmpegPath = getEnvOrDefault("QUDURAT_FFMPEG", c.FFmpegPath)
	c.PdftoppmPath = getEnvOrDefault("QUDURAT_PDFTOPPM", c.PdftoppmPath)
	c.SettingsFile = getEnvOrDefault("QUDURAT_SETTINGS", c.SettingsFile)
	c.RewardsExcel = getEnvOrDefault("QUDURAT_REWARDS_EXCEL", c.RewardsExcel)

	var err error
	if c.Debug, err = getBoolEnv("QUDURAT_DEBUG", c.Debug); err != nil {
		return err
	}
	if c.RequireSubscription, err = getBoolEnv("QUDURAT_REQUIRE_SUBSCRIPTION", c.RequireSubscription); err != nil {
		return err
	}
	if v := os.Getenv("QUDURAT_UPDATE_CHECK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("parse QUDURAT_UPDATE_CHECK: want a duration such as 12h or 0, got %q", v)
		}
		c.UpdateCheckInterval = d
	}
	return nil
}

// loadDotEnv copies .env entries into the environment. A variable that is
// set but empty counts as unset, matching getEnvOrDefault.
func loadDotEnv() {
	vals, err := godotenv.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not read .env file", "error", err)
		}
		return
	}
	for k, v := range vals {
		if os.Getenv(k) == "" {
			_ = os.Setenv(k, v)
		}
	}
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

// LoadSettings reads a YAML settings file. Keys absent from the file keep
// their defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks section rules and reward targets.
func (s Settings) Validate() error {
	seen := make(map[string]bool, len(s.Sections))
	for _, r := range s.Sections {
		if r.Path == "" {
			return errors.New("section rule without path")
		}
		if seen[r.Path] {
			return fmt.Errorf("duplicate section rule %q", r.Path)
		}
		seen[r.Path] = true
		if r.UnlockThreshold < 0 {
			return fmt.Errorf("section %q: negative unlock threshold", r.Path)
		}
	}
	known := make(map[rewards.Metric]bool)
	for _, m := range rewards.AllMetrics() {
		known[m] = true
	}
	for _, t := range s.Rewards {
		if !known[t.Metric] {
			return fmt.Errorf("unknown reward metric %q", t.Metric)
		}
		if t.Value <= 0 {
			return fmt.Errorf("reward %q: target must be positive", t.Metric)
		}
	}
	return nil
}

// ValidateServe reports what `serve` needs that is missing.
func (c Config) ValidateServe() error {
	if c.TelegramToken == "" {
		return errors.New("QUDURAT_TELEGRAM_TOKEN is required")
	}
	return c.Validate()
}

// Validate checks fields every command relies on.
func (c Config) Validate() error {
	switch c.Env {
	case logging.EnvLocal, logging.EnvDev, logging.EnvProd:
	default:
		return fmt.Errorf("QUDURAT_ENV must be %s, %s or %s, got %q",
			logging.EnvLocal, logging.EnvDev, logging.EnvProd, c.Env)
	}
	return c.Settings.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

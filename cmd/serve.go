package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/qudurat/qudurat/internal/artifact"
	"github.com/qudurat/qudurat/internal/bot"
	"github.com/qudurat/qudurat/internal/events"
	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/metrics"
	"github.com/qudurat/qudurat/internal/motivation"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/rewards"
	"github.com/qudurat/qudurat/internal/sections"
	"github.com/qudurat/qudurat/internal/selfupdate"
	"github.com/qudurat/qudurat/internal/sessioncache"
	"github.com/qudurat/qudurat/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot until interrupted.

Sessions live in Redis when QUDURAT_REDIS_URL is set and in memory
otherwise. Session events go to RabbitMQ when QUDURAT_AMQP_URL is set.
Prometheus metrics are served on QUDURAT_METRICS_ADDR when set. A newer
release is looked up every QUDURAT_UPDATE_CHECK (24h by default, 0 turns
it off) and logged; installing it is left to ` + "`qudurat update`" + `.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	m.SetRunning(version)
	checks := []metrics.Check{{Name: "sqlite", Run: st.Ping}}

	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("llm config: %w", err)
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger, m.ObserveLLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}

	var registry quiz.Registry = quiz.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		cache, err := sessioncache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer cache.Close()
		registry = cache
		checks = append(checks, metrics.Check{Name: "redis", Run: cache.Ping})
	}

	publisher, err := events.Dial(cfg.AMQPURL, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	engine := quiz.NewEngine(st.QuestionRepo(), st.SessionRepo(), st.AnswerRepo(), registry,
		quiz.WithLogger(logger),
		quiz.WithObserver(m),
		quiz.WithObserver(publisher),
	)

	if err := rewards.EnsureGiftDirs(cfg.GiftsDir); err != nil {
		return fmt.Errorf("prepare gifts: %w", err)
	}

	secs := sections.New(cfg.Settings.Sections, st.UserRepo(), logger)
	if _, err := secs.Refresh(ctx); err != nil {
		logger.Warn("could not evaluate section thresholds", "error", err)
	}

	renderer := artifact.NewRenderer(cfg.ArtifactsDir, artifact.Tools{
		Soffice:  cfg.SofficePath,
		Pdftoppm: cfg.PdftoppmPath,
		FFmpeg:   cfg.FFmpegPath,
	}, artifact.ExecRunner{}, logger)

	api, err := bot.NewBotAPI(cfg.TelegramToken, cfg.Debug, logger)
	if err != nil {
		return err
	}

	tcfg := tutor.DefaultConfig()
	b := bot.New(bot.Deps{
		Messenger:   bot.NewTelegramMessenger(api),
		Engine:      engine,
		Users:       st.UserRepo(),
		Categories:  st.CategoryRepo(),
		Questions:   st.QuestionRepo(),
		Sessions:    st.SessionRepo(),
		Answers:     st.AnswerRepo(),
		Sections:    secs,
		Gifts:       rewards.NewGifts(cfg.GiftsDir, st.UserRepo(), logger),
		Targets:     cfg.Settings.Rewards,
		Motivation:  motivation.NewTracker(cfg.Settings.Motivation),
		Feedback:    tutor.NewFeedback(provider, tcfg, logger),
		Assistant:   tutor.NewAssistant(provider, st.ChatRepo(), tcfg, logger),
		Coach:       tutor.NewCoach(provider, tcfg, logger),
		Artifacts:   artifact.NewService(renderer, st.SessionRepo(), st.AnswerRepo(), st.UserRepo(), logger),
		PassagesDir: cfg.PassagesDir,
		Welcome:     cfg.Settings.Welcome,
		Support:     cfg.Settings.Support,
		Logger:      logger,
	})
	b.RequireSubscription = cfg.RequireSubscription

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, metrics.Handler(m, checks...), logger)
		})
	}
	g.Go(func() error {
		return b.Run(ctx, api)
	})
	if cfg.UpdateCheckInterval > 0 {
		checker := selfupdate.NewChecker(selfupdate.WithTimeout(30 * time.Second))
		g.Go(func() error {
			checker.Watch(ctx, version, cfg.UpdateCheckInterval, func(r *selfupdate.CheckResult) {
				m.SetLatest(r.LatestVersion)
				if r.UpdateAvailable {
					logger.Info("newer release available", "running", version, "latest", r.LatestVersion, "url", r.ReleaseURL)
				}
			}, func(err error) {
				logger.Warn("release check failed", "error", err)
			})
			return nil
		})
	}

	logger.Info("qudurat bot started",
		"version", version,
		"env", cfg.Env,
		"llm_provider", cfg.LLM.Provider,
		"model", provider.ModelID(),
		"redis", cfg.RedisURL != "",
		"amqp", publisher.Enabled(),
	)
	return g.Wait()
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/app"
	"github.com/qudurat/qudurat/internal/importer"
	"github.com/qudurat/qudurat/internal/llm"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/tutor"
)

// localUserID is the account terminal sessions are recorded under unless
// --user names a bot user.
const localUserID = 1

type practiceFlags struct {
	questionType string
	count        int
	minutes      float64
	level        bool
	userID       int64
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Practice in the terminal",
	Long: `Take a test or a level determination in the terminal.

Without flags the menu opens. --type with --count or --minutes starts a
quiz straight away.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var f practiceFlags
		f.questionType, _ = cmd.Flags().GetString("type")
		f.count, _ = cmd.Flags().GetInt("count")
		f.minutes, _ = cmd.Flags().GetFloat64("minutes")
		f.level, _ = cmd.Flags().GetBool("level")
		f.userID, _ = cmd.Flags().GetInt64("user")
		return runPractice(cmd, f)
	},
}

func init() {
	practiceCmd.Flags().String("type", "", "Question type: verbal or quantitative")
	practiceCmd.Flags().Int("count", 0, "Number of questions (10-100)")
	practiceCmd.Flags().Float64("minutes", 0, "Quiz length in minutes")
	practiceCmd.Flags().Bool("level", false, "Take a level determination instead of a test")
	practiceCmd.Flags().Int64("user", localUserID, "User id the sessions are recorded under")
	practiceCmd.MarkFlagsMutuallyExclusive("count", "minutes")
}

func (f practiceFlags) options() (app.Options, error) {
	var opts app.Options
	if f.level {
		opts.Kind = quiz.KindLevelDetermination
	}
	if f.questionType == "" {
		if f.count != 0 || f.minutes != 0 {
			return opts, errors.New("--count and --minutes need --type")
		}
		return opts, nil
	}
	qt, err := importer.NormalizeType(f.questionType, "")
	if err != nil {
		return opts, err
	}
	opts.QuestionType = qt
	switch {
	case f.count != 0:
		opts.Mode, opts.Input = quiz.ByCount, strconv.Itoa(f.count)
	case f.minutes != 0:
		opts.Mode, opts.Input = quiz.ByTime, strconv.FormatFloat(f.minutes, 'f', -1, 64)
	}
	return opts, nil
}

// runPractice opens the store, builds dependencies, and launches the TUI.
func runPractice(cmd *cobra.Command, f practiceFlags) error {
	ctx := cmd.Context()
	opts, err := f.options()
	if err != nil {
		return err
	}
	if f.userID == 0 {
		f.userID = localUserID
	}

	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	// The terminal belongs to the UI, so logs go to a file.
	dbPath, _ := resolveDBPath(cfg)
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "practice.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	if err := st.UserRepo().Register(ctx, store.User{ID: f.userID, Name: localName()}); err != nil {
		return fmt.Errorf("register local user: %w", err)
	}

	env := &screen.Env{
		UserID: f.userID,
		Engine: quiz.NewEngine(st.QuestionRepo(), st.SessionRepo(), st.AnswerRepo(), quiz.NewMemoryRegistry(),
			quiz.WithLogger(logger)),
		Users:       st.UserRepo(),
		Sessions:    st.SessionRepo(),
		Answers:     st.AnswerRepo(),
		Categories:  st.CategoryRepo(),
		PassagesDir: cfg.PassagesDir,
	}

	if err := cfg.LLM.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Level analysis will be unavailable.")
	} else {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		env.Feedback = tutor.NewFeedback(provider, tutor.DefaultConfig(), logger)
	}

	return app.Run(ctx, env, opts)
}

func localName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

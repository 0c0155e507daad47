package quiz

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/qudurat/qudurat/internal/logging"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/screens/summary"
	"github.com/qudurat/qudurat/internal/store"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func testEnv(t *testing.T, questions int) (*screen.Env, *testClock) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	items := make([]store.QuestionImport, questions)
	for i := range items {
		items[i] = store.QuestionImport{
			Question: store.Question{
				CorrectAnswer: "ج",
				Text:          fmt.Sprintf("سؤال %d", i+1),
				OptionA:       "١", OptionB: "٢", OptionC: "٣", OptionD: "٤",
				Explanation: "لأن الإجابة ٣",
				Type:        store.QuestionTypeQuantitative,
			},
			MainCategory: "حساب",
		}
	}
	if _, err := st.QuestionRepo().Import(ctx, items); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := st.UserRepo().Register(ctx, store.User{ID: 1, Name: "local"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	clk := &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	engine := quiz.NewEngine(st.QuestionRepo(), st.SessionRepo(), st.AnswerRepo(), quiz.NewMemoryRegistry(quiz.WithRegistryClock(clk.Now)),
		quiz.WithClock(clk.Now),
		quiz.WithShuffler(func(int, func(i, j int)) {}),
		quiz.WithLogger(logging.Discard()),
	)
	return &screen.Env{
		UserID:     1,
		Engine:     engine,
		Users:      st.UserRepo(),
		Sessions:   st.SessionRepo(),
		Answers:    st.AnswerRepo(),
		Categories: st.CategoryRepo(),
		Now:        clk.Now,
	}, clk
}

func startScreen(t *testing.T, env *screen.Env, input string) *QuizScreen {
	t.Helper()
	sess, err := env.Engine.Start(context.Background(), quiz.StartRequest{
		UserID: 1, ChatID: 1, Kind: quiz.KindTest,
		QuestionType: store.QuestionTypeQuantitative, Mode: quiz.ByCount, Input: input,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s := New(env, sess)
	run(s, s.present())
	return s
}

// run feeds the message produced by cmd back into s.
func run(s *QuizScreen, cmd tea.Cmd) tea.Cmd {
	_, next := s.Update(cmd())
	return next
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestQuizScreen_ShowsFirstQuestion(t *testing.T) {
	env, _ := testEnv(t, 10)
	s := startScreen(t, env, "10")

	if s.current == nil {
		t.Fatal("expected a question")
	}
	if s.current.Number != 1 || s.current.Total != 10 {
		t.Errorf("question %d/%d, want 1/10", s.current.Number, s.current.Total)
	}
	if view := s.View(80, 30); view == "" {
		t.Error("expected non-empty view")
	}
}

func TestQuizScreen_AnswerShowsOutcomeThenNext(t *testing.T) {
	env, _ := testEnv(t, 10)
	s := startScreen(t, env, "10")

	// Choice 3 is ج with the identity shuffler.
	_, cmd := s.Update(keyPress('3'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	run(s, cmd)
	if s.outcome == nil || !s.outcome.Correct {
		t.Fatalf("outcome = %+v, want correct", s.outcome)
	}

	s.Update(keyPress(' '))
	if s.outcome != nil {
		t.Error("outcome should be dismissed")
	}
	if s.current.Number != 2 {
		t.Errorf("question number = %d, want 2", s.current.Number)
	}
}

func TestQuizScreen_LastAnswerOpensSummary(t *testing.T) {
	env, _ := testEnv(t, 10)
	s := startScreen(t, env, "10")

	var cmd tea.Cmd
	for i := 0; i < 10; i++ {
		_, cmd = s.Update(keyPress('1'))
		run(s, cmd)
		_, cmd = s.Update(keyPress(' '))
	}
	if !s.finished {
		t.Fatal("expected the session to be finished")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}
}

func TestQuizScreen_DeadlineFinalizes(t *testing.T) {
	env, clk := testEnv(t, 10)
	s := startScreen(t, env, "10")

	clk.now = clk.now.Add(16 * time.Minute)
	_, cmd := s.Update(timerTickMsg(clk.now))
	if !s.expired {
		t.Fatal("expected expiry")
	}
	next := run(s, cmd)
	msg, ok := next().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", next())
	}
	if msg.Screen == nil {
		t.Error("expected summary screen")
	}
}

func TestQuizScreen_EscConfirmsCancel(t *testing.T) {
	env, _ := testEnv(t, 10)
	s := startScreen(t, env, "10")

	if !s.HandlesEscape() {
		t.Fatal("running quiz should handle Esc")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if !s.confirm {
		t.Fatal("expected quit confirmation")
	}
	s.Update(keyPress('n'))
	if s.confirm {
		t.Fatal("N should keep going")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	_, cmd := s.Update(keyPress('y'))
	next := run(s, cmd)
	if _, ok := next().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg after cancel")
	}
	if _, err := env.Engine.Get(context.Background(), s.session.ID); err == nil {
		t.Error("cancelled session should leave the registry")
	}
}

func TestQuizScreen_KeysIgnoredWhileWaiting(t *testing.T) {
	env, _ := testEnv(t, 10)
	s := startScreen(t, env, "10")

	s.waiting = true
	if _, cmd := s.Update(keyPress('1')); cmd != nil {
		t.Error("expected no command while an engine call is pending")
	}
}

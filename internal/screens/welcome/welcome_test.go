package welcome

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/qudurat/qudurat/internal/router"
	"github.com/qudurat/qudurat/internal/screen"
	"github.com/qudurat/qudurat/internal/store"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

// fakeUsers is an in-memory store.UserRepo.
type fakeUsers struct {
	store.UserRepo
	user *store.User
}

func (f *fakeUsers) Get(context.Context, int64) (*store.User, error) { return f.user, nil }

func (f *fakeUsers) SetGender(_ context.Context, _ int64, gender string) error {
	f.user.Gender = gender
	return nil
}

func newTestWelcome(gender string) (*WelcomeScreen, *fakeUsers, *int) {
	users := &fakeUsers{user: &store.User{ID: 1, Name: "local", Gender: gender}}
	calls := 0
	w := New(&screen.Env{UserID: 1, Users: users}, func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	return w, users, &calls
}

func loadUser(w *WelcomeScreen) {
	msg := userLoadedMsg{needsGender: w.env.Users.(*fakeUsers).user.Gender == ""}
	w.Update(msg)
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestTicksStopAfterSplash(t *testing.T) {
	w, _, _ := newTestWelcome("male")

	if cmd := sendTicks(w, 5); cmd == nil {
		t.Error("ticks should continue during the splash")
	}
	if cmd := sendTicks(w, 20); cmd != nil {
		t.Error("ticks should stop once the splash is done")
	}
	if w.elapsed != totalDur {
		t.Errorf("elapsed = %v, want %v", w.elapsed, totalDur)
	}
}

func TestKeypressContinuesOnceLoaded(t *testing.T) {
	w, _, calls := newTestWelcome("male")

	if _, cmd := w.Update(tea.KeyPressMsg{Code: ' '}); cmd != nil {
		t.Fatal("keypress before the user is loaded should be ignored")
	}

	loadUser(w)
	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("expected transition")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("next called %d times, want 1", *calls)
	}

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'b'}); cmd != nil {
		t.Error("second keypress should not transition again")
	}
}

func TestFirstRunAsksForGender(t *testing.T) {
	w, users, calls := newTestWelcome("")
	loadUser(w)

	if !strings.Contains(w.View(80, 24), "اختر الجنس") {
		t.Error("expected gender prompt")
	}

	_, cmd := w.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if cmd == nil {
		t.Fatal("expected save command")
	}
	_, next := w.Update(cmd())
	if users.user.Gender != "female" {
		t.Errorf("gender = %q, want female", users.user.Gender)
	}
	if next == nil {
		t.Fatal("expected transition after saving")
	}
	if _, ok := next().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("next called %d times, want 1", *calls)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _, _ := newTestWelcome("male")
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}

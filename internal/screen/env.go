package screen

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/store"
	"github.com/qudurat/qudurat/internal/tutor"
	"github.com/qudurat/qudurat/internal/ui/layout"
)

// Env is what the screens need from the rest of the program.
type Env struct {
	// UserID is the local user the terminal sessions belong to.
	UserID int64

	Engine     *quiz.Engine
	Users      store.UserRepo
	Sessions   store.SessionRepo
	Answers    tutor.AnswerLister
	Categories tutor.CategoryNamer

	// PassagesDir holds the reading passages referenced by questions.
	PassagesDir string

	// Feedback analyzes level determination results. Nil disables it.
	Feedback *tutor.Feedback

	Now func() time.Time
}

// RefreshStatsMsg asks the app to reload the header counters.
type RefreshStatsMsg struct{}

// RefreshStats is a command producing RefreshStatsMsg.
func RefreshStats() tea.Msg { return RefreshStatsMsg{} }

// StatsMsg carries reloaded header counters.
type StatsMsg struct {
	Stats layout.HeaderStats
	Err   error
}

// LoadStats reads the user's counters.
func (e *Env) LoadStats(ctx context.Context) StatsMsg {
	u, err := e.Users.Get(ctx, e.UserID)
	if err != nil || u == nil {
		return StatsMsg{Err: err}
	}
	return StatsMsg{Stats: layout.HeaderStats{Points: u.Points, Answered: u.AnsweredQuestions}}
}

// Clock returns the current time from Now, or time.Now when unset.
func (e *Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

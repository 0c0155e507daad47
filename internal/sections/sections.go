// Package sections decides which bot sections are open. A locked section
// opens by itself once enough users have registered.
package sections

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Section paths used by the bot. Sub-sections are joined with ':'.
const (
	LevelDetermination   = "level_determination"
	Tests                = "tests"
	TraditionalLearning  = "traditional_learning"
	ConversationLearning = "conversation_learning"
	Tips                 = "tips"
	Designs              = "designs"
	Rewards              = "rewards"
	Statistics           = "statistics"
)

// DefaultMessage is shown for a locked section without its own message.
const DefaultMessage = "سيتم فتح هذا القسم تلقائياً عند وصول عدد المستخدمين إلى {threshold} مستخدم 🚧\nالعدد الحالي: {current} مستخدم"

// Rule configures one section.
type Rule struct {
	Path            string `yaml:"path"`
	Available       bool   `yaml:"available"`
	UnlockThreshold int    `yaml:"unlock_threshold"`
	Message         string `yaml:"message"`
}

// DefaultRules keeps the learning sections that have no content locked
// and everything else open.
func DefaultRules() []Rule {
	return []Rule{
		{Path: TraditionalLearning, UnlockThreshold: 1000},
		{Path: ConversationLearning, UnlockThreshold: 1000},
		{Path: Tips, UnlockThreshold: 1000},
		{Path: Designs, UnlockThreshold: 1000},
	}
}

// UserCounter reports how many users are registered.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// Status is the availability of a section.
type Status struct {
	Available bool
	// Message is the text to show instead of the section when locked.
	Message string
}

// Manager tracks section availability.
type Manager struct {
	users  UserCounter
	logger *slog.Logger

	mu    sync.Mutex
	rules map[string]Rule
}

// New creates a Manager. Paths without a rule are open.
func New(rules []Rule, users UserCounter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		users:  users,
		logger: logger,
		rules:  make(map[string]Rule, len(rules)),
	}
	for _, r := range rules {
		m.rules[r.Path] = r
	}
	return m
}

// Check returns the status of path. A sub-section is locked while any of
// its parents is. Thresholds are re-evaluated against the current user
// count on every call.
func (m *Manager) Check(ctx context.Context, path string) (Status, error) {
	current, err := m.users.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("count users: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlockLocked(current)

	for _, p := range lineage(path) {
		r, ok := m.rules[p]
		if !ok || r.Available {
			continue
		}
		return Status{Message: render(r, current)}, nil
	}
	return Status{Available: true}, nil
}

// Refresh unlocks every section whose threshold is met and returns their
// paths.
func (m *Manager) Refresh(ctx context.Context) ([]string, error) {
	current, err := m.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlockLocked(current), nil
}

func (m *Manager) unlockLocked(current int) []string {
	var opened []string
	for p, r := range m.rules {
		if r.Available || r.UnlockThreshold <= 0 || current < r.UnlockThreshold {
			continue
		}
		r.Available = true
		m.rules[p] = r
		opened = append(opened, p)
		m.logger.Info("section unlocked", "section", p, "threshold", r.UnlockThreshold, "users", current)
	}
	return opened
}

// lineage returns path and its parents, outermost first.
func lineage(path string) []string {
	parts := strings.Split(path, ":")
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], ":")
	}
	return out
}

func render(r Rule, current int) string {
	msg := r.Message
	if msg == "" {
		msg = DefaultMessage
	}
	return strings.NewReplacer(
		"{threshold}", strconv.Itoa(r.UnlockThreshold),
		"{current}", strconv.Itoa(current),
	).Replace(msg)
}

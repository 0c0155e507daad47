// Package motivation sends an encouraging message after every few menu
// navigations.
package motivation

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Places a message can be triggered from.
const (
	MainMenu = "main_menu"
	GoBack   = "go_back"
)

// Threshold is the number of navigations between messages.
const Threshold = 3

// NamePlaceholder is replaced with the user's name.
const NamePlaceholder = "(اسم المستخدم)"

// ByGender holds messages for each gender.
type ByGender struct {
	Male   []string `yaml:"male"`
	Female []string `yaml:"female"`
}

// Messages holds messages for each place.
type Messages struct {
	MainMenu ByGender `yaml:"main_menu"`
	GoBack   ByGender `yaml:"go_back"`
}

func (m Messages) pool(place, gender string) []string {
	var g ByGender
	switch place {
	case MainMenu:
		g = m.MainMenu
	case GoBack:
		g = m.GoBack
	default:
		return nil
	}
	switch strings.ToLower(gender) {
	case "male":
		return g.Male
	case "female":
		return g.Female
	}
	return nil
}

// Tracker counts navigations per user.
type Tracker struct {
	messages Messages
	pick     func(n int) int

	mu     sync.Mutex
	clicks map[int64]int
}

// NewTracker creates a Tracker over messages.
func NewTracker(messages Messages) *Tracker {
	return &Tracker{
		messages: messages,
		pick:     rand.IntN,
		clicks:   make(map[int64]int),
	}
}

// Click records a navigation from place. Every Threshold-th click returns
// a random message for gender with the name filled in. Users without a
// known gender or places without messages get nothing, but their counter
// still resets.
func (t *Tracker) Click(userID int64, place, gender, name string) (string, bool) {
	t.mu.Lock()
	t.clicks[userID]++
	due := t.clicks[userID] >= Threshold
	if due {
		t.clicks[userID] = 0
	}
	t.mu.Unlock()

	if !due {
		return "", false
	}
	pool := t.messages.pool(place, gender)
	if len(pool) == 0 {
		return "", false
	}
	msg := pool[t.pick(len(pool))]
	return strings.ReplaceAll(msg, NamePlaceholder, name), true
}

package bot

import (
	"sync"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/store"
)

// step is what the bot expects from the user's next text message.
type step int

const (
	stepIdle           step = iota
	stepAwaitSize           // count or minutes for a new session
	stepChat                // free text goes to the assistant
	stepPractice            // free-text answer to the practice question
	stepPracticeAsk         // question about the solved practice question
	stepPracticeReview      // practice question solved, waiting for a button
)

// conversation is the per-user setup state that precedes a quiz session,
// plus the session the user is currently attached to.
type conversation struct {
	step         step
	kind         quiz.Kind
	questionType string
	scope        quiz.Scope
	mode         quiz.SizingMode
	sessionID    int64
	// practice is the conversation learning question being worked on.
	practice *store.Question
}

type conversations struct {
	mu sync.Mutex
	m  map[int64]conversation
}

func newConversations() *conversations {
	return &conversations{m: make(map[int64]conversation)}
}

func (c *conversations) get(userID int64) conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[userID]
}

func (c *conversations) update(userID int64, fn func(cv *conversation)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cv := c.m[userID]
	fn(&cv)
	c.m[userID] = cv
}

// reset drops everything but the attached session id.
func (c *conversations) reset(userID int64) {
	c.update(userID, func(cv *conversation) {
		*cv = conversation{sessionID: cv.sessionID}
	})
}

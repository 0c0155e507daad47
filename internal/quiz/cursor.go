package quiz

import (
	"math/rand/v2"
	"time"
)

// Status is the outcome of reading the cursor.
type Status int

const (
	StatusQuestion  Status = iota // A question is ready to present
	StatusExhausted               // Every question was consumed
	StatusExpired                 // The deadline passed
)

func (s Status) String() string {
	switch s {
	case StatusQuestion:
		return "question"
	case StatusExhausted:
		return "exhausted"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// Presentation is a question ready to show, with its options in display
// order. Labels always keep their original text.
type Presentation struct {
	// Number is the 1-based position of the question.
	Number int
	// Total is the number of drawn questions.
	Total    int
	Question Question
	// Choices is a permutation of Question.Options.
	Choices [4]Option
	// First is true when no question message exists yet.
	First bool
}

// Shuffler permutes n elements through swap. rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Current reads the cursor at now. Expiry wins over exhaustion. Each call
// returns a fresh permutation of the options.
func (s *Session) Current(now time.Time, shuffle Shuffler) (Presentation, Status) {
	if now.After(s.Deadline) {
		return Presentation{}, StatusExpired
	}
	if s.Index >= len(s.Questions) {
		return Presentation{}, StatusExhausted
	}

	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	q := s.Questions[s.Index]
	choices := q.Options
	shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return Presentation{
		Number:   s.Index + 1,
		Total:    len(s.Questions),
		Question: q,
		Choices:  choices,
		First:    s.MessageID == 0,
	}, StatusQuestion
}

// Advance moves the cursor to the next question. It does not check bounds;
// Current reports exhaustion.
func (s *Session) Advance() {
	s.Index++
}

// currentQuestion returns the question under the cursor, if any.
func (s *Session) currentQuestion() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

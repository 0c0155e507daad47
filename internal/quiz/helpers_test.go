package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qudurat/qudurat/internal/store"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// identityShuffle leaves options in canonical order.
func identityShuffle(int, func(i, j int)) {}

// reverseShuffle reverses the options.
func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

// mockQuestions serves a fixed bank, honoring the type filter and limit.
type mockQuestions struct {
	bank    []store.Question
	err     error
	calls   int
	filters []store.QuestionFilter
}

func (m *mockQuestions) Random(_ context.Context, f store.QuestionFilter, n int) ([]store.Question, error) {
	m.calls++
	m.filters = append(m.filters, f)
	if m.err != nil {
		return nil, m.err
	}
	var out []store.Question
	for _, q := range m.bank {
		if len(out) == n {
			break
		}
		if f.Type != "" && q.Type != f.Type {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// mockSessions records created rows and finalized results.
type mockSessions struct {
	mu          sync.Mutex
	nextID      int64
	created     []store.SessionRecord
	results     []store.SessionResult
	createErr   error
	finalizeErr error
}

func (m *mockSessions) Create(_ context.Context, rec store.SessionRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.nextID++
	m.created = append(m.created, rec)
	return m.nextID, nil
}

func (m *mockSessions) Finalize(_ context.Context, res store.SessionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	for _, r := range m.results {
		if r.SessionID == res.SessionID {
			return store.ErrAlreadyFinalized
		}
	}
	m.results = append(m.results, res)
	return nil
}

// mockAnswers records answer rows.
type mockAnswers struct {
	mu      sync.Mutex
	records []store.AnswerRecord
	err     error
}

func (m *mockAnswers) Append(_ context.Context, rec store.AnswerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAnswers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// recordingObserver counts lifecycle notifications.
type recordingObserver struct {
	started, answered, finalized, cancelled int
	reports                                 []Report
}

func (o *recordingObserver) SessionStarted(context.Context, *Session) { o.started++ }
func (o *recordingObserver) AnswerSubmitted(context.Context, *Session, Outcome) {
	o.answered++
}
func (o *recordingObserver) SessionFinalized(_ context.Context, _ *Session, r Report) {
	o.finalized++
	o.reports = append(o.reports, r)
}
func (o *recordingObserver) SessionCancelled(context.Context, *Session) { o.cancelled++ }

// makeBank builds n questions of questionType. Every question's correct
// answer is ب.
func makeBank(n int, questionType string) []store.Question {
	qs := make([]store.Question, n)
	for i := range qs {
		qs[i] = store.Question{
			ID:            int64(i + 1),
			CorrectAnswer: "ب",
			Text:          fmt.Sprintf("سؤال %d", i+1),
			OptionA:       "خيار أ",
			OptionB:       "خيار ب",
			OptionC:       "خيار ج",
			OptionD:       "خيار د",
			Type:          questionType,
			PassageName:   "-",
		}
	}
	return qs
}

type testEngine struct {
	*Engine
	clock     *fakeClock
	questions *mockQuestions
	sessions  *mockSessions
	answers   *mockAnswers
	registry  *MemoryRegistry
	observer  *recordingObserver
}

func newTestEngine(bank []store.Question) *testEngine {
	clock := newFakeClock()
	te := &testEngine{
		clock:     clock,
		questions: &mockQuestions{bank: bank},
		sessions:  &mockSessions{},
		answers:   &mockAnswers{},
		registry:  NewMemoryRegistry(WithRegistryClock(clock.Now)),
		observer:  &recordingObserver{},
	}
	te.Engine = NewEngine(te.questions, te.sessions, te.answers, te.registry,
		WithClock(te.clock.Now),
		WithShuffler(identityShuffle),
		WithObserver(te.observer),
	)
	return te
}

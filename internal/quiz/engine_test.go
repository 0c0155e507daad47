package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudurat/qudurat/internal/store"
)

func startTest(t *testing.T, te *testEngine, mode SizingMode, input string) *Session {
	t.Helper()
	s, err := te.Start(context.Background(), StartRequest{
		UserID:       100,
		ChatID:       200,
		Kind:         KindLevelDetermination,
		QuestionType: "verbal",
		Mode:         mode,
		Input:        input,
	})
	require.NoError(t, err)
	return s
}

// answer submits label for the question currently presented.
func answer(t *testing.T, te *testEngine, id int64, label string) Step {
	t.Helper()
	s, err := te.Get(context.Background(), id)
	require.NoError(t, err)
	require.Less(t, s.Index, len(s.Questions))
	step, err := te.Submit(context.Background(), id, s.Questions[s.Index].ID, label)
	require.NoError(t, err)
	return step
}

func TestEngine_FullSession(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")

	assert.Equal(t, StatePresenting, s.State)
	assert.Len(t, s.Questions, 10)
	assert.Equal(t, t0.Add(15*time.Minute), s.Deadline)
	require.Len(t, te.sessions.created, 1)
	assert.Equal(t, 10, te.sessions.created[0].NumQuestions)

	step, err := te.Present(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Presentation)
	assert.True(t, step.Presentation.First)
	require.NoError(t, te.SetMessageID(ctx, s.ID, 77))

	var last Step
	for i := 0; i < 10; i++ {
		te.clock.Advance(30 * time.Second)
		label := "ب"
		if i >= 7 {
			label = "أ"
		}
		last = answer(t, te, s.ID, label)
		require.NotNil(t, last.Outcome)
		assert.Equal(t, i < 7, last.Outcome.Correct)
		if i < 9 {
			require.NotNil(t, last.Presentation)
			assert.False(t, last.Presentation.First)
			assert.Equal(t, i+2, last.Presentation.Number)
		}
	}

	require.Nil(t, last.Presentation)
	require.NotNil(t, last.Report)
	r := last.Report
	assert.Equal(t, 7, r.Score)
	assert.Equal(t, 10, r.Total)
	assert.InDelta(t, 70.0, r.Percentage, 1e-9)
	assert.GreaterOrEqual(t, r.Points, 0)
	assert.Equal(t, 5*time.Minute, r.Elapsed)
	assert.False(t, r.TimedOut)

	assert.Equal(t, 10, te.answers.count())
	require.Len(t, te.sessions.results, 1)
	res := te.sessions.results[0]
	assert.Equal(t, store.SessionResult{
		SessionID:  s.ID,
		UserID:     100,
		Score:      7,
		Answered:   10,
		Percentage: r.Percentage,
		Elapsed:    5 * time.Minute,
		Points:     r.Points,
		FinishedAt: t0.Add(5 * time.Minute),
	}, res)

	got, err := te.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFinalizing, got.State)
	require.NotNil(t, got.Report)
	assert.Equal(t, 7, got.Report.Score)

	assert.Equal(t, 1, te.observer.started)
	assert.Equal(t, 10, te.observer.answered)
	assert.Equal(t, 1, te.observer.finalized)

	// Late answers for a finished session are refused.
	_, err = te.Submit(ctx, s.ID, got.Questions[9].ID, "ب")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestEngine_ZeroQuestionsFromShortWindow(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	_, err := te.Start(context.Background(), StartRequest{
		UserID:       100,
		Kind:         KindTest,
		QuestionType: "verbal",
		Mode:         ByTime,
		Input:        "0.5",
	})
	require.ErrorIs(t, err, ErrNoQuestions)
	assert.Empty(t, te.sessions.created)
	assert.Zero(t, te.answers.count())
	assert.Zero(t, te.registry.Len())
	assert.Zero(t, te.observer.started)
}

func TestEngine_StartValidation(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	_, err := te.Start(context.Background(), StartRequest{Mode: ByCount, Input: "200"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, te.questions.calls)
}

func TestEngine_StartCreateFailure(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	te.sessions.createErr = errors.New("read-only database")
	_, err := te.Start(context.Background(), StartRequest{QuestionType: "verbal", Mode: ByCount, Input: "10"})
	require.Error(t, err)
	assert.Zero(t, te.registry.Len())
}

func TestEngine_ShortDrawUsesWhatIsAvailable(t *testing.T) {
	te := newTestEngine(makeBank(4, "verbal"))
	s := startTest(t, te, ByCount, "10")
	assert.Len(t, s.Questions, 4)
	assert.Equal(t, 10, s.Requested)
}

func TestEngine_DuplicateSubmissionNotCounted(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")

	first := s.Questions[0].ID
	_, err := te.Submit(ctx, s.ID, first, "ب")
	require.NoError(t, err)

	_, err = te.Submit(ctx, s.ID, first, "ب")
	require.ErrorIs(t, err, ErrStaleAnswer)

	got, err := te.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, 1, got.Answered)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, 1, te.answers.count())
}

func TestEngine_ConcurrentDuplicateSubmissions(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	s := startTest(t, te, ByCount, "10")
	first := s.Questions[0].ID

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = te.Submit(context.Background(), s.ID, first, "ب")
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, ErrStaleAnswer)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, te.answers.count())
}

func TestEngine_DeadlineMidSession(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")

	for i := 0; i < 3; i++ {
		te.clock.Advance(time.Minute)
		answer(t, te, s.ID, "ب")
	}

	te.clock.Advance(time.Hour)
	got, err := te.Get(ctx, s.ID)
	require.NoError(t, err)
	step, err := te.Submit(ctx, s.ID, got.Questions[3].ID, "ب")
	require.NoError(t, err)

	require.NotNil(t, step.Report)
	assert.Nil(t, step.Outcome)
	assert.Nil(t, step.Presentation)
	assert.True(t, step.Report.TimedOut)
	assert.Equal(t, 3, step.Report.Total)
	assert.Equal(t, 3, step.Report.Score)
	assert.Equal(t, 10, step.Report.Requested)
	assert.InDelta(t, 100.0, step.Report.Percentage, 1e-9)

	// The late answer was not recorded.
	assert.Equal(t, 3, te.answers.count())
	require.Len(t, te.sessions.results, 1)
	assert.Equal(t, 3, te.sessions.results[0].Answered)
}

func TestEngine_PresentAfterDeadline(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByTime, "12")

	te.clock.Advance(13 * time.Minute)
	step, err := te.Present(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Report)
	assert.True(t, step.Report.TimedOut)
	assert.Zero(t, step.Report.Total)
	assert.Zero(t, step.Report.Points)

	_, err = te.Present(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestEngine_FinalizeFailureKeepsProgress(t *testing.T) {
	te := newTestEngine(makeBank(1, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")
	te.sessions.finalizeErr = errors.New("disk I/O error")

	_, err := te.Submit(ctx, s.ID, s.Questions[0].ID, "ب")
	require.Error(t, err)

	got, err := te.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePresenting, got.State)
	assert.Equal(t, 1, got.Answered)
	assert.Equal(t, 1, got.Index)

	// Presenting again retries the finalize.
	te.sessions.finalizeErr = nil
	step, err := te.Present(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Report)
	assert.Equal(t, 1, step.Report.Score)
}

func TestEngine_Transitions(t *testing.T) {
	te := newTestEngine(makeBank(1, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")

	assert.ErrorIs(t, te.ChooseArtifact(ctx, s.ID), ErrInvalidTransition)

	step := answer(t, te, s.ID, "ب")
	require.NotNil(t, step.Report)

	assert.ErrorIs(t, te.ChooseAssistance(ctx, s.ID, true), ErrInvalidTransition)
	require.NoError(t, te.ChooseArtifact(ctx, s.ID))
	assert.ErrorIs(t, te.ChooseArtifact(ctx, s.ID), ErrInvalidTransition)
	assert.ErrorIs(t, te.Cancel(ctx, s.ID), ErrInvalidTransition)

	require.NoError(t, te.ChooseAssistance(ctx, s.ID, true))
	got, err := te.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateChatting, got.State)

	require.NoError(t, te.EndChat(ctx, s.ID))
	_, err = te.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Zero(t, te.registry.Len())
}

func TestEngine_DeclineAssistanceCloses(t *testing.T) {
	te := newTestEngine(makeBank(1, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")
	answer(t, te, s.ID, "أ")

	require.NoError(t, te.ChooseArtifact(ctx, s.ID))
	require.NoError(t, te.ChooseAssistance(ctx, s.ID, false))
	assert.Zero(t, te.registry.Len())
}

func TestEngine_Cancel(t *testing.T) {
	te := newTestEngine(makeBank(30, "verbal"))
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")
	answer(t, te, s.ID, "ب")

	require.NoError(t, te.Cancel(ctx, s.ID))
	assert.Equal(t, 1, te.observer.cancelled)
	assert.Zero(t, te.registry.Len())
	assert.Empty(t, te.sessions.results)

	_, err := te.Submit(ctx, s.ID, s.Questions[1].ID, "ب")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestEngine_ShuffledChoicesEvaluateByLabel(t *testing.T) {
	te := newTestEngine(makeBank(2, "verbal"))
	te.shuffle = reverseShuffle
	ctx := context.Background()
	s := startTest(t, te, ByCount, "10")

	step, err := te.Present(ctx, s.ID)
	require.NoError(t, err)
	// ب is now displayed third; submitting by label is still correct.
	assert.Equal(t, LabelB, step.Presentation.Choices[2].Label)
	step, err = te.Submit(ctx, s.ID, step.Presentation.Question.ID, "ب")
	require.NoError(t, err)
	assert.True(t, step.Outcome.Correct)
}

func TestEngine_UnknownSession(t *testing.T) {
	te := newTestEngine(nil)
	ctx := context.Background()
	_, err := te.Present(ctx, 404)
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = te.Submit(ctx, 404, 1, "أ")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestEngine_OptionsApplyInOrder(t *testing.T) {
	later := t0.Add(time.Hour)
	opts := []EngineOption{
		WithClock(func() time.Time { return t0 }),
		WithShuffler(identityShuffle),
		WithClock(func() time.Time { return later }),
	}
	e := NewEngine(&mockQuestions{bank: makeBank(10, "verbal")}, &mockSessions{}, &mockAnswers{},
		NewMemoryRegistry(WithRegistryClock(func() time.Time { return later })), opts...)

	s, err := e.Start(context.Background(), StartRequest{
		UserID: 1, ChatID: 1, Kind: KindTest, QuestionType: "verbal", Mode: ByCount, Input: "10",
	})
	require.NoError(t, err)
	assert.True(t, s.StartedAt.Equal(later), "the last clock wins")

	step, err := e.Present(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Presentation)
	p := step.Presentation
	assert.Equal(t, p.Question.Options, p.Choices, "the identity shuffler keeps option order")
	assert.Equal(t, Option{Label: LabelA, Text: "خيار أ"}, p.Choices[0])
}

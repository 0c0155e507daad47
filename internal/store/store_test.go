package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedQuestions imports n questions of questionType into one main category
// with one subcategory.
func seedQuestions(t *testing.T, s *Store, questionType, mainCat, subCat string, passages ...string) {
	t.Helper()
	var items []QuestionImport
	for i, p := range passages {
		items = append(items, QuestionImport{
			Question: Question{
				CorrectAnswer: "أ",
				Text:          "سؤال " + questionType + " " + string(rune('0'+i)),
				OptionA:       "1",
				OptionB:       "2",
				OptionC:       "3",
				OptionD:       "4",
				Type:          questionType,
				PassageName:   p,
			},
			MainCategory:  mainCat,
			Subcategories: []string{subCat},
		})
	}
	if _, err := s.QuestionRepo().Import(context.Background(), items); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
}

func registerUser(t *testing.T, s *Store, id int64) {
	t.Helper()
	if err := s.UserRepo().Register(context.Background(), User{ID: id, Name: "سارة"}); err != nil {
		t.Fatalf("register user: %v", err)
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestPragmaDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"a.db", "a.db?_pragma=journal_mode%28WAL%29&_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29&_pragma=synchronous%28NORMAL%29"},
		{"file:a.db?mode=rwc", "file:a.db?mode=rwc&_pragma=journal_mode%28WAL%29&_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29&_pragma=synchronous%28NORMAL%29"},
		{"a.db?_pragma=foreign_keys(1)", "a.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := pragmaDSN(tt.dsn); got != tt.want {
			t.Errorf("pragmaDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table.Name, err)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 0},
		{5, 5, 1},
		{6, 5, 2},
		{11, 10, 2},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestPageOffset(t *testing.T) {
	if got := (Page{Number: 3, Size: 5}).Offset(); got != 10 {
		t.Errorf("offset = %d, want 10", got)
	}
	if got := (Page{Number: 0, Size: 5}).Offset(); got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

func TestLLMEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"level-feedback", "assistant-chat", "assistant-chat"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock",
			Purpose:      purpose,
			InputTokens:  10,
			OutputTokens: 5,
			LatencyMs:    100,
			Success:      true,
			RequestBody:  "[user]\nhi",
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "assistant-chat"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID < events[1].ID {
		t.Errorf("events not newest first: %d before %d", events[0].ID, events[1].ID)
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != "[user]\nhi" {
		t.Errorf("request body = %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event")
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(usage))
	}
	if usage[0].Key != "assistant-chat" || usage[0].Calls != 2 || usage[0].InputTokens != 20 {
		t.Errorf("usage[0] = %+v", usage[0])
	}
	if usage[0].AvgLatencyMs != 100 {
		t.Errorf("avg latency = %d, want 100", usage[0].AvgLatencyMs)
	}
}

func TestChatHistory(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 7)
	repo := s.ChatRepo()
	ctx := context.Background()

	for _, m := range []struct{ role, content string }{
		{"user", "1"}, {"assistant", "2"}, {"user", "3"},
	} {
		if err := repo.Append(ctx, ChatMessage{UserID: 7, Role: m.role, Content: m.content}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 7, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "2" || recent[1].Content != "3" {
		t.Errorf("recent = %+v, want [2 3] in order", recent)
	}

	if err := repo.Clear(ctx, 7); err != nil {
		t.Fatalf("clear: %v", err)
	}
	recent, err = repo.Recent(ctx, 7, 0)
	if err != nil {
		t.Fatalf("recent after clear: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("recent after clear = %d, want 0", len(recent))
	}
}

func TestUserRegisterKeepsStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	registerUser(t, s, 42)
	if err := repo.SetGender(ctx, 42, "female"); err != nil {
		t.Fatalf("set gender: %v", err)
	}
	if err := repo.Register(ctx, User{ID: 42, Name: "سارة أحمد", Username: "sara"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	u, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Name != "سارة أحمد" || u.Username != "sara" {
		t.Errorf("name = %q username = %q", u.Name, u.Username)
	}
	if u.Gender != "female" {
		t.Errorf("gender = %q, want female", u.Gender)
	}
	if u.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	none, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if none != nil {
		t.Error("expected nil for unknown user")
	}
}

func TestSetSubscriptionEnd(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()
	registerUser(t, s, 8)

	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.SetSubscriptionEnd(ctx, 8, end); err != nil {
		t.Fatalf("set subscription end: %v", err)
	}
	u, err := repo.Get(ctx, 8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !u.SubscriptionEnd.Equal(end) {
		t.Errorf("subscription end = %v, want %v", u.SubscriptionEnd, end)
	}

	if err := repo.SetSubscriptionEnd(ctx, 8, time.Time{}); err != nil {
		t.Fatalf("clear subscription end: %v", err)
	}
	u, err = repo.Get(ctx, 8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !u.SubscriptionEnd.IsZero() {
		t.Errorf("subscription end = %v, want zero", u.SubscriptionEnd)
	}
}

func TestClaimDailyGiftOncePerDay(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()
	registerUser(t, s, 5)

	n, ok, err := repo.ClaimDailyGift(ctx, 5, "2026-10-18")
	if err != nil || !ok || n != 1 {
		t.Fatalf("first claim = (%d, %v, %v), want (1, true, nil)", n, ok, err)
	}
	n, ok, err = repo.ClaimDailyGift(ctx, 5, "2026-10-18")
	if err != nil || ok || n != 1 {
		t.Fatalf("second claim = (%d, %v, %v), want (1, false, nil)", n, ok, err)
	}
	n, ok, err = repo.ClaimDailyGift(ctx, 5, "2026-10-19")
	if err != nil || !ok || n != 2 {
		t.Fatalf("next day claim = (%d, %v, %v), want (2, true, nil)", n, ok, err)
	}
}

func TestSessionCreateGetAndOrdinal(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 1)
	repo := s.SessionRepo()
	ctx := context.Background()

	start := time.Unix(1_700_000_000, 0)
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Create(ctx, SessionRecord{
			UserID:       1,
			Kind:         KindTest,
			QuestionType: "verbal",
			NumQuestions: 10,
			CreatedAt:    start.Add(time.Duration(i) * time.Hour),
			Deadline:     start.Add(time.Duration(i)*time.Hour + 15*time.Minute),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, id)
	}

	rec, err := repo.Get(ctx, ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.NumQuestions != 10 || rec.Kind != KindTest || rec.Finished() {
		t.Errorf("record = %+v", rec)
	}
	if !rec.Deadline.Equal(start.Add(time.Hour + 15*time.Minute)) {
		t.Errorf("deadline = %v", rec.Deadline)
	}

	ord, err := repo.Ordinal(ctx, *rec)
	if err != nil {
		t.Fatalf("ordinal: %v", err)
	}
	if ord != 2 {
		t.Errorf("ordinal = %d, want 2", ord)
	}

	missing, err := repo.Get(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("get missing = (%v, %v), want (nil, nil)", missing, err)
	}
}

func TestSessionFinalizeUpdatesUserAtomically(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 1)
	ctx := context.Background()
	repo := s.SessionRepo()

	now := time.Unix(1_700_000_000, 0)
	finalize := func(answered, score int, pct float64) error {
		id, err := repo.Create(ctx, SessionRecord{
			UserID: 1, Kind: KindLevelDetermination, NumQuestions: 10,
			CreatedAt: now, Deadline: now.Add(15 * time.Minute),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return repo.Finalize(ctx, SessionResult{
			SessionID: id, UserID: 1, Score: score, Answered: answered,
			Percentage: pct, Elapsed: 90 * time.Second, Points: 50,
			FinishedAt: now.Add(90 * time.Second),
		})
	}

	if err := finalize(10, 7, 70); err != nil {
		t.Fatalf("finalize 1: %v", err)
	}
	if err := finalize(30, 30, 100); err != nil {
		t.Fatalf("finalize 2: %v", err)
	}

	u, err := s.UserRepo().Get(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.AnsweredQuestions != 40 {
		t.Errorf("answered = %d, want 40", u.AnsweredQuestions)
	}
	if u.Points != 100 {
		t.Errorf("points = %d, want 100", u.Points)
	}
	if u.UsageSeconds != 180 {
		t.Errorf("usage = %v, want 180", u.UsageSeconds)
	}
	// (70*10 + 100*30) / 40
	if u.ExpectedPercentage != 92.5 {
		t.Errorf("expected percentage = %v, want 92.5", u.ExpectedPercentage)
	}
}

func TestSessionFinalizeTwiceRollsBack(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 1)
	ctx := context.Background()
	repo := s.SessionRepo()

	now := time.Unix(1_700_000_000, 0)
	id, err := repo.Create(ctx, SessionRecord{
		UserID: 1, Kind: KindTest, NumQuestions: 10,
		CreatedAt: now, Deadline: now.Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res := SessionResult{
		SessionID: id, UserID: 1, Score: 3, Answered: 3, Percentage: 100,
		Elapsed: time.Minute, Points: 15, FinishedAt: now.Add(time.Minute),
	}
	if err := repo.Finalize(ctx, res); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := repo.Finalize(ctx, res); err == nil {
		t.Fatal("second finalize succeeded, want ErrAlreadyFinalized")
	}

	u, _ := s.UserRepo().Get(ctx, 1)
	if u.Points != 15 || u.AnsweredQuestions != 3 {
		t.Errorf("user stats changed by rejected finalize: points=%d answered=%d", u.Points, u.AnsweredQuestions)
	}
}

func TestSessionFinalizeUnknownUser(t *testing.T) {
	s := openTestStore(t)
	err := s.SessionRepo().Finalize(context.Background(), SessionResult{SessionID: 1, UserID: 404})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestSessionSummariesCountAnswers(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 1)
	seedQuestions(t, s, "verbal", "استيعاب", "قراءة", "-", "-", "-")
	ctx := context.Background()
	sessions := s.SessionRepo()

	now := time.Unix(1_700_000_000, 0)
	var ids []int64
	for i := 0; i < 6; i++ {
		id, err := sessions.Create(ctx, SessionRecord{
			UserID: 1, Kind: KindTest, NumQuestions: 3,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			Deadline:  now.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, id)
	}

	qs, err := s.QuestionRepo().Random(ctx, QuestionFilter{Type: "verbal"}, 3)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	answers := s.AnswerRepo()
	for i, q := range qs {
		err := answers.Append(ctx, AnswerRecord{
			UserID: 1, SessionID: ids[5], QuestionID: q.ID,
			UserAnswer: "أ", IsCorrect: i != 1,
		})
		if err != nil {
			t.Fatalf("append answer: %v", err)
		}
	}

	page, total, err := sessions.ListByUser(ctx, 1, KindTest, Page{Number: 1, Size: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 6 || len(page) != 5 {
		t.Fatalf("total = %d len = %d, want 6 and 5", total, len(page))
	}
	if page[0].ID != ids[5] {
		t.Errorf("first row = %d, want newest %d", page[0].ID, ids[5])
	}
	if page[0].Correct != 2 || page[0].TotalAnswered != 3 {
		t.Errorf("counts = %d/%d, want 2/3", page[0].Correct, page[0].TotalAnswered)
	}
	if page[1].TotalAnswered != 0 {
		t.Errorf("empty session answered = %d, want 0", page[1].TotalAnswered)
	}

	second, _, err := sessions.ListByUser(ctx, 1, KindTest, Page{Number: 2, Size: 5})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second) != 1 || second[0].ID != ids[0] {
		t.Errorf("page 2 = %+v", second)
	}

	sum, err := sessions.Summary(ctx, ids[5])
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Correct != 2 {
		t.Errorf("summary correct = %d, want 2", sum.Correct)
	}

	list, err := answers.ListBySession(ctx, ids[5])
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(list) != 3 || list[1].IsCorrect {
		t.Errorf("answers = %+v", list)
	}
}

func TestSetArtifact(t *testing.T) {
	s := openTestStore(t)
	registerUser(t, s, 1)
	ctx := context.Background()
	repo := s.SessionRepo()
	now := time.Now()

	id, err := repo.Create(ctx, SessionRecord{UserID: 1, Kind: KindTest, NumQuestions: 10, CreatedAt: now, Deadline: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SetArtifact(ctx, id, "pdf", "/tmp/r.pdf"); err != nil {
		t.Fatalf("set pdf: %v", err)
	}
	if err := repo.SetArtifact(ctx, id, "video", "/tmp/r.mp4"); err != nil {
		t.Fatalf("set video: %v", err)
	}
	if err := repo.SetArtifact(ctx, id, "gif", "x"); err == nil {
		t.Error("expected error for unknown format")
	}

	rec, _ := repo.Get(ctx, id)
	if rec.PDFPath != "/tmp/r.pdf" || rec.VideoPath != "/tmp/r.mp4" {
		t.Errorf("paths = %q %q", rec.PDFPath, rec.VideoPath)
	}
}

func TestRunningPercentage(t *testing.T) {
	tests := []struct {
		current  float64
		before   int
		pct      float64
		answered int
		want     float64
	}{
		{0, 0, 70, 10, 70},
		{70, 10, 100, 30, 92.5},
		{50, 4, 0, 0, 50},
		{0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := RunningPercentage(tt.current, tt.before, tt.pct, tt.answered); got != tt.want {
			t.Errorf("RunningPercentage(%v, %d, %v, %d) = %v, want %v",
				tt.current, tt.before, tt.pct, tt.answered, got, tt.want)
		}
	}
}

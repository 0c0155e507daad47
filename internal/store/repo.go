package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match (empty = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// Page selects a window of rows. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages of size are needed for total rows.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// User is a registered bot user and their accumulated statistics.
type User struct {
	ID                 int64 // Telegram user id
	Name               string
	Username           string
	Phone              string
	Gender             string
	Points             int
	UsageSeconds       float64
	AnsweredQuestions  int
	ExpectedPercentage float64
	DailyGiftsUsed     int
	LastGiftDay        string // YYYY-MM-DD of the last claimed gift
	SubscriptionEnd    time.Time
	CreatedAt          time.Time
}

// UserRepo manages user rows.
type UserRepo interface {
	// Register inserts the user or refreshes the name and username of an
	// existing one. Statistics are never touched.
	Register(ctx context.Context, u User) error

	// Get returns the user, or nil if not registered.
	Get(ctx context.Context, id int64) (*User, error)

	// SetGender stores the user's gender ("male" or "female").
	SetGender(ctx context.Context, id int64, gender string) error

	// SetPhone stores the user's phone number.
	SetPhone(ctx context.Context, id int64, phone string) error

	// SetSubscriptionEnd stores when the user's subscription runs out.
	SetSubscriptionEnd(ctx context.Context, id int64, end time.Time) error

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)

	// ClaimDailyGift increments the gift counter if no gift was claimed on
	// day. It returns the new counter and whether the claim happened.
	ClaimDailyGift(ctx context.Context, id int64, day string) (int, bool, error)
}

// Category is a main category or a subcategory.
type Category struct {
	ID   int64
	Name string
}

// CategoryRepo lists categories for the test setup flow.
type CategoryRepo interface {
	// ListMain returns main categories that own at least one question of
	// questionType, plus the total count of such categories.
	ListMain(ctx context.Context, questionType string, page Page) ([]Category, int, error)

	// ListSub returns subcategories and their total count.
	ListSub(ctx context.Context, page Page) ([]Category, int, error)

	// MainName returns the main category name, or "" if unknown.
	MainName(ctx context.Context, id int64) (string, error)

	// SubName returns the subcategory name, or "" if unknown.
	SubName(ctx context.Context, id int64) (string, error)
}

// Question types.
const (
	QuestionTypeVerbal       = "verbal"
	QuestionTypeQuantitative = "quantitative"
)

// Question is one row of the question bank.
type Question struct {
	ID             int64
	CorrectAnswer  string
	Text           string
	OptionA        string
	OptionB        string
	OptionC        string
	OptionD        string
	Explanation    string
	Type           string
	ImagePath      string
	PassageName    string
	MainCategoryID int64
}

// QuestionFilter narrows a random draw. An empty Type matches every type.
// Zero ids mean no category filter; SubcategoryID takes precedence over
// MainCategoryID.
type QuestionFilter struct {
	Type           string
	MainCategoryID int64
	SubcategoryID  int64
}

// QuestionImport is a question plus the category names it belongs to.
type QuestionImport struct {
	Question
	MainCategory  string
	Subcategories []string
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Questions      int
	MainCategories int
	Subcategories  int
}

// QuestionRepo reads and writes the question bank.
type QuestionRepo interface {
	// Random draws up to n questions uniformly at random without replacement.
	Random(ctx context.Context, f QuestionFilter, n int) ([]Question, error)

	// Get returns a question, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*Question, error)

	// Count returns the number of questions of questionType ("" = all).
	Count(ctx context.Context, questionType string) (int, error)

	// Import inserts all questions and their categories in one transaction.
	Import(ctx context.Context, items []QuestionImport) (ImportResult, error)
}

// Session kinds.
const (
	KindLevelDetermination = "level_determination"
	KindTest               = "test"
)

// SessionRecord is a persisted quiz session.
type SessionRecord struct {
	ID           int64
	UserID       int64
	Kind         string
	QuestionType string
	CategoryKind string // "main", "sub" or ""
	CategoryID   int64
	NumQuestions int
	CreatedAt    time.Time
	Deadline     time.Time
	Score        int
	Answered     int
	Percentage   float64
	TimeTaken    float64 // seconds
	PDFPath      string
	VideoPath    string
	FinishedAt   time.Time // zero while the session is open
}

// Finished reports whether the session was finalized.
func (r SessionRecord) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// SessionResult is everything the finalizer persists in one transaction.
type SessionResult struct {
	SessionID  int64
	UserID     int64
	Score      int
	Answered   int
	Percentage float64
	Elapsed    time.Duration
	Points     int
	FinishedAt time.Time
}

// SessionSummary is a row of the previous-tests listing.
type SessionSummary struct {
	SessionRecord
	Correct       int // answers marked correct
	TotalAnswered int // answer rows recorded
}

// SessionRepo manages quiz session rows.
type SessionRepo interface {
	// Create inserts a new session and returns its id.
	Create(ctx context.Context, rec SessionRecord) (int64, error)

	// Get returns a session, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*SessionRecord, error)

	// Finalize writes the user's usage time, answered count, expected
	// percentage and points, then the session's final fields, atomically.
	Finalize(ctx context.Context, res SessionResult) error

	// SetArtifact stores the path of a generated "pdf" or "video" file.
	SetArtifact(ctx context.Context, id int64, format, path string) error

	// ListByUser returns the user's sessions of kind, newest first.
	ListByUser(ctx context.Context, userID int64, kind string, page Page) ([]SessionSummary, int, error)

	// Summary returns one session with its answer counts.
	Summary(ctx context.Context, id int64) (*SessionSummary, error)

	// Ordinal returns the 1-based position of the session among the
	// user's sessions of the same kind.
	Ordinal(ctx context.Context, rec SessionRecord) (int, error)
}

// AnswerRecord is one submitted answer.
type AnswerRecord struct {
	ID         int64
	UserID     int64
	SessionID  int64
	QuestionID int64
	UserAnswer string
	IsCorrect  bool
	CreatedAt  time.Time
}

// AnsweredQuestion joins an answer with its question for reports.
type AnsweredQuestion struct {
	Question
	UserAnswer string
	IsCorrect  bool
}

// AnswerRepo records answers.
type AnswerRepo interface {
	// Append records one answer.
	Append(ctx context.Context, rec AnswerRecord) error

	// ListBySession returns the session's answers joined with their
	// questions, in submission order.
	ListBySession(ctx context.Context, sessionID int64) ([]AnsweredQuestion, error)
}

// ChatMessage is one turn of the AI assistant conversation.
type ChatMessage struct {
	ID        int64
	UserID    int64
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

// ChatRepo persists assistant conversations.
type ChatRepo interface {
	Append(ctx context.Context, msg ChatMessage) error
	// Recent returns the last limit messages in chronological order.
	Recent(ctx context.Context, userID int64, limit int) ([]ChatMessage, error)
	Clear(ctx context.Context, userID int64) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage by purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

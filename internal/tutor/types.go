package tutor

import "time"

// QuestionResult is one answered question of a finished session.
type QuestionResult struct {
	Text          string
	Category      string
	Type          string
	CorrectAnswer string
	UserAnswer    string
	Correct       bool
}

// FeedbackInput is what the feedback prompt is built from.
type FeedbackInput struct {
	UserID    int64
	Score     int
	Total     int
	Elapsed   time.Duration
	Questions []QuestionResult
}

// Analysis is the structured feedback returned by the model.
type Analysis struct {
	Summary   string   `json:"summary"`
	WeakAreas []string `json:"weak_areas"`
	StudyPlan []string `json:"study_plan"`
}

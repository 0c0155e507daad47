package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/qudurat/qudurat/internal/store"
)

// ErrUnknownSession is returned for a session id with no row.
var ErrUnknownSession = errors.New("unknown session")

// SessionSource is the part of store.SessionRepo the service needs.
type SessionSource interface {
	Get(ctx context.Context, id int64) (*store.SessionRecord, error)
	Ordinal(ctx context.Context, rec store.SessionRecord) (int, error)
	SetArtifact(ctx context.Context, id int64, format, path string) error
}

// AnswerSource lists a session's answers.
type AnswerSource interface {
	ListBySession(ctx context.Context, sessionID int64) ([]store.AnsweredQuestion, error)
}

// UserSource looks up the student.
type UserSource interface {
	Get(ctx context.Context, id int64) (*store.User, error)
}

// Service produces artifacts for stored sessions.
type Service struct {
	renderer *Renderer
	sessions SessionSource
	answers  AnswerSource
	users    UserSource
	logger   *slog.Logger
}

// NewService wires a Service.
func NewService(renderer *Renderer, sessions SessionSource, answers AnswerSource, users UserSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{renderer: renderer, sessions: sessions, answers: answers, users: users, logger: logger}
}

// Data assembles the report for a session from storage.
func (s *Service) Data(ctx context.Context, rec store.SessionRecord) (ReportData, error) {
	answers, err := s.answers.ListBySession(ctx, rec.ID)
	if err != nil {
		return ReportData{}, fmt.Errorf("list answers: %w", err)
	}
	ordinal, err := s.sessions.Ordinal(ctx, rec)
	if err != nil {
		return ReportData{}, fmt.Errorf("session ordinal: %w", err)
	}

	data := ReportData{
		KindLabel:  KindLabel(rec.Kind),
		TestNumber: ordinal,
		Date:       rec.CreatedAt,
		Count:      rec.NumQuestions,
		Result:     ResultLine(rec),
		Items:      ItemsFrom(answers),
	}
	u, err := s.users.Get(ctx, rec.UserID)
	if err != nil {
		return ReportData{}, fmt.Errorf("get user: %w", err)
	}
	if u != nil {
		data.StudentName = u.Name
		data.Phone = u.Phone
	}
	return data, nil
}

// Ensure returns the session's artifact of format, rendering it when the
// stored path is empty or the file is gone. An empty path with a nil
// error means the artifact cannot be produced right now.
func (s *Service) Ensure(ctx context.Context, sessionID int64, format string) (string, error) {
	if format != FormatPDF && format != FormatVideo {
		return "", fmt.Errorf("unknown artifact format %q", format)
	}
	rec, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if rec == nil {
		return "", ErrUnknownSession
	}

	existing := rec.PDFPath
	if format == FormatVideo {
		existing = rec.VideoPath
	}
	if existing != "" {
		if _, err := os.Stat(existing); err == nil {
			return existing, nil
		}
		s.logger.Info("artifact missing, regenerating", "session_id", sessionID, "format", format, "path", existing)
	}

	data, err := s.Data(ctx, *rec)
	if err != nil {
		return "", err
	}

	var path string
	if format == FormatPDF {
		path = s.renderer.RenderPDF(ctx, sessionID, data)
	} else {
		path = s.renderer.RenderVideo(ctx, sessionID, data)
	}
	if path == "" {
		return "", nil
	}
	if err := s.sessions.SetArtifact(ctx, sessionID, format, path); err != nil {
		s.logger.Warn("artifact path not saved", "session_id", sessionID, "format", format, "error", err)
	}
	return path, nil
}

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/qudurat/qudurat/internal/artifact"
	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/store"
)

const historyDate = "2006-01-02 15:04"

// history handles the previous sessions list, their details and the
// report downloads.
func (b *Bot) history(ctx context.Context, p Press, cb callback) (bool, error) {
	switch cb.arg(0) {
	case "s":
		id, err := cb.int64Arg(1)
		if err != nil {
			return false, err
		}
		return false, b.historyDetails(ctx, p, id)
	case "f":
		id, err := cb.int64Arg(1)
		if err != nil {
			return false, err
		}
		return true, b.historyDownload(ctx, p, id, cb.arg(2))
	}
	kind, ok := kindFromCode(cb.arg(0))
	if !ok {
		return false, fmt.Errorf("unknown history kind %q", cb.arg(0))
	}
	return false, b.historyList(ctx, p, kind, cb.intArg(1, 1))
}

func (b *Bot) historyList(ctx context.Context, p Press, kind quiz.Kind, page int) error {
	items, total, err := b.Sessions.ListByUser(ctx, p.UserID, string(kind), store.Page{Number: page, Size: HistoryPerPage})
	if err != nil {
		return err
	}

	back := cbTests
	empty, title := MsgNoTests, MsgTestsPage
	if kind == quiz.KindLevelDetermination {
		back = cbLevel
		empty, title = MsgNoLevelTests, MsgLevelPage
	}
	if total == 0 {
		return b.edit(ctx, p, empty, Keyboard{row(btn(BtnBack, back))})
	}

	offset := store.Page{Number: page, Size: HistoryPerPage}.Offset()
	pages := store.TotalPages(total, HistoryPerPage)
	kb := make(Keyboard, 0, len(items)+2)
	for i, it := range items {
		label := fmt.Sprintf("اختبار %d - بتاريخ %s - النتيجة (%s)",
			total-offset-i, it.CreatedAt.Format(historyDate), resultLabel(it.SessionRecord))
		kb = append(kb, row(btn(label, fmt.Sprintf("hist:s:%d", it.ID))))
	}
	code := kindCode(kind)
	if nav := pager(page, pages, func(n int) string { return fmt.Sprintf("hist:%s:%d", code, n) }); nav != nil {
		kb = append(kb, nav)
	}
	kb = append(kb, row(btn(BtnBack, back)))
	return b.edit(ctx, p, fmt.Sprintf(title, page, pages), kb)
}

func resultLabel(rec store.SessionRecord) string {
	if rec.Kind == store.KindLevelDetermination {
		return fmt.Sprintf("%.1f%%", rec.Percentage)
	}
	return fmt.Sprintf("%d/%d", rec.Score, rec.NumQuestions)
}

// ownSummary loads a session summary and hides other users' sessions.
func (b *Bot) ownSummary(ctx context.Context, userID, id int64) (*store.SessionSummary, error) {
	s, err := b.Sessions.Summary(ctx, id)
	if err != nil || s == nil || s.UserID != userID {
		return nil, err
	}
	return s, nil
}

func (b *Bot) historyDetails(ctx context.Context, p Press, id int64) error {
	s, err := b.ownSummary(ctx, p.UserID, id)
	if err != nil {
		return err
	}
	if s == nil {
		return b.edit(ctx, p, MsgTestNotFound, menuOnlyKeyboard())
	}
	return b.edit(ctx, p, detailsText(*s), detailsKeyboard(s.SessionRecord))
}

func detailsText(s store.SessionSummary) string {
	secs := int(s.TimeTaken)
	pct := quiz.Percentage(s.Score, s.NumQuestions)
	if s.Kind == store.KindLevelDetermination {
		pct = s.Percentage
	}

	var sb strings.Builder
	sb.WriteString("📊 تفاصيل الاختبار\n\n")
	fmt.Fprintf(&sb, "📅 التاريخ: %s\n", s.CreatedAt.Format("2006/01/02 15:04"))
	fmt.Fprintf(&sb, "📝 عدد الأسئلة: %d\n", s.NumQuestions)
	fmt.Fprintf(&sb, "✅ الإجابات الصحيحة: %d\n", s.Correct)
	fmt.Fprintf(&sb, "📊 النتيجة النهائية: %d/%d (%.1f%%)\n", s.Score, s.NumQuestions, pct)
	fmt.Fprintf(&sb, "⏱ الوقت المستغرق: %d دقيقة و%d ثانية\n", secs/60, secs%60)
	fmt.Fprintf(&sb, "📋 الأسئلة المجاب عليها: %d/%d", s.TotalAnswered, s.NumQuestions)
	return sb.String()
}

// historyDownload sends the stored report, rendering it again when the
// file is gone.
func (b *Bot) historyDownload(ctx context.Context, p Press, id int64, format string) error {
	if format != artifact.FormatPDF && format != artifact.FormatVideo {
		b.ack(ctx, p, MsgGenericError, false)
		return nil
	}
	s, err := b.ownSummary(ctx, p.UserID, id)
	if err != nil {
		b.ack(ctx, p, "", false)
		return err
	}
	if s == nil {
		b.ack(ctx, p, MsgTestNotFound, false)
		return nil
	}
	b.ack(ctx, p, "", false)

	// The details message stays; progress goes to a new message.
	b.deliver(ctx, Press{UserID: p.UserID, ChatID: p.ChatID}, id, format)
	return nil
}

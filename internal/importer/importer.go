// Package importer loads question banks from Excel workbooks.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qudurat/qudurat/internal/quiz"
	"github.com/qudurat/qudurat/internal/store"
)

// Question types.
const (
	TypeVerbal       = store.QuestionTypeVerbal
	TypeQuantitative = store.QuestionTypeQuantitative
)

// Column headers of a question bank sheet.
const (
	ColCorrect       = "الجواب الصحيح"
	ColText          = "نص السؤال"
	ColOptionA       = "الخيار أ"
	ColOptionB       = "الخيار ب"
	ColOptionC       = "الخيار ج"
	ColOptionD       = "الخيار د"
	ColExplanation   = "الشرح"
	ColMainCategory  = "التصنيف الرئيسي"
	ColSubcategories = "التصنيفات الفرعية"
	ColPassage       = "القطعة"
	ColType          = "نوع السؤال"
	ColImage         = "الصورة"
)

var requiredColumns = []string{ColCorrect, ColText, ColOptionA, ColOptionB, ColOptionC, ColOptionD, ColMainCategory}

// RowError describes a skipped row. Row is 1-based as shown in Excel.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

// Result summarizes an import.
type Result struct {
	store.ImportResult
	Skipped []RowError
}

// Importer parses workbooks and writes them to a QuestionRepo.
type Importer struct {
	questions store.QuestionRepo
	logger    *slog.Logger
}

// New creates an Importer.
func New(questions store.QuestionRepo, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{questions: questions, logger: logger}
}

// ImportFile reads every sheet of path and imports the valid rows in one
// transaction. defaultType is used for rows without a type column value.
func (im *Importer) ImportFile(ctx context.Context, path, defaultType string) (Result, error) {
	items, skipped, err := ReadFile(path, defaultType)
	if err != nil {
		return Result{}, err
	}
	for _, s := range skipped {
		im.logger.Warn("row skipped", "file", path, "sheet", s.Sheet, "row", s.Row, "error", s.Err)
	}
	if len(items) == 0 {
		return Result{Skipped: skipped}, fmt.Errorf("no importable questions in %s", path)
	}

	res, err := im.questions.Import(ctx, items)
	if err != nil {
		return Result{Skipped: skipped}, err
	}
	im.logger.Info("questions imported", "file", path,
		"questions", res.Questions, "main_categories", res.MainCategories,
		"subcategories", res.Subcategories, "skipped", len(skipped))
	return Result{ImportResult: res, Skipped: skipped}, nil
}

// ReadFile parses all sheets of a workbook.
func ReadFile(path, defaultType string) ([]store.QuestionImport, []RowError, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var (
		items   []store.QuestionImport
		skipped []RowError
	)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		cols, err := headerIndex(rows[0])
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		for i, row := range rows[1:] {
			if blank(row) {
				continue
			}
			item, err := parseRow(row, cols, defaultType)
			if err != nil {
				skipped = append(skipped, RowError{Sheet: sheet, Row: i + 2, Err: err})
				continue
			}
			items = append(items, item)
		}
	}
	return items, skipped, nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func headerIndex(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, "، "))
	}
	return cols, nil
}

func parseRow(row []string, cols columns, defaultType string) (store.QuestionImport, error) {
	text := cols.get(row, ColText)
	if text == "" {
		return store.QuestionImport{}, fmt.Errorf("empty question text")
	}
	label, ok := quiz.ParseLabel(cols.get(row, ColCorrect))
	if !ok {
		return store.QuestionImport{}, fmt.Errorf("correct answer %q is not one of أ ب ج د", cols.get(row, ColCorrect))
	}
	main := cols.get(row, ColMainCategory)
	if main == "" {
		return store.QuestionImport{}, fmt.Errorf("empty main category")
	}
	qtype, err := NormalizeType(cols.get(row, ColType), defaultType)
	if err != nil {
		return store.QuestionImport{}, err
	}

	passage := cols.get(row, ColPassage)
	if passage == "" {
		passage = "-"
	}
	return store.QuestionImport{
		Question: store.Question{
			CorrectAnswer: string(label),
			Text:          text,
			OptionA:       cols.get(row, ColOptionA),
			OptionB:       cols.get(row, ColOptionB),
			OptionC:       cols.get(row, ColOptionC),
			OptionD:       cols.get(row, ColOptionD),
			Explanation:   cols.get(row, ColExplanation),
			Type:          qtype,
			ImagePath:     cols.get(row, ColImage),
			PassageName:   passage,
		},
		MainCategory:  main,
		Subcategories: SplitCategories(cols.get(row, ColSubcategories)),
	}, nil
}

// NormalizeType maps an Arabic or English type name to TypeVerbal or
// TypeQuantitative. An empty value falls back to def.
func NormalizeType(v, def string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		if def == "" {
			return "", fmt.Errorf("question type missing")
		}
		return NormalizeType(def, "")
	case TypeVerbal, "لفظي", "اللفظي":
		return TypeVerbal, nil
	case TypeQuantitative, "كمي", "الكمي":
		return TypeQuantitative, nil
	}
	return "", fmt.Errorf("unknown question type %q", v)
}

// SplitCategories splits a subcategory cell on Arabic or Latin commas.
func SplitCategories(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '،' || r == ',' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/qudurat/qudurat/internal/logging"
	"github.com/qudurat/qudurat/internal/store"
)

var header = []any{
	ColCorrect, ColText, ColOptionA, ColOptionB, ColOptionC, ColOptionD,
	ColExplanation, ColMainCategory, ColSubcategories, ColPassage, ColType,
}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeWorkbook(t,
		[]any{"ب", "٢ + ٢ = ؟", "3", "4", "5", "6", "جمع", "الحساب", "الجمع، الأعداد", "", "كمي"},
		[]any{"c", "ضد قوي", "متين", "صلب", "ضعيف", "شديد", "", "التضاد", "", "القطعة الأولى", ""},
		[]any{},
		[]any{"هـ", "سؤال بلا إجابة صحيحة", "1", "2", "3", "4", "", "الحساب", "", "", "كمي"},
		[]any{"أ", "", "1", "2", "3", "4", "", "الحساب", "", "", "كمي"},
	)

	items, skipped, err := ReadFile(path, TypeVerbal)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "ب", first.CorrectAnswer)
	assert.Equal(t, TypeQuantitative, first.Type)
	assert.Equal(t, "-", first.PassageName)
	assert.Equal(t, []string{"الجمع", "الأعداد"}, first.Subcategories)

	second := items[1]
	assert.Equal(t, "ج", second.CorrectAnswer, "latin labels are normalized")
	assert.Equal(t, TypeVerbal, second.Type, "empty type uses the default")
	assert.Equal(t, "القطعة الأولى", second.PassageName)

	require.Len(t, skipped, 2)
	assert.Equal(t, 5, skipped[0].Row)
	assert.Equal(t, 6, skipped[1].Row)
}

func TestReadFile_MissingColumns(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	short := []any{ColText, ColCorrect}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &short))
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, f.SaveAs(path))
	f.Close()

	_, _, err := ReadFile(path, TypeVerbal)
	assert.ErrorContains(t, err, ColMainCategory)
}

func TestImportFile(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	path := writeWorkbook(t,
		[]any{"أ", "س١", "1", "2", "3", "4", "", "الجبر", "المعادلات", "", "كمي"},
		[]any{"د", "س٢", "1", "2", "3", "4", "", "الجبر", "المعادلات،المتباينات", "", "كمي"},
		[]any{"ب", "س٣", "1", "2", "3", "4", "", "الهندسة", "", "", "كمي"},
	)

	im := New(s.QuestionRepo(), logging.Discard())
	res, err := im.ImportFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Questions)
	assert.Equal(t, 2, res.MainCategories)
	assert.Equal(t, 2, res.Subcategories)
	assert.Empty(t, res.Skipped)

	n, err := s.QuestionRepo().Count(context.Background(), TypeQuantitative)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImportFile_NothingValid(t *testing.T) {
	path := writeWorkbook(t, []any{"ز", "س", "1", "2", "3", "4", "", "الجبر", "", "", "كمي"})
	im := New(nil, logging.Discard())

	res, err := im.ImportFile(context.Background(), path, "")
	assert.Error(t, err)
	assert.Len(t, res.Skipped, 1)
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in, def string
		want    string
		wantErr bool
	}{
		{"لفظي", "", TypeVerbal, false},
		{"الكمي", "", TypeQuantitative, false},
		{"Quantitative", "", TypeQuantitative, false},
		{"", "verbal", TypeVerbal, false},
		{"", "", "", true},
		{"علوم", "", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeType(tt.in, tt.def)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeType(%q, %q) error = %v, wantErr %v", tt.in, tt.def, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeType(%q, %q) = %q, want %q", tt.in, tt.def, got, tt.want)
		}
	}
}

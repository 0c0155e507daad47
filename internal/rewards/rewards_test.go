package rewards

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudurat/qudurat/internal/store"
)

func TestStatsFor(t *testing.T) {
	s := StatsFor(store.User{
		Points:             340,
		ExpectedPercentage: 72.6,
		UsageSeconds:       5400 + 36,
		AnsweredQuestions:  55,
	})
	assert.Equal(t, Stats{Points: 340, Percentage: 73, StudyHours: 1.51, Answered: 55}, s)
}

func TestProgressLine(t *testing.T) {
	s := Stats{Points: 120, Percentage: 80, StudyHours: 2.5, Answered: 40}

	got := ProgressLine(s, Target{Metric: MetricPercentage, Value: 75, Reward: "شارة التميز"})
	assert.Equal(t, "✅ - شارة التميز: حققت 80 % من 75 % المطلوبة من النسبة المئوية.", got)

	got = ProgressLine(s, Target{Metric: MetricStudyHours, Value: 10, Reward: "جلسة مراجعة"})
	assert.Equal(t, "⚠️ - جلسة مراجعة: تحتاج إلى 7.5 ساعة إضافية من وقت الدراسة للوصول إلى 10 ساعة.", got)
}

func TestRender(t *testing.T) {
	s := Stats{Points: 10, Percentage: 50, StudyHours: 0.25, Answered: 5}

	out := Render(s, nil)
	assert.Contains(t, out, "🏅 نقاطك: 10")
	assert.Contains(t, out, "⏳ وقت الدراسة: 0.25 ساعة")
	assert.Contains(t, out, "لم تكسب أي مكافآت")

	out = Render(s, []Target{
		{Metric: MetricPoints, Value: 5, Reward: "أ"},
		{Metric: MetricAnswered, Value: 100, Reward: "ب"},
	})
	assert.Contains(t, out, "🎁 مكافآتك:")
	assert.Equal(t, 1, strings.Count(out, "✅"))
	assert.Equal(t, 1, strings.Count(out, "⚠️"))
}

func TestTargetsExcelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.xlsx")
	want := []Target{
		{Metric: MetricPercentage, Value: 80, Reward: "شهادة"},
		{Metric: MetricAnswered, Value: 500, Reward: "كتاب"},
		{Metric: MetricPoints, Value: 1000.5, Reward: "اشتراك شهر"},
	}
	require.NoError(t, WriteTargetsExcel(path, want))

	got, err := LoadTargetsExcel(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadTargetsExcelMissingFile(t *testing.T) {
	_, err := LoadTargetsExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

type memClaims struct {
	days  map[int64]string
	count map[int64]int
}

func (m *memClaims) ClaimDailyGift(_ context.Context, id int64, day string) (int, bool, error) {
	if m.days[id] == day {
		return m.count[id], false, nil
	}
	m.days[id] = day
	m.count[id]++
	return m.count[id], true, nil
}

func TestGiftsClaimOncePerDay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gifts")
	require.NoError(t, EnsureGiftDirs(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_5", "b.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_5", "a.jpg"), []byte("jpg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_5", "clip.MP4"), []byte("mp4"), 0o644))

	claims := &memClaims{days: map[int64]string{}, count: map[int64]int{}}
	g := NewGifts(dir, claims, nil)
	g.now = func() time.Time { return time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC) }

	gift, ok, err := g.Claim(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, gift.Day)
	assert.Equal(t, []string{filepath.Join(dir, "day_5", "a.jpg"), filepath.Join(dir, "day_5", "b.png")}, gift.Photos)
	assert.Len(t, gift.Videos, 1)
	assert.Equal(t, "هذه هي هدية اليوم 5! 🎁", gift.Message)

	_, ok, err = g.Claim(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	g.now = func() time.Time { return time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC) }
	gift, ok, err = g.Claim(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, gift.Day)
	assert.False(t, gift.Empty())
	assert.Equal(t, 2, claims.count[1])
}

func TestEnsureGiftDirsKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureGiftDirs(dir))
	_, err := os.Stat(filepath.Join(dir, "day_1"))
	assert.True(t, os.IsNotExist(err))
}

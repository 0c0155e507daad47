package sections

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter struct {
	n   int
	err error
}

func (c *fixedCounter) Count(context.Context) (int, error) { return c.n, c.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheck(t *testing.T) {
	users := &fixedCounter{n: 12}
	m := New([]Rule{
		{Path: TraditionalLearning, Available: true},
		{Path: "traditional_learning:quantitative", UnlockThreshold: 1000},
		{Path: Designs, Message: "قريبًا ({current}/{threshold})", UnlockThreshold: 50},
		{Path: Tips},
	}, users, quietLogger())
	ctx := context.Background()

	tests := []struct {
		path      string
		available bool
		message   string
	}{
		{TraditionalLearning, true, ""},
		{"traditional_learning:verbal", true, ""},
		{"traditional_learning:quantitative", false,
			"سيتم فتح هذا القسم تلقائياً عند وصول عدد المستخدمين إلى 1000 مستخدم 🚧\nالعدد الحالي: 12 مستخدم"},
		{Designs, false, "قريبًا (12/50)"},
		{"tips:daily", false, "سيتم فتح هذا القسم تلقائياً عند وصول عدد المستخدمين إلى 0 مستخدم 🚧\nالعدد الحالي: 12 مستخدم"},
		{Tests, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			st, err := m.Check(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.available, st.Available)
			assert.Equal(t, tt.message, st.Message)
		})
	}
}

func TestThresholdUnlocks(t *testing.T) {
	users := &fixedCounter{n: 49}
	m := New([]Rule{
		{Path: Designs, UnlockThreshold: 50},
		{Path: Tips},
	}, users, quietLogger())
	ctx := context.Background()

	opened, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, opened)

	users.n = 50
	st, err := m.Check(ctx, Designs)
	require.NoError(t, err)
	assert.True(t, st.Available)

	// Unlocked sections stay open and are reported once.
	users.n = 10
	opened, err = m.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, opened)
	st, err = m.Check(ctx, Designs)
	require.NoError(t, err)
	assert.True(t, st.Available)

	// A zero threshold never unlocks.
	users.n = 1_000_000
	st, err = m.Check(ctx, Tips)
	require.NoError(t, err)
	assert.False(t, st.Available)
}

func TestCheckCountError(t *testing.T) {
	m := New(DefaultRules(), &fixedCounter{err: errors.New("db closed")}, quietLogger())
	_, err := m.Check(context.Background(), Tests)
	assert.Error(t, err)
}

func TestLineage(t *testing.T) {
	assert.Equal(t, []string{"a"}, lineage("a"))
	assert.Equal(t, []string{"a", "a:b", "a:b:c"}, lineage("a:b:c"))
}

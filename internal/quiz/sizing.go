package quiz

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SizingMode selects how a session's length is chosen.
type SizingMode string

const (
	// ByCount asks for a number of questions; the time follows from it.
	ByCount SizingMode = "by_count"
	// ByTime asks for minutes; the question count follows from it.
	ByTime SizingMode = "by_time"
)

const (
	// MinCount and MaxCount bound a by_count request.
	MinCount = 10
	MaxCount = 100

	// PerQuestion is the time allowance per question.
	PerQuestion = 90 * time.Second

	// MaxMinutes bounds a by_time request to one day.
	MaxMinutes = 24 * 60
)

// Plan is the validated size of a session.
type Plan struct {
	Count    int
	Duration time.Duration
}

// PlanByCount sizes a session from a question count.
func PlanByCount(n int) (Plan, error) {
	if n < MinCount || n > MaxCount {
		return Plan{}, &ValidationError{
			Field:  "count",
			Value:  strconv.Itoa(n),
			Reason: "must be between 10 and 100",
			Err:    ErrOutOfRange,
		}
	}
	return Plan{Count: n, Duration: time.Duration(n) * PerQuestion}, nil
}

// PlanByTime sizes a session from a number of minutes. One question is
// allotted per 1.2 minutes, rounded down, so short windows may yield zero.
func PlanByTime(minutes float64) (Plan, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 || minutes > MaxMinutes {
		return Plan{}, &ValidationError{
			Field:  "minutes",
			Value:  strconv.FormatFloat(minutes, 'f', -1, 64),
			Reason: "must be greater than 0 and at most 1440",
			Err:    ErrOutOfRange,
		}
	}
	// minutes/1.2 computed as minutes*10/12 so whole multiples land exactly.
	count := int(math.Floor(minutes*10/12 + 1e-9))
	return Plan{
		Count:    count,
		Duration: time.Duration(minutes * float64(time.Minute)),
	}, nil
}

// ParsePlan validates raw user input for the given mode. Arabic-Indic and
// Persian digits and the Arabic decimal separator are accepted.
func ParsePlan(mode SizingMode, input string) (Plan, error) {
	s := normalizeDigits(strings.TrimSpace(input))
	switch mode {
	case ByCount:
		n, err := strconv.Atoi(s)
		if err != nil {
			return Plan{}, &ValidationError{Field: "count", Value: input, Reason: "not a whole number", Err: ErrNotNumeric}
		}
		return PlanByCount(n)
	case ByTime:
		m, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Plan{}, &ValidationError{Field: "minutes", Value: input, Reason: "not a number", Err: ErrNotNumeric}
		}
		return PlanByTime(m)
	default:
		return Plan{}, &ValidationError{Field: "mode", Value: string(mode), Reason: "unknown sizing mode"}
	}
}

func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r == '٫':
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

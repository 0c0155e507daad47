package rewards

// Metric identifies a tracked statistic.
type Metric string

const (
	MetricPercentage Metric = "percentage"
	MetricStudyHours Metric = "study_hours"
	MetricAnswered   Metric = "answered_questions"
	MetricPoints     Metric = "points"
)

// AllMetrics returns all metrics in display order.
func AllMetrics() []Metric {
	return []Metric{MetricPercentage, MetricStudyHours, MetricAnswered, MetricPoints}
}

// DisplayName returns the Arabic label for the metric.
func (m Metric) DisplayName() string {
	switch m {
	case MetricPercentage:
		return "النسبة المئوية"
	case MetricStudyHours:
		return "وقت الدراسة"
	case MetricAnswered:
		return "الأسئلة المجابة"
	case MetricPoints:
		return "النقاط"
	default:
		return string(m)
	}
}

// Unit returns the unit shown after values of the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricPercentage:
		return "%"
	case MetricStudyHours:
		return "ساعة"
	case MetricAnswered:
		return "سؤال"
	case MetricPoints:
		return "نقطة"
	default:
		return ""
	}
}

// Target is a reward unlocked when a metric reaches Value.
type Target struct {
	Metric Metric  `yaml:"metric"`
	Value  float64 `yaml:"value"`
	Reward string  `yaml:"reward"`
}

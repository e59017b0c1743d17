package services

import (
	"fmt"
	"math"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one detected pattern in an entity's aggregate statistics.
type Finding struct {
	Type        string
	Severity    Severity
	Title       string
	Description string
	Metric      float64
}

// AggregateStats is the complete input to pattern detection. Predicates are
// pure functions of this snapshot and must not reach anywhere else.
type AggregateStats struct {
	ResponseCount  int
	Overall        Score
	ENPS           ENPSResult
	QuestionMeans  map[string]Score
	PeriodOveralls []Score // chronological overall scores, oldest first
}

// LowResponseThreshold is the count below which aggregate figures are
// reported but marked as thin.
const LowResponseThreshold = 5

type patternRule func(AggregateStats) *Finding

var patternRules = []patternRule{
	ruleLowResponseCount,
	ruleCriticalOverall,
	ruleQuestionOutlier,
	ruleScoreVolatility,
	ruleENPSDivergence,
}

// DetectPatterns evaluates every rule against the snapshot. Each rule
// contributes zero or one finding; the order of findings follows the fixed
// rule order.
func DetectPatterns(stats AggregateStats) []Finding {
	var out []Finding
	for _, rule := range patternRules {
		if f := rule(stats); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func ruleLowResponseCount(stats AggregateStats) *Finding {
	if stats.ResponseCount >= LowResponseThreshold {
		return nil
	}
	return &Finding{
		Type:        "low_response_count",
		Severity:    SeverityInfo,
		Title:       "Few responses collected",
		Description: fmt.Sprintf("Only %d responses so far; scores may swing as more arrive.", stats.ResponseCount),
		Metric:      float64(stats.ResponseCount),
	}
}

func ruleCriticalOverall(stats AggregateStats) *Finding {
	if ScoreRisk(stats.Overall) != RiskCritical {
		return nil
	}
	return &Finding{
		Type:        "critical_overall",
		Severity:    SeverityError,
		Title:       "Overall engagement is critical",
		Description: fmt.Sprintf("The overall score of %.2f is in the critical band.", stats.Overall.Value),
		Metric:      stats.Overall.Value,
	}
}

// ruleQuestionOutlier flags the single worst question whose mean sits more
// than 1.5 standard deviations below the mean of all question means.
func ruleQuestionOutlier(stats AggregateStats) *Finding {
	means := make([]float64, 0, len(stats.QuestionMeans))
	for _, s := range stats.QuestionMeans {
		if s.Valid {
			means = append(means, s.Value)
		}
	}
	if len(means) < 3 {
		return nil
	}
	avg, sd := meanStddev(means)
	if sd == 0 {
		return nil
	}
	worstKey := ""
	worst := math.Inf(1)
	for k, s := range stats.QuestionMeans {
		if !s.Valid {
			continue
		}
		if s.Value < worst || (s.Value == worst && k < worstKey) {
			worst = s.Value
			worstKey = k
		}
	}
	if worst >= avg-1.5*sd {
		return nil
	}
	category, _ := CategoryOfQuestion(worstKey)
	return &Finding{
		Type:        "question_outlier",
		Severity:    SeverityWarning,
		Title:       "One question scores far below the rest",
		Description: fmt.Sprintf("Question %s (%s) averages %.2f against a question mean of %.2f.", worstKey, category, worst, avg),
		Metric:      worst,
	}
}

// VolatilityThreshold is the period-over-period standard deviation above
// which the overall score is called unstable.
const VolatilityThreshold = 0.5

func ruleScoreVolatility(stats AggregateStats) *Finding {
	vals := make([]float64, 0, len(stats.PeriodOveralls))
	for _, s := range stats.PeriodOveralls {
		if s.Valid {
			vals = append(vals, s.Value)
		}
	}
	if len(vals) < 3 {
		return nil
	}
	_, sd := meanStddev(vals)
	if sd <= VolatilityThreshold {
		return nil
	}
	return &Finding{
		Type:        "score_volatility",
		Severity:    SeverityWarning,
		Title:       "Overall score is volatile across periods",
		Description: fmt.Sprintf("The overall score swings with a standard deviation of %.2f across %d periods.", sd, len(vals)),
		Metric:      sd,
	}
}

// ruleENPSDivergence catches populations that rate day-to-day drivers well
// but would still not recommend the workplace.
func ruleENPSDivergence(stats AggregateStats) *Finding {
	if !stats.Overall.Valid || !stats.ENPS.Valid {
		return nil
	}
	if stats.Overall.Value < 3.8 || stats.ENPS.Score > 0 {
		return nil
	}
	return &Finding{
		Type:        "enps_divergence",
		Severity:    SeverityWarning,
		Title:       "High engagement but negative eNPS",
		Description: fmt.Sprintf("Drivers average %.2f while eNPS sits at %d.", stats.Overall.Value, stats.ENPS.Score),
		Metric:      float64(stats.ENPS.Score),
	}
}

func meanStddev(vals []float64) (float64, float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(vals)))
}

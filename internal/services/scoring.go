package services

import (
	"math"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// DefaultScaleMax is the answer scale for the seeded driver questions.
const DefaultScaleMax = 5

// Score is an optional mean. Valid is false when no in-range answers exist;
// a zero-value Score must never be read as "scored 0".
type Score struct {
	Valid bool
	Value float64
	N     int
}

// CategoryScore averages all in-range answers across the category's question
// keys over the given responses. Out-of-range and missing answers are skipped.
func CategoryScore(responses []*models.Response, def CategoryDef, scaleMax int) Score {
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}
	return meanOfKeys(responses, def.QuestionKeys, scaleMax)
}

// OverallScore averages all in-range driver answers. The eNPS value never
// contributes.
func OverallScore(responses []*models.Response, scaleMax int) Score {
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}
	return meanOfKeys(responses, DriverKeys, scaleMax)
}

// QuestionScore averages a single question key.
func QuestionScore(responses []*models.Response, key string, scaleMax int) Score {
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}
	return meanOfKeys(responses, []string{key}, scaleMax)
}

func meanOfKeys(responses []*models.Response, keys []string, scaleMax int) Score {
	var sum float64
	n := 0
	for _, r := range responses {
		for _, k := range keys {
			v, ok := r.Answers[k]
			if !ok || v < 1 || v > scaleMax {
				continue
			}
			sum += float64(v)
			n++
		}
	}
	if n == 0 {
		return Score{}
	}
	return Score{Valid: true, Value: sum / float64(n), N: n}
}

// ENPSResult carries the employee Net Promoter Score together with its raw
// promoter/passive/detractor counts. Valid is false when no response carried
// a usable 0-10 value.
type ENPSResult struct {
	Valid      bool
	Score      int
	Promoters  int
	Passives   int
	Detractors int
	Total      int
}

// ENPS classifies 0-10 answers as promoters (>=9), passives (7-8) and
// detractors (<=6) and scores round(100*(promoters-detractors)/total).
func ENPS(responses []*models.Response) ENPSResult {
	var res ENPSResult
	for _, r := range responses {
		if r.ENPSRaw == nil {
			continue
		}
		v := *r.ENPSRaw
		if v < 0 || v > 10 {
			continue
		}
		switch {
		case v >= 9:
			res.Promoters++
		case v >= 7:
			res.Passives++
		default:
			res.Detractors++
		}
	}
	res.Total = res.Promoters + res.Passives + res.Detractors
	if res.Total == 0 {
		return res
	}
	res.Valid = true
	res.Score = int(math.Round(100 * float64(res.Promoters-res.Detractors) / float64(res.Total)))
	return res
}

// RiskLevel classifies a score band. NO_DATA is distinct from every numeric
// band so an absent score never masquerades as a bad (or good) one.
type RiskLevel string

const (
	RiskNoData    RiskLevel = "NO_DATA"
	RiskCritical  RiskLevel = "CRITICAL"
	RiskWarning   RiskLevel = "WARNING"
	RiskCaution   RiskLevel = "CAUTION"
	RiskStable    RiskLevel = "STABLE"
	RiskExcellent RiskLevel = "EXCELLENT"
)

// ScoreRisk classifies a 1-5 mean score.
func ScoreRisk(s Score) RiskLevel {
	if !s.Valid {
		return RiskNoData
	}
	switch {
	case s.Value <= 2.0:
		return RiskCritical
	case s.Value <= 2.7:
		return RiskWarning
	case s.Value <= 3.2:
		return RiskCaution
	case s.Value <= 3.8:
		return RiskStable
	default:
		return RiskExcellent
	}
}

// ENPSRisk classifies an eNPS score (-100..100).
func ENPSRisk(e ENPSResult) RiskLevel {
	if !e.Valid {
		return RiskNoData
	}
	switch {
	case e.Score <= -30:
		return RiskCritical
	case e.Score <= 0:
		return RiskWarning
	case e.Score <= 30:
		return RiskStable
	default:
		return RiskExcellent
	}
}

// BenchmarkDelta is a signed comparison against an industry benchmark.
// Better accounts for reverse-scored categories, where a lower raw average
// is the better result.
type BenchmarkDelta struct {
	Valid    bool
	Delta    float64
	Better   bool
	Industry string
}

// CompareBenchmark computes score minus benchmark. The shipped category
// table has no reverse-scored entries, but the inversion must hold if one is
// ever configured.
func CompareBenchmark(s Score, b *models.Benchmark, reverseScored bool) BenchmarkDelta {
	if !s.Valid || b == nil {
		return BenchmarkDelta{}
	}
	d := s.Value - b.AvgScore
	better := d > 0
	if reverseScored {
		better = d < 0
	}
	return BenchmarkDelta{Valid: true, Delta: d, Better: better, Industry: b.Industry}
}

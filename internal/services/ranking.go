package services

import (
	"math"
	"sort"
)

// PeerScore reduces one entity (a company in an industry, or a location
// within a company) to the scores the ranking procedures operate on.
type PeerScore struct {
	ID         string
	Name       string
	Overall    Score
	Categories map[string]Score
	SampleSize int
}

// RankedPeer is one entity's position within its peer population.
type RankedPeer struct {
	ID         string
	Name       string
	Score      float64
	Rank       int
	Percentile int
	Total      int
}

// RankPeers drops peers without a valid overall score, sorts the rest
// descending and assigns 1-based ranks. Equal scores order by ascending peer
// ID so repeated runs over the same snapshot rank identically. A population
// of one gets percentile 100 by convention.
func RankPeers(peers []PeerScore) []RankedPeer {
	scored := make([]RankedPeer, 0, len(peers))
	for _, p := range peers {
		if !p.Overall.Valid {
			continue
		}
		scored = append(scored, RankedPeer{ID: p.ID, Name: p.Name, Score: p.Overall.Value})
	}
	return rankScored(scored)
}

// RankCategory runs the same procedure per category, over only the peers
// that have a valid score for it.
func RankCategory(peers []PeerScore, category string) []RankedPeer {
	scored := make([]RankedPeer, 0, len(peers))
	for _, p := range peers {
		cs, ok := p.Categories[category]
		if !ok || !cs.Valid {
			continue
		}
		scored = append(scored, RankedPeer{ID: p.ID, Name: p.Name, Score: cs.Value})
	}
	return rankScored(scored)
}

func rankScored(scored []RankedPeer) []RankedPeer {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	total := len(scored)
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].Total = total
		if total > 1 {
			scored[i].Percentile = int(math.Round(float64(total-scored[i].Rank) / float64(total-1) * 100))
		} else {
			scored[i].Percentile = 100
		}
	}
	return scored
}

// MinImpactSample is the minimum pooled response count before impact weights
// are computed. Below it the result would be noise presented as insight.
const MinImpactSample = 10

// InsufficientData reports how far below a sample threshold a computation
// is. It is a structured result, not an error: "no data yet" is a normal
// state for a young population.
type InsufficientData struct {
	Current  int
	Required int
}

// ImpactWeight is one category's share of the deviation from the
// population's overall score. Weights across a result sum to at most 1.
type ImpactWeight struct {
	Category  string
	Weight    float64
	Deviation float64
	Rank      int
}

// ImpactResult carries either ranked weights or an InsufficientData marker,
// never a partial number.
type ImpactResult struct {
	Valid        bool
	Weights      []ImpactWeight
	Insufficient *InsufficientData
}

// ComputeImpact ranks categories by how strongly each one's sample-weighted
// mean deviates from the population overall. This is a contribution
// heuristic, not a statistical correlation.
func ComputeImpact(population []PeerScore) ImpactResult {
	totalSample := 0
	for _, p := range population {
		totalSample += p.SampleSize
	}
	if totalSample < MinImpactSample {
		return ImpactResult{Insufficient: &InsufficientData{Current: totalSample, Required: MinImpactSample}}
	}

	var overallSum, overallWeight float64
	for _, p := range population {
		if !p.Overall.Valid || p.SampleSize <= 0 {
			continue
		}
		overallSum += p.Overall.Value * float64(p.SampleSize)
		overallWeight += float64(p.SampleSize)
	}
	if overallWeight == 0 {
		return ImpactResult{Insufficient: &InsufficientData{Current: 0, Required: MinImpactSample}}
	}
	popOverall := overallSum / overallWeight

	weights := make([]ImpactWeight, 0, len(Categories))
	var magnitudeSum float64
	for _, def := range Categories {
		var catSum, catWeight float64
		for _, p := range population {
			cs, ok := p.Categories[def.Name]
			if !ok || !cs.Valid || p.SampleSize <= 0 {
				continue
			}
			catSum += cs.Value * float64(p.SampleSize)
			catWeight += float64(p.SampleSize)
		}
		if catWeight == 0 {
			continue
		}
		deviation := catSum/catWeight - popOverall
		magnitude := math.Abs(deviation) * (catWeight / overallWeight)
		weights = append(weights, ImpactWeight{Category: def.Name, Weight: magnitude, Deviation: deviation})
		magnitudeSum += magnitude
	}
	if magnitudeSum > 0 {
		for i := range weights {
			weights[i].Weight /= magnitudeSum
		}
	}
	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Category < weights[j].Category
	})
	for i := range weights {
		weights[i].Rank = i + 1
	}
	return ImpactResult{Valid: true, Weights: weights}
}

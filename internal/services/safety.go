package services

import (
	"sort"
	"strings"
)

// FlagCategory is a content-safety taxonomy bucket.
type FlagCategory string

const (
	FlagHarassment     FlagCategory = "harassment"
	FlagSafety         FlagCategory = "safety"
	FlagCrisis         FlagCategory = "crisis"
	FlagDiscrimination FlagCategory = "discrimination"
)

// FlagResult is the outcome of scanning free text for concerning content.
type FlagResult struct {
	Flagged bool
	Reasons []FlagCategory
}

// TextClassifier decides whether free text indicates harm. Implementations
// must be pure and safe for concurrent use, so a smarter detector can be
// substituted without touching ingestion.
type TextClassifier interface {
	Classify(text string) FlagResult
}

// defaultKeywords backs the shipped heuristic classifier. Lists are
// bilingual (English/Japanese) to match the deployed respondent base.
// A single substring hit triggers the category; there is no frequency
// weighting.
var defaultKeywords = map[FlagCategory][]string{
	FlagHarassment: {
		"harass", "bully", "bullied", "bullying", "intimidat", "threatened me",
		"unwanted touching", "inappropriate comments",
		"セクハラ", "パワハラ", "モラハラ", "いじめ", "嫌がらせ", "脅され", "暴言",
	},
	FlagSafety: {
		"unsafe", "dangerous", "injury", "injured", "no safety", "broken equipment",
		"fire hazard", "accident waiting",
		"危険", "怪我", "労災", "安全でない", "事故", "壊れた機械",
	},
	FlagCrisis: {
		"suicide", "kill myself", "self harm", "self-harm", "want to die", "end my life",
		"自殺", "死にたい", "消えたい", "自傷", "生きていたくない",
	},
	FlagDiscrimination: {
		"discriminat", "racist", "sexist", "because of my age", "because of my gender",
		"because of my race", "because i am a foreigner",
		"差別", "人種", "性差別", "外国人だから", "女だから", "男だから",
	},
}

// KeywordClassifier is the shipped heuristic: case-insensitive substring
// matching against fixed keyword lists.
type KeywordClassifier struct {
	keywords map[FlagCategory][]string
}

// NewKeywordClassifier builds a classifier over the default bilingual lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{keywords: defaultKeywords}
}

// NewKeywordClassifierWith builds a classifier over custom lists, for
// deployments that maintain their own vocabulary.
func NewKeywordClassifierWith(keywords map[FlagCategory][]string) *KeywordClassifier {
	return &KeywordClassifier{keywords: keywords}
}

func (c *KeywordClassifier) Classify(text string) FlagResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return FlagResult{}
	}
	lower := strings.ToLower(trimmed)
	var reasons []FlagCategory
	for cat, words := range c.keywords {
		for _, w := range words {
			if strings.Contains(lower, strings.ToLower(w)) {
				reasons = append(reasons, cat)
				break
			}
		}
	}
	if len(reasons) == 0 {
		return FlagResult{}
	}
	sortReasons(reasons)
	return FlagResult{Flagged: true, Reasons: reasons}
}

// FlagText scans a single free-text field.
func FlagText(c TextClassifier, text string) FlagResult {
	return c.Classify(text)
}

// FlagMultiple unions the reasons across all free-text fields of one
// response.
func FlagMultiple(c TextClassifier, texts []string) FlagResult {
	set := map[FlagCategory]struct{}{}
	for _, t := range texts {
		for _, r := range c.Classify(t).Reasons {
			set[r] = struct{}{}
		}
	}
	if len(set) == 0 {
		return FlagResult{}
	}
	reasons := make([]FlagCategory, 0, len(set))
	for r := range set {
		reasons = append(reasons, r)
	}
	sortReasons(reasons)
	return FlagResult{Flagged: true, Reasons: reasons}
}

func sortReasons(reasons []FlagCategory) {
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
}

// ReasonStrings converts flag categories for persistence.
func ReasonStrings(reasons []FlagCategory) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, string(r))
	}
	return out
}

package services

import "fmt"

// CategoryTableVersion identifies the shipped question-to-category mapping.
// Bump it whenever the table below changes shape.
const CategoryTableVersion = 1

// CategoryDef maps a reporting category onto the question keys that feed it.
// ReverseScored categories treat a lower raw average as the better result.
type CategoryDef struct {
	Name          string
	QuestionKeys  []string
	ReverseScored bool
}

// Categories is the static mapping for the seeded question set.
var Categories = []CategoryDef{
	{Name: "Manager & Leadership", QuestionKeys: []string{"q1", "q2"}},
	{Name: "Schedule & Hours", QuestionKeys: []string{"q3"}},
	{Name: "Teamwork", QuestionKeys: []string{"q4"}},
	{Name: "Staffing & Resources", QuestionKeys: []string{"q5"}},
	{Name: "Respect & Recognition", QuestionKeys: []string{"q6"}},
	{Name: "Pay & Benefits", QuestionKeys: []string{"q7"}},
	{Name: "Work Environment", QuestionKeys: []string{"q8"}},
	{Name: "Retention Intent", QuestionKeys: []string{"q9"}},
}

// DriverKeys are the question keys that feed the overall engagement score.
// The eNPS question is an outcome measure and deliberately not a driver.
var DriverKeys = []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9"}

// CategoryByName looks a category up in the shipped table.
func CategoryByName(name string) (CategoryDef, bool) {
	for _, def := range Categories {
		if def.Name == name {
			return def, true
		}
	}
	return CategoryDef{}, false
}

// CategoryOfQuestion returns the category a question key belongs to.
func CategoryOfQuestion(key string) (string, bool) {
	for _, def := range Categories {
		for _, k := range def.QuestionKeys {
			if k == key {
				return def.Name, true
			}
		}
	}
	return "", false
}

// ValidateCategories checks that every question key appears in exactly one
// category and every driver key is mapped. Run it at startup so a malformed
// table aborts before any score is computed from it.
func ValidateCategories(defs []CategoryDef, drivers []string) error {
	seen := map[string]string{}
	for _, def := range defs {
		if len(def.QuestionKeys) == 0 {
			return NewInvalidError(fmt.Sprintf("category %q has no question keys", def.Name))
		}
		for _, k := range def.QuestionKeys {
			if prev, ok := seen[k]; ok {
				return NewInvalidError(fmt.Sprintf("question %s mapped to both %q and %q", k, prev, def.Name))
			}
			seen[k] = def.Name
		}
	}
	for _, k := range drivers {
		if _, ok := seen[k]; !ok {
			return NewInvalidError(fmt.Sprintf("driver question %s is not mapped to any category", k))
		}
	}
	return nil
}

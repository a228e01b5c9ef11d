package services

import (
	"strings"

	"github.com/vialy/glonetzBackend/models"
)

// Free-text evaluation and course-info values are mapped onto their canonical
// enum by case-insensitive substring matching against known synonyms. Rules
// are applied in order; the first hit wins.
type keywordRule struct {
	keywords  []string
	canonical string
}

var evaluationRules = []keywordRule{
	{[]string{"bon", "good"}, models.EvaluationGood},
	{[]string{"excellent", "outstanding"}, models.EvaluationOutstanding},
	{[]string{"satisfaisant", "satisfactory"}, models.EvaluationSatisfactory},
	{[]string{"participant"}, models.EvaluationParticipant},
}

// "partial" is checked before "complete" so the canonical value
// "Partially completed level" does not match the "complete" rule.
var courseInfoRules = []keywordRule{
	{[]string{"partial", "partiel"}, models.CourseInfoPartial},
	{[]string{"drop", "abandon"}, models.CourseInfoDroppedOut},
	{[]string{"no participation", "aucune participation"}, models.CourseInfoNoParticipation},
	{[]string{"complete", "complet"}, models.CourseInfoComplete},
}

func matchKeyword(rules []keywordRule, value string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.canonical, true
			}
		}
	}
	return "", false
}

func NormalizeEvaluation(value string) (string, bool) {
	return matchKeyword(evaluationRules, value)
}

func NormalizeCourseInfo(value string) (string, bool) {
	return matchKeyword(courseInfoRules, value)
}

func AcceptedEvaluations() []string {
	return []string{
		models.EvaluationOutstanding,
		models.EvaluationGood,
		models.EvaluationSatisfactory,
		models.EvaluationParticipant,
	}
}

func AcceptedCourseInfos() []string {
	return []string{
		models.CourseInfoComplete,
		models.CourseInfoPartial,
		models.CourseInfoDroppedOut,
		models.CourseInfoNoParticipation,
	}
}

func IsReferenceLevel(level string) bool {
	for _, l := range models.ReferenceLevels {
		if l == level {
			return true
		}
	}
	return false
}

package flow

import (
	"strconv"
	"strings"

	"askline/models"
)

// Answer is one recorded reply for a question: the selected option id for
// choice questions (zero otherwise) and the raw text for free-text questions.
type Answer struct {
	OptionID uint
	Text     string
}

// Answers maps question id to the recorded answer for one LINE user
type Answers map[uint]Answer

// ResolveNext evaluates the routes leaving the current question against the
// user's accumulated answers and returns the next question id.
//
// Routes whose condition group holds (every condition true) are candidates;
// among several satisfied groups the route with the lowest id wins, so the
// first-created route decides deterministically. A route with an empty group
// or no conditions is the always-transition default and is only taken when no
// conditional route fires. The second return value is false at the end of the
// flow.
func ResolveNext(routes []models.QuestionRoute, conditions []models.Condition, answers Answers) (uint, bool) {
	byGroup := make(map[string][]models.Condition)
	for _, c := range conditions {
		byGroup[c.ConditionGroup] = append(byGroup[c.ConditionGroup], c)
	}

	var winner, fallback *models.QuestionRoute
	for i := range routes {
		r := &routes[i]
		group := byGroup[r.ConditionGroup]
		if r.ConditionGroup == "" || len(group) == 0 {
			// vacuously satisfied
			if fallback == nil || r.ID < fallback.ID {
				fallback = r
			}
			continue
		}
		if !GroupSatisfied(group, answers) {
			continue
		}
		if winner == nil || r.ID < winner.ID {
			winner = r
		}
	}

	if winner != nil {
		return winner.NextQuestionID, true
	}
	if fallback != nil {
		return fallback.NextQuestionID, true
	}
	return 0, false
}

// GroupSatisfied reports whether every condition of one group holds
// (conjunction). An empty group is vacuously satisfied.
func GroupSatisfied(conditions []models.Condition, answers Answers) bool {
	for _, c := range conditions {
		if !Satisfied(c, answers) {
			return false
		}
	}
	return true
}

// Satisfied evaluates a single condition. A condition referencing a question
// the user has not answered yet is false.
func Satisfied(c models.Condition, answers Answers) bool {
	answer, ok := answers[c.RequiredQuestionID]
	if !ok {
		return false
	}

	// Option conditions test the selected option only; operator and value
	// are ignored even when set.
	if c.RequiredOptionID != nil {
		return answer.OptionID == *c.RequiredOptionID
	}

	if c.Value == nil {
		return false
	}
	return compareText(c.Operator, answer.Text, *c.Value)
}

// compareText applies an operator to a free-text answer. Ordering operators
// compare numerically when both sides parse as numbers and fall back to
// lexicographic byte order otherwise, so ">" against "abc" is a string
// comparison rather than an error.
func compareText(operator, answer, value string) bool {
	switch operator {
	case models.OperatorEqual:
		return answer == value
	case models.OperatorNotEqual:
		return answer != value
	case models.OperatorLike:
		return strings.Contains(answer, value)
	}

	var cmp int
	a, errA := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	v, errV := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if errA == nil && errV == nil {
		switch {
		case a > v:
			cmp = 1
		case a < v:
			cmp = -1
		}
	} else {
		cmp = strings.Compare(answer, value)
	}

	switch operator {
	case models.OperatorGreater:
		return cmp > 0
	case models.OperatorGreaterEqual:
		return cmp >= 0
	case models.OperatorLess:
		return cmp < 0
	case models.OperatorLessEqual:
		return cmp <= 0
	}
	return false
}

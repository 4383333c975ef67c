package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"askline/models"
)

func route(id, from, next uint, group string) models.QuestionRoute {
	return models.QuestionRoute{
		Model:          gorm.Model{ID: id},
		FromQuestionID: from,
		NextQuestionID: next,
		ConditionGroup: group,
	}
}

func optionCondition(questionID, requiredQuestionID, requiredOptionID uint, group string) models.Condition {
	return models.Condition{
		QuestionID:         questionID,
		RequiredQuestionID: requiredQuestionID,
		RequiredOptionID:   &requiredOptionID,
		ConditionGroup:     group,
	}
}

func textCondition(questionID, requiredQuestionID uint, operator, value, group string) models.Condition {
	return models.Condition{
		QuestionID:         questionID,
		RequiredQuestionID: requiredQuestionID,
		Operator:           operator,
		Value:              &value,
		ConditionGroup:     group,
	}
}

func TestSatisfiedOptionConditionIgnoresOperatorAndValue(t *testing.T) {
	c := optionCondition(1, 1, 10, "g1")
	// Operator and value must not matter once a required option is set
	c.Operator = models.OperatorGreater
	v := "999"
	c.Value = &v

	assert.True(t, Satisfied(c, Answers{1: {OptionID: 10}}))
	assert.False(t, Satisfied(c, Answers{1: {OptionID: 11, Text: "999"}}))
}

func TestSatisfiedMissingAnswerIsFalse(t *testing.T) {
	c := textCondition(1, 2, models.OperatorEqual, "yes", "g1")
	assert.False(t, Satisfied(c, Answers{}))
}

func TestSatisfiedNilValueIsFalse(t *testing.T) {
	c := models.Condition{QuestionID: 1, RequiredQuestionID: 1, Operator: models.OperatorEqual, ConditionGroup: "g1"}
	assert.False(t, Satisfied(c, Answers{1: {Text: "anything"}}))
}

func TestCompareTextOperators(t *testing.T) {
	tests := []struct {
		operator string
		answer   string
		value    string
		want     bool
	}{
		{models.OperatorEqual, "yes", "yes", true},
		{models.OperatorEqual, "yes", "no", false},
		{models.OperatorNotEqual, "yes", "no", true},
		{models.OperatorLike, "首の痛みがあります", "痛み", true},
		{models.OperatorLike, "問題ありません", "痛み", false},

		// numeric comparison when both sides parse
		{models.OperatorGreater, "20", "18", true},
		{models.OperatorGreater, "15", "18", false},
		{models.OperatorGreaterEqual, "18", "18", true},
		{models.OperatorLess, "3", "10", true},
		{models.OperatorLessEqual, "10", "10", true},

		// lexicographic fallback for non-numeric answers
		{models.OperatorGreater, "abc", "18", true},
		{models.OperatorLess, "abc", "xyz", true},
	}

	for _, tt := range tests {
		got := compareText(tt.operator, tt.answer, tt.value)
		assert.Equalf(t, tt.want, got, "%q %s %q", tt.answer, tt.operator, tt.value)
	}
}

func TestGroupSatisfiedIsConjunction(t *testing.T) {
	conds := []models.Condition{
		optionCondition(1, 1, 10, "g1"),
		textCondition(1, 2, models.OperatorGreaterEqual, "18", "g1"),
	}

	assert.True(t, GroupSatisfied(conds, Answers{1: {OptionID: 10}, 2: {Text: "20"}}))
	assert.False(t, GroupSatisfied(conds, Answers{1: {OptionID: 10}, 2: {Text: "17"}}))
}

func TestGroupSatisfiedEmptyGroupIsVacuouslyTrue(t *testing.T) {
	assert.True(t, GroupSatisfied(nil, Answers{}))
}

func TestResolveNextPrefersSatisfiedGroupOverDefault(t *testing.T) {
	routes := []models.QuestionRoute{
		route(1, 1, 9, ""), // default
		route(2, 1, 2, "g1"),
	}
	conds := []models.Condition{optionCondition(1, 1, 10, "g1")}

	next, ok := ResolveNext(routes, conds, Answers{1: {OptionID: 10}})
	assert.True(t, ok)
	assert.Equal(t, uint(2), next)

	// unmatched condition falls back to the default route
	next, ok = ResolveNext(routes, conds, Answers{1: {OptionID: 11}})
	assert.True(t, ok)
	assert.Equal(t, uint(9), next)
}

func TestResolveNextFirstCreatedRouteWinsTie(t *testing.T) {
	routes := []models.QuestionRoute{
		route(5, 1, 3, "g2"),
		route(2, 1, 2, "g1"),
	}
	conds := []models.Condition{
		optionCondition(1, 1, 10, "g1"),
		optionCondition(1, 1, 10, "g2"),
	}

	// both groups satisfied; the lower route id decides
	next, ok := ResolveNext(routes, conds, Answers{1: {OptionID: 10}})
	assert.True(t, ok)
	assert.Equal(t, uint(2), next)
}

func TestResolveNextEndOfFlow(t *testing.T) {
	routes := []models.QuestionRoute{route(1, 1, 2, "g1")}
	conds := []models.Condition{optionCondition(1, 1, 10, "g1")}

	_, ok := ResolveNext(routes, conds, Answers{1: {OptionID: 11}})
	assert.False(t, ok)

	_, ok = ResolveNext(nil, nil, Answers{})
	assert.False(t, ok)
}

func TestResolveNextRouteWithGroupButNoConditionsActsAsDefault(t *testing.T) {
	// a group whose conditions were all deleted degenerates to always-transition
	routes := []models.QuestionRoute{route(3, 1, 7, "orphan-group")}

	next, ok := ResolveNext(routes, nil, Answers{})
	assert.True(t, ok)
	assert.Equal(t, uint(7), next)
}

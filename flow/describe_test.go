package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"askline/models"
)

func describeFixtures() (map[uint]models.Question, map[uint]models.Option) {
	questions := map[uint]models.Question{
		1: {Model: gorm.Model{ID: 1}, Title: "事故の種類"},
		2: {Model: gorm.Model{ID: 2}, Title: "年齢"},
	}
	options := map[uint]models.Option{
		10: {Model: gorm.Model{ID: 10}, QuestionID: 1, Text: "追突事故"},
	}
	return questions, options
}

func TestDescribeOptionCondition(t *testing.T) {
	questions, options := describeFixtures()
	c := optionCondition(1, 1, 10, "g1")

	assert.Equal(t, "「事故の種類」が「追突事故」を選択した場合", Describe(c, questions, options))
}

func TestDescribeTextConditions(t *testing.T) {
	questions, options := describeFixtures()

	like := textCondition(1, 2, models.OperatorLike, "痛み", "g1")
	assert.Equal(t, "「年齢」が 痛み を含む", Describe(like, questions, options))

	gte := textCondition(1, 2, models.OperatorGreaterEqual, "18", "g1")
	assert.Equal(t, "「年齢」が ≥ 18", Describe(gte, questions, options))

	neq := textCondition(1, 2, models.OperatorNotEqual, "0", "g1")
	assert.Equal(t, "「年齢」が ≠ 0", Describe(neq, questions, options))
}

func TestDescribeUnknownReferences(t *testing.T) {
	questions, options := describeFixtures()

	c := optionCondition(1, 99, 98, "g1")
	assert.Equal(t, "「不明な質問」が「不明な選択肢」を選択した場合", Describe(c, questions, options))
}

func TestDescribeGroupJoinsWithConjunction(t *testing.T) {
	questions, options := describeFixtures()
	conds := []models.Condition{
		optionCondition(1, 1, 10, "g1"),
		textCondition(1, 2, models.OperatorGreaterEqual, "18", "g1"),
	}

	assert.Equal(t,
		"「事故の種類」が「追突事故」を選択した場合 かつ 「年齢」が ≥ 18",
		DescribeGroup(conds, questions, options))
}

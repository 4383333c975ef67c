package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"askline/models"
)

func answered(questionID uint, title, text string, optionID uint, optionText string) AnsweredQuestion {
	a := AnsweredQuestion{
		Question:   models.Question{Model: gorm.Model{ID: questionID}, Title: title},
		Answer:     models.Answer{QuestionID: questionID, Text: text},
		OptionText: optionText,
	}
	if optionID != 0 {
		a.Answer.OptionID = &optionID
	}
	return a
}

func TestRenderPlaceholdersNameAndEmail(t *testing.T) {
	user := models.LineUser{DisplayName: "田中太郎", Email: "tanaka@example.com"}

	out := RenderPlaceholders("{name}様 ({email})", user, nil)
	assert.Equal(t, "田中太郎様 (tanaka@example.com)", out)
}

func TestRenderPlaceholdersAnswerToken(t *testing.T) {
	user := models.LineUser{DisplayName: "田中太郎"}
	answers := []AnsweredQuestion{
		answered(3, "年齢", "42", 0, ""),
		answered(5, "事故の種類", "", 10, "追突事故"),
	}

	out := RenderPlaceholders("年齢: {answer:3} / 種類: {answer:5} / 未回答: {answer:99}", user, answers)
	assert.Equal(t, "年齢: 42 / 種類: 追突事故 / 未回答: ", out)
}

func TestRenderPlaceholdersAnswersList(t *testing.T) {
	user := models.LineUser{}
	answers := []AnsweredQuestion{
		answered(1, "年齢", "42", 0, ""),
		answered(2, "通院日数", "30", 0, ""),
	}

	out := RenderPlaceholders("{answers}", user, answers)
	assert.Equal(t, "年齢: 42\n通院日数: 30", out)
}

func TestRenderPlaceholdersNoTokens(t *testing.T) {
	out := RenderPlaceholders("固定の本文", models.LineUser{DisplayName: "x"}, nil)
	assert.Equal(t, "固定の本文", out)
}

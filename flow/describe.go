package flow

import (
	"fmt"
	"strings"

	"askline/models"
)

// Placeholders rendered when a condition references a deleted row
const (
	UnknownQuestionLabel = "不明な質問"
	UnknownOptionLabel   = "不明な選択肢"
)

var operatorSymbols = map[string]string{
	models.OperatorEqual:        "=",
	models.OperatorNotEqual:     "≠",
	models.OperatorGreater:      ">",
	models.OperatorGreaterEqual: "≥",
	models.OperatorLess:         "<",
	models.OperatorLessEqual:    "≤",
}

// Describe renders a condition for operator-facing UI and the flow views.
// Dangling question/option references render as the unknown placeholders
// instead of failing, since an option can be deleted out from under a
// condition.
func Describe(c models.Condition, questions map[uint]models.Question, options map[uint]models.Option) string {
	title := UnknownQuestionLabel
	if q, ok := questions[c.RequiredQuestionID]; ok {
		title = q.Title
	}

	if c.RequiredOptionID != nil {
		text := UnknownOptionLabel
		if o, ok := options[*c.RequiredOptionID]; ok {
			text = o.Text
		}
		return fmt.Sprintf("「%s」が「%s」を選択した場合", title, text)
	}

	value := ""
	if c.Value != nil {
		value = *c.Value
	}
	if c.Operator == models.OperatorLike {
		return fmt.Sprintf("「%s」が %s を含む", title, value)
	}

	symbol, ok := operatorSymbols[c.Operator]
	if !ok {
		symbol = c.Operator
	}
	return fmt.Sprintf("「%s」が %s %s", title, symbol, value)
}

// DescribeGroup joins the descriptions of one condition group with かつ,
// matching the conjunction the evaluator applies.
func DescribeGroup(conditions []models.Condition, questions map[uint]models.Question, options map[uint]models.Option) string {
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		parts = append(parts, Describe(c, questions, options))
	}
	return strings.Join(parts, " かつ ")
}

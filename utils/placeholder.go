package utils

import (
	"fmt"
	"strings"

	"askline/models"
)

// AnsweredQuestion pairs a recorded answer with its question metadata, ready
// for placeholder rendering.
type AnsweredQuestion struct {
	Question models.Question
	Answer   models.Answer
	// Text of the selected option, resolved by the caller for choice answers
	OptionText string
}

// DisplayValue is the human-readable form of the answer
func (a AnsweredQuestion) DisplayValue() string {
	if a.Answer.OptionID != nil && a.OptionText != "" {
		return a.OptionText
	}
	return a.Answer.Text
}

// RenderPlaceholders substitutes the template tokens {name}, {email},
// {answers} and {answer:<question_id>} against one LINE user's recorded
// answers. Tokens referencing a question without an answer render empty.
func RenderPlaceholders(template string, user models.LineUser, answered []AnsweredQuestion) string {
	byQuestion := make(map[uint]AnsweredQuestion, len(answered))
	for _, a := range answered {
		byQuestion[a.Question.ID] = a
	}

	out := template
	out = strings.ReplaceAll(out, "{name}", user.DisplayName)
	out = strings.ReplaceAll(out, "{email}", user.Email)

	if strings.Contains(out, "{answers}") {
		var lines []string
		for _, a := range answered {
			lines = append(lines, fmt.Sprintf("%s: %s", a.Question.Title, a.DisplayValue()))
		}
		out = strings.ReplaceAll(out, "{answers}", strings.Join(lines, "\n"))
	}

	for {
		start := strings.Index(out, "{answer:")
		if start == -1 {
			break
		}
		end := strings.Index(out[start:], "}")
		if end == -1 {
			break
		}
		token := out[start : start+end+1]
		questionID := ParseUint(token[len("{answer:") : len(token)-1])

		value := ""
		if a, ok := byQuestion[questionID]; ok {
			value = a.DisplayValue()
		}
		out = strings.ReplaceAll(out, token, value)
	}

	return out
}

package models

import "gorm.io/gorm"

// Comparison operators allowed on free-text conditions
const (
	OperatorEqual        = "="
	OperatorNotEqual     = "!="
	OperatorGreater      = ">"
	OperatorGreaterEqual = ">="
	OperatorLess         = "<"
	OperatorLessEqual    = "<="
	OperatorLike         = "LIKE"
)

// QuestionRoute is a directed edge in the flow graph. A question may have
// several outgoing routes, each tagged with its own condition group; a route
// with an empty condition group is the unconditional default.
type QuestionRoute struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	FromQuestionID uint   `gorm:"not null;index" json:"from_question_id"`
	NextQuestionID uint   `gorm:"not null;index" json:"next_question_id"`
	ConditionGroup string `gorm:"index" json:"condition_group"`
}

// Condition is one predicate of a condition group. All conditions sharing a
// group must hold for the group's route to fire (conjunction).
//
// When RequiredOptionID is set the condition tests that the recorded answer
// for RequiredQuestionID is exactly that option; Operator and Value are
// ignored. Otherwise Operator and Value define a comparison against the
// recorded free-text answer.
type Condition struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	// The from-question whose outgoing routes this condition gates
	QuestionID uint `gorm:"not null;index" json:"question_id"`

	RequiredQuestionID uint    `gorm:"not null" json:"required_question_id"`
	RequiredOptionID   *uint   `json:"required_option_id"`
	Operator           string  `gorm:"default:'='" json:"operator"`
	Value              *string `json:"value"`

	ConditionGroup string `gorm:"not null;index" json:"condition_group"`
}

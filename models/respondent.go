package models

import (
	"time"

	"gorm.io/gorm"
)

// LineUser is an end user talking to the account's bot. Rows are written by
// the external bot runtime; this application only reads them for the
// user-response matrix and placeholder substitution.
type LineUser struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	LineUserID  string `gorm:"not null;index" json:"line_user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`

	CurrentQuestionID *uint      `json:"current_question_id"`
	CompletedAt       *time.Time `json:"completed_at"`

	// Relations
	Answers []Answer `gorm:"foreignKey:LineUserID;references:ID" json:"answers,omitempty"`
}

// Answer is one recorded reply: the selected option for choice questions,
// free text otherwise. The newest row per (line_user, question) wins.
type Answer struct {
	gorm.Model
	AccountID  uint `gorm:"not null;index" json:"account_id"`
	LineUserID uint `gorm:"not null;index" json:"line_user_id"`
	QuestionID uint `gorm:"not null;index" json:"question_id"`

	OptionID *uint  `json:"option_id"`
	Text     string `json:"text"`
}

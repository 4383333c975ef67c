package models

import "gorm.io/gorm"

// StartTrigger maps a keyword typed by the LINE user to the first question of
// a flow. An account may define several entry points.
type StartTrigger struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	Keyword    string `gorm:"not null" json:"keyword"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
}

package models

import "gorm.io/gorm"

// ScheduledMessage is a follow-up message the bot runtime pushes to a LINE
// user some days after the conversation started. Body may contain the
// placeholder tokens {name}, {email}, {answers} and {answer:<question_id>}.
type ScheduledMessage struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	Title     string `gorm:"not null" json:"title"`
	Body      string `gorm:"type:text;not null" json:"body"`
	DelayDays int    `gorm:"default:1" json:"delay_days"`
	SendTime  string `gorm:"default:'10:00'" json:"send_time"` // HH:MM, account-local
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

// EmailTemplate is the body of a notification mail sent when a flow completes.
// Subject and Body accept the same placeholder tokens as ScheduledMessage.
type EmailTemplate struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	Name    string `gorm:"not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
}

// Action types fired when a LINE user reaches the anchor question
const (
	ActionTypeCalculation          = "calculation"
	ActionTypeCompleteNotification = "complete_notification"
)

// QuestionAction is a side-effect hook attached to reaching a specific
// question: run the compensation calculation, or send a completion
// notification using an email template.
type QuestionAction struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	QuestionID      uint   `gorm:"not null;index" json:"question_id"`
	Type            string `gorm:"not null" json:"type"`
	EmailTemplateID *uint  `json:"email_template_id"`
}

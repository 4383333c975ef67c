package models

import "gorm.io/gorm"

// The master_* tables hold the shared questionnaire template maintained by
// admin operators. Accounts with UseMaster serve these rows directly; the
// duplication procedure clones them into the account-scoped tables above.
// Master rows are read-only by convention for non-admin operators.

// MasterQuestion mirrors Question without an owning account
type MasterQuestion struct {
	gorm.Model
	Title string `gorm:"not null" json:"title"`
	Text  string `gorm:"type:text" json:"text"`
	Type  string `gorm:"not null;default:'free_text'" json:"type"`

	Options []MasterOption `gorm:"foreignKey:MasterQuestionID" json:"options,omitempty"`
}

// MasterOption mirrors Option
type MasterOption struct {
	gorm.Model
	MasterQuestionID uint `gorm:"not null;index" json:"master_question_id"`

	Text     string `gorm:"not null" json:"text"`
	ImageURL string `json:"image_url"`
}

// MasterQuestionRoute mirrors QuestionRoute; from/next reference master question ids
type MasterQuestionRoute struct {
	gorm.Model
	FromQuestionID uint   `gorm:"not null;index" json:"from_question_id"`
	NextQuestionID uint   `gorm:"not null;index" json:"next_question_id"`
	ConditionGroup string `gorm:"index" json:"condition_group"`
}

// MasterCondition mirrors Condition; question/option references are master ids
type MasterCondition struct {
	gorm.Model
	QuestionID         uint    `gorm:"not null;index" json:"question_id"`
	RequiredQuestionID uint    `gorm:"not null" json:"required_question_id"`
	RequiredOptionID   *uint   `json:"required_option_id"`
	Operator           string  `gorm:"default:'='" json:"operator"`
	Value              *string `json:"value"`
	ConditionGroup     string  `gorm:"not null;index" json:"condition_group"`
}

// MasterStartTrigger mirrors StartTrigger
type MasterStartTrigger struct {
	gorm.Model
	Keyword    string `gorm:"not null" json:"keyword"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
}

// MasterEmailTemplate mirrors EmailTemplate
type MasterEmailTemplate struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
}

// MasterScheduledMessage mirrors ScheduledMessage
type MasterScheduledMessage struct {
	gorm.Model
	Title     string `gorm:"not null" json:"title"`
	Body      string `gorm:"type:text;not null" json:"body"`
	DelayDays int    `gorm:"default:1" json:"delay_days"`
	SendTime  string `gorm:"default:'10:00'" json:"send_time"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

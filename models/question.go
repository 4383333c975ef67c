package models

import "gorm.io/gorm"

// Question types supported by the bot conversation engine
const (
	QuestionTypeFreeText      = "free_text"
	QuestionTypeButton        = "button"
	QuestionTypeImageCarousel = "image_carousel"
)

// Question is a node in an account's conversation flow graph
type Question struct {
	gorm.Model
	AccountID uint `gorm:"not null;index" json:"account_id"`

	Title string `gorm:"not null" json:"title"` // short label shown in flow views
	Text  string `gorm:"type:text" json:"text"` // prompt body sent to the LINE user
	Type  string `gorm:"not null;default:'free_text'" json:"type"`

	// Relations
	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

// IsChoice reports whether the question expects the user to pick an option.
// Button and image carousel questions should have at least one option to be
// usable, though this is not hard-enforced.
func (q *Question) IsChoice() bool {
	return IsChoiceType(q.Type)
}

// IsChoiceType reports whether a question type takes options
func IsChoiceType(t string) bool {
	return t == QuestionTypeButton || t == QuestionTypeImageCarousel
}

// Option is a selectable answer belonging to a button or image carousel question
type Option struct {
	gorm.Model
	QuestionID uint `gorm:"not null;index" json:"question_id"`

	Text     string `gorm:"not null" json:"text"`
	ImageURL string `json:"image_url"` // set for image carousel options
}

// OptionImage is a per-account image override for a master option. It lets an
// account keep its own carousel artwork while still serving master questions,
// and is matched by MasterOptionID when master data is duplicated.
type OptionImage struct {
	gorm.Model
	AccountID      uint   `gorm:"not null;index" json:"account_id"`
	MasterOptionID uint   `gorm:"not null;index" json:"master_option_id"`
	ImageURL       string `gorm:"not null" json:"image_url"`
}

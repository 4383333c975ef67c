package models

import "gorm.io/gorm"

// Account represents one tenant: a LINE bot configuration owned by an operator.
// While UseMaster is true the external bot runtime reads the shared master_*
// tables; after duplication the account serves its own private copies.
type Account struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name      string `gorm:"not null" json:"name"`
	UseMaster bool   `gorm:"default:true" json:"use_master"`

	// LINE channel credentials used by the external bot runtime
	LineChannelID     string `json:"line_channel_id"`
	LineChannelSecret string `json:"-"`
	LineChannelToken  string `json:"-"`

	// Destination for complete_notification actions
	NotificationEmail string `json:"notification_email"`

	// Relations
	Questions         []Question         `gorm:"foreignKey:AccountID" json:"questions,omitempty"`
	StartTriggers     []StartTrigger     `gorm:"foreignKey:AccountID" json:"start_triggers,omitempty"`
	ScheduledMessages []ScheduledMessage `gorm:"foreignKey:AccountID" json:"scheduled_messages,omitempty"`
	EmailTemplates    []EmailTemplate    `gorm:"foreignKey:AccountID" json:"email_templates,omitempty"`
	LineUsers         []LineUser         `gorm:"foreignKey:AccountID" json:"line_users,omitempty"`
}

package controller

import (
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

type MessageController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMessageController(db *gorm.DB, logger *log.Logger) *MessageController {
	return &MessageController{
		DB:     db,
		Logger: logger,
	}
}

// ---- scheduled messages ----

// ListScheduledMessages returns the account's follow-up messages
func (mc *MessageController) ListScheduledMessages(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var messages []models.ScheduledMessage
	if err := mc.DB.Where("account_id = ?", account.ID).Order("id").Find(&messages).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch scheduled messages", err)
	}

	return c.JSON(utils.SuccessResponse(messages))
}

type scheduledMessageInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"required"`
	DelayDays int    `json:"delay_days" validate:"min=0,max=365"`
	SendTime  string `json:"send_time" validate:"omitempty,len=5"`
	IsActive  *bool  `json:"is_active"`
}

// CreateScheduledMessage adds a follow-up message
func (mc *MessageController) CreateScheduledMessage(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input scheduledMessageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	message := models.ScheduledMessage{
		AccountID: account.ID,
		Title:     input.Title,
		Body:      input.Body,
		DelayDays: input.DelayDays,
		IsActive:  true,
	}
	if input.SendTime != "" {
		message.SendTime = input.SendTime
	}
	if input.IsActive != nil {
		message.IsActive = *input.IsActive
	}

	if err := mc.DB.Create(&message).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create scheduled message", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(message))
}

// UpdateScheduledMessage edits a follow-up message
func (mc *MessageController) UpdateScheduledMessage(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var message models.ScheduledMessage
	if err := mc.DB.Where("id = ? AND account_id = ?", c.Params("messageId"), account.ID).
		First(&message).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Scheduled message not found", nil)
	}

	var input scheduledMessageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{
		"title":      input.Title,
		"body":       input.Body,
		"delay_days": input.DelayDays,
	}
	if input.SendTime != "" {
		updates["send_time"] = input.SendTime
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := mc.DB.Model(&message).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update scheduled message", err)
	}

	return c.JSON(utils.SuccessResponse(message))
}

// DeleteScheduledMessage removes a follow-up message
func (mc *MessageController) DeleteScheduledMessage(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	result := mc.DB.Where("id = ? AND account_id = ?", c.Params("messageId"), account.ID).
		Delete(&models.ScheduledMessage{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete scheduled message", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Scheduled message not found", nil)
	}

	return c.JSON(fiber.Map{
		"message": "Scheduled message deleted successfully",
	})
}

// ---- email templates ----

// ListEmailTemplates returns the account's notification templates
func (mc *MessageController) ListEmailTemplates(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var templates []models.EmailTemplate
	if err := mc.DB.Where("account_id = ?", account.ID).Order("id").Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch email templates", err)
	}

	return c.JSON(utils.SuccessResponse(templates))
}

type emailTemplateInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required"`
}

// CreateEmailTemplate adds a notification template
func (mc *MessageController) CreateEmailTemplate(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input emailTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.EmailTemplate{
		AccountID: account.ID,
		Name:      input.Name,
		Subject:   input.Subject,
		Body:      input.Body,
	}
	if err := mc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create email template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// UpdateEmailTemplate edits a notification template
func (mc *MessageController) UpdateEmailTemplate(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var template models.EmailTemplate
	if err := mc.DB.Where("id = ? AND account_id = ?", c.Params("templateId"), account.ID).
		First(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Email template not found", nil)
	}

	var input emailTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{
		"name":    input.Name,
		"subject": input.Subject,
		"body":    input.Body,
	}
	if err := mc.DB.Model(&template).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update email template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// DeleteEmailTemplate refuses deletion while an action still uses the
// template
func (mc *MessageController) DeleteEmailTemplate(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var template models.EmailTemplate
	if err := mc.DB.Where("id = ? AND account_id = ?", c.Params("templateId"), account.ID).
		First(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Email template not found", nil)
	}

	msg, err := utils.CheckDependents(mc.DB, template.ID, []utils.Dependency{
		{Model: &models.QuestionAction{}, Column: "email_template_id", Label: "actions"},
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check dependencies", err)
	}
	if msg != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, msg, nil)
	}

	if err := mc.DB.Delete(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete email template", err)
	}

	return c.JSON(fiber.Map{
		"message": "Email template deleted successfully",
	})
}

// SendTestEmail renders a template against a LINE user's recorded answers
// and mails the result to the operator. Rate limited per account.
func (mc *MessageController) SendTestEmail(c *fiber.Ctx) error {
	account, err := requireAccount(c, mc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var template models.EmailTemplate
	if err := mc.DB.Where("id = ? AND account_id = ?", c.Params("templateId"), account.ID).
		First(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Email template not found", nil)
	}

	var input struct {
		To         string `json:"to" validate:"required,email"`
		LineUserID uint   `json:"line_user_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := checkmail.ValidateFormat(input.To); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid recipient address", err)
	}

	// Render placeholders against a real user when one is given, otherwise
	// sample data so the operator still sees the layout
	lineUser := models.LineUser{DisplayName: "テスト太郎", Email: "test@example.com"}
	var answered []utils.AnsweredQuestion
	if input.LineUserID != 0 {
		if err := mc.DB.Where("id = ? AND account_id = ?", input.LineUserID, account.ID).
			First(&lineUser).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "LINE user not found", nil)
		}
		answered, err = loadAnsweredQuestions(mc.DB, account.ID, lineUser.ID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load answers", err)
		}
	}

	subject := utils.RenderPlaceholders(template.Subject, lineUser, answered)
	body := utils.RenderPlaceholders(template.Body, lineUser, answered)

	if err := utils.SendMail(input.To, subject, body); err != nil {
		utils.LogError("template_test_send", err, map[string]interface{}{
			"account_id":  account.ID,
			"template_id": template.ID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send test email", err)
	}

	return c.JSON(fiber.Map{
		"message": "Test email sent",
	})
}

// loadAnsweredQuestions joins a user's answers with question and option text
// in question order
func loadAnsweredQuestions(db *gorm.DB, accountID, lineUserID uint) ([]utils.AnsweredQuestion, error) {
	var answers []models.Answer
	if err := db.Where("account_id = ? AND line_user_id = ?", accountID, lineUserID).
		Order("id").Find(&answers).Error; err != nil {
		return nil, err
	}

	questions, options, err := loadLookupMaps(db, accountID)
	if err != nil {
		return nil, err
	}

	// keep only the newest answer per question
	latest := make(map[uint]models.Answer)
	var order []uint
	for _, a := range answers {
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a
	}

	var answered []utils.AnsweredQuestion
	for _, qid := range order {
		a := latest[qid]
		aq := utils.AnsweredQuestion{Answer: a}
		if q, ok := questions[qid]; ok {
			aq.Question = q
		}
		if a.OptionID != nil {
			if o, ok := options[*a.OptionID]; ok {
				aq.OptionText = o.Text
			}
		}
		answered = append(answered, aq)
	}
	return answered, nil
}

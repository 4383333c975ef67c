package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

// ActionController manages the side-effect hooks fired when a respondent
// reaches a question: compensation calculation or completion notification.
type ActionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewActionController(db *gorm.DB, logger *log.Logger) *ActionController {
	return &ActionController{
		DB:     db,
		Logger: logger,
	}
}

func (ac *ActionController) ListActions(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var actions []models.QuestionAction
	if err := ac.DB.Where("account_id = ?", account.ID).Order("id").Find(&actions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch actions", err)
	}
	return c.JSON(utils.SuccessResponse(actions))
}

type actionInput struct {
	QuestionID      uint   `json:"question_id" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=calculation complete_notification"`
	EmailTemplateID *uint  `json:"email_template_id"`
}

// validate checks account-scoped references: the anchor question must belong
// to the account, and notification actions need a template that does too.
func (ac *ActionController) validateActionInput(accountID uint, input actionInput) string {
	var question models.Question
	if err := ac.DB.Where("id = ? AND account_id = ?", input.QuestionID, accountID).
		First(&question).Error; err != nil {
		return "Action references an unknown question"
	}
	if input.Type == models.ActionTypeCompleteNotification {
		if input.EmailTemplateID == nil {
			return "Notification actions need an email template"
		}
		var template models.EmailTemplate
		if err := ac.DB.Where("id = ? AND account_id = ?", *input.EmailTemplateID, accountID).
			First(&template).Error; err != nil {
			return "Action references an unknown email template"
		}
	}
	return ""
}

func (ac *ActionController) CreateAction(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input actionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if msg := ac.validateActionInput(account.ID, input); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, nil)
	}

	action := models.QuestionAction{
		AccountID:       account.ID,
		QuestionID:      input.QuestionID,
		Type:            input.Type,
		EmailTemplateID: input.EmailTemplateID,
	}
	if err := ac.DB.Create(&action).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create action", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(action))
}

func (ac *ActionController) UpdateAction(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var action models.QuestionAction
	if err := ac.DB.Where("id = ? AND account_id = ?", c.Params("actionId"), account.ID).
		First(&action).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Action not found", nil)
	}

	var input actionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if msg := ac.validateActionInput(account.ID, input); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, nil)
	}

	updates := map[string]interface{}{
		"question_id":       input.QuestionID,
		"type":              input.Type,
		"email_template_id": input.EmailTemplateID,
	}
	if err := ac.DB.Model(&action).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update action", err)
	}
	return c.JSON(utils.SuccessResponse(action))
}

func (ac *ActionController) DeleteAction(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	result := ac.DB.Where("id = ? AND account_id = ?", c.Params("actionId"), account.ID).
		Delete(&models.QuestionAction{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete action", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Action not found", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Action deleted successfully",
	})
}

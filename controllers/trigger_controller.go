package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

type TriggerController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTriggerController(db *gorm.DB, logger *log.Logger) *TriggerController {
	return &TriggerController{
		DB:     db,
		Logger: logger,
	}
}

// ListTriggers returns the account's start keywords
func (tc *TriggerController) ListTriggers(c *fiber.Ctx) error {
	account, err := requireAccount(c, tc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var triggers []models.StartTrigger
	if err := tc.DB.Where("account_id = ?", account.ID).Order("id").Find(&triggers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch start triggers", err)
	}

	return c.JSON(utils.SuccessResponse(triggers))
}

// CreateTrigger maps a keyword to the entry question of a flow
func (tc *TriggerController) CreateTrigger(c *fiber.Ctx) error {
	account, err := requireAccount(c, tc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input struct {
		Keyword    string `json:"keyword" validate:"required,max=100"`
		QuestionID uint   `json:"question_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var count int64
	tc.DB.Model(&models.Question{}).
		Where("id = ? AND account_id = ?", input.QuestionID, account.ID).Count(&count)
	if count == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "question_id does not exist in this account", nil)
	}

	// One keyword maps to exactly one entry point
	var existing models.StartTrigger
	if err := tc.DB.Where("account_id = ? AND keyword = ?", account.ID, input.Keyword).
		First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Keyword already registered", nil)
	}

	trigger := models.StartTrigger{
		AccountID:  account.ID,
		Keyword:    input.Keyword,
		QuestionID: input.QuestionID,
	}
	if err := tc.DB.Create(&trigger).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create start trigger", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(trigger))
}

// UpdateTrigger edits the keyword or the target question
func (tc *TriggerController) UpdateTrigger(c *fiber.Ctx) error {
	account, err := requireAccount(c, tc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var trigger models.StartTrigger
	if err := tc.DB.Where("id = ? AND account_id = ?", c.Params("triggerId"), account.ID).
		First(&trigger).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Start trigger not found", nil)
	}

	var input struct {
		Keyword    *string `json:"keyword" validate:"omitempty,max=100"`
		QuestionID *uint   `json:"question_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Keyword != nil {
		updates["keyword"] = *input.Keyword
	}
	if input.QuestionID != nil {
		var count int64
		tc.DB.Model(&models.Question{}).
			Where("id = ? AND account_id = ?", *input.QuestionID, account.ID).Count(&count)
		if count == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "question_id does not exist in this account", nil)
		}
		updates["question_id"] = *input.QuestionID
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&trigger).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update start trigger", err)
		}
	}

	return c.JSON(utils.SuccessResponse(trigger))
}

// DeleteTrigger removes a start keyword
func (tc *TriggerController) DeleteTrigger(c *fiber.Ctx) error {
	account, err := requireAccount(c, tc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	result := tc.DB.Where("id = ? AND account_id = ?", c.Params("triggerId"), account.ID).
		Delete(&models.StartTrigger{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete start trigger", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Start trigger not found", nil)
	}

	return c.JSON(fiber.Map{
		"message": "Start trigger deleted successfully",
	})
}

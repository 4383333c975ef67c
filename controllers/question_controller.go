package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

type QuestionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewQuestionController(db *gorm.DB, logger *log.Logger) *QuestionController {
	return &QuestionController{
		DB:     db,
		Logger: logger,
	}
}

// questionDependencies lists the tables that may reference a question.
// Deletion is refused while any dependent rows exist; there are no cascade
// constraints at the schema level.
func questionDependencies() []utils.Dependency {
	return []utils.Dependency{
		{Model: &models.QuestionRoute{}, Column: "from_question_id", Label: "routes"},
		{Model: &models.QuestionRoute{}, Column: "next_question_id", Label: "routes"},
		{Model: &models.Condition{}, Column: "required_question_id", Label: "conditions"},
		{Model: &models.StartTrigger{}, Column: "question_id", Label: "start triggers"},
		{Model: &models.QuestionAction{}, Column: "question_id", Label: "actions"},
	}
}

// ListQuestions returns the account's questions with their options
func (qc *QuestionController) ListQuestions(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var questions []models.Question
	if err := qc.DB.Preload("Options").
		Where("account_id = ?", account.ID).
		Order("id").
		Find(&questions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch questions", err)
	}

	return c.JSON(utils.SuccessResponse(questions))
}

// GetQuestion returns one question with options
func (qc *QuestionController) GetQuestion(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var question models.Question
	if err := qc.DB.Preload("Options").
		Where("id = ? AND account_id = ?", c.Params("questionId"), account.ID).
		First(&question).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Question not found", nil)
	}

	return c.JSON(utils.SuccessResponse(question))
}

type optionInput struct {
	Text     string `json:"text" validate:"required,max=500"`
	ImageURL string `json:"image_url" validate:"omitempty,max=1000"`
}

// CreateQuestion creates a question, optionally with inline options, in one
// transaction
func (qc *QuestionController) CreateQuestion(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input struct {
		Title   string        `json:"title" validate:"required,max=200"`
		Text    string        `json:"text" validate:"required"`
		Type    string        `json:"type" validate:"required,questiontype"`
		Options []optionInput `json:"options" validate:"omitempty,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	question := models.Question{
		AccountID: account.ID,
		Title:     input.Title,
		Text:      input.Text,
		Type:      input.Type,
	}

	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, o := range input.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       o.Text,
				ImageURL:   o.ImageURL,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			question.Options = append(question.Options, option)
		}
		return nil
	})
	if err != nil {
		qc.Logger.Printf("Failed to create question: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create question", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(question))
}

// UpdateQuestion updates title, text and type
func (qc *QuestionController) UpdateQuestion(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var question models.Question
	if err := qc.DB.Where("id = ? AND account_id = ?", c.Params("questionId"), account.ID).
		First(&question).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Question not found", nil)
	}

	var input struct {
		Title *string `json:"title" validate:"omitempty,max=200"`
		Text  *string `json:"text"`
		Type  *string `json:"type" validate:"omitempty,questiontype"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Text != nil {
		updates["text"] = *input.Text
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}

	if len(updates) > 0 {
		if err := qc.DB.Model(&question).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update question", err)
		}
	}

	return c.JSON(utils.SuccessResponse(question))
}

// DeleteQuestion refuses deletion while routes, conditions, triggers or
// actions still reference the question, then removes it with its options
func (qc *QuestionController) DeleteQuestion(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var question models.Question
	if err := qc.DB.Where("id = ? AND account_id = ?", c.Params("questionId"), account.ID).
		First(&question).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Question not found", nil)
	}

	msg, err := utils.CheckDependents(qc.DB, question.ID, questionDependencies())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check dependencies", err)
	}
	if msg != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, msg, nil)
	}

	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		qc.Logger.Printf("Failed to delete question %d: %v", question.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete question", err)
	}

	return c.JSON(fiber.Map{
		"message": "Question deleted successfully",
	})
}

// CreateOption adds an option to a question
func (qc *QuestionController) CreateOption(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var question models.Question
	if err := qc.DB.Where("id = ? AND account_id = ?", c.Params("questionId"), account.ID).
		First(&question).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Question not found", nil)
	}

	var input optionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	option := models.Option{
		QuestionID: question.ID,
		Text:       input.Text,
		ImageURL:   input.ImageURL,
	}
	if err := qc.DB.Create(&option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create option", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(option))
}

// UpdateOption edits an option's text or image
func (qc *QuestionController) UpdateOption(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	option, errResp := qc.findAccountOption(c, account.ID)
	if errResp != nil {
		return errResp(c)
	}

	var input struct {
		Text     *string `json:"text" validate:"omitempty,max=500"`
		ImageURL *string `json:"image_url" validate:"omitempty,max=1000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Text != nil {
		updates["text"] = *input.Text
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if len(updates) > 0 {
		if err := qc.DB.Model(option).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update option", err)
		}
	}

	return c.JSON(utils.SuccessResponse(option))
}

// DeleteOption refuses deletion while conditions reference the option, so a
// route cannot silently lose its predicate
func (qc *QuestionController) DeleteOption(c *fiber.Ctx) error {
	account, err := requireAccount(c, qc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	option, errResp := qc.findAccountOption(c, account.ID)
	if errResp != nil {
		return errResp(c)
	}

	msg, err := utils.CheckDependents(qc.DB, option.ID, []utils.Dependency{
		{Model: &models.Condition{}, Column: "required_option_id", Label: "conditions"},
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check dependencies", err)
	}
	if msg != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, msg, nil)
	}

	if err := qc.DB.Delete(option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete option", err)
	}

	return c.JSON(fiber.Map{
		"message": "Option deleted successfully",
	})
}

// findAccountOption resolves the :optionId parameter and verifies the option
// belongs to a question of the given account
func (qc *QuestionController) findAccountOption(c *fiber.Ctx, accountID uint) (*models.Option, func(*fiber.Ctx) error) {
	var option models.Option
	err := qc.DB.Joins("JOIN questions ON questions.id = options.question_id").
		Where("options.id = ? AND questions.account_id = ?", c.Params("optionId"), accountID).
		First(&option).Error
	if err != nil {
		return nil, func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Option not found", nil)
		}
	}
	return &option, nil
}

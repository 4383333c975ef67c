package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

type AccountController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAccountController(db *gorm.DB, logger *log.Logger) *AccountController {
	return &AccountController{
		DB:     db,
		Logger: logger,
	}
}

// CreateAccount creates a new tenant for the signed-in operator. New accounts
// start on the shared master questionnaire.
func (ac *AccountController) CreateAccount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name              string `json:"name" validate:"required,max=200"`
		LineChannelID     string `json:"line_channel_id" validate:"omitempty,max=100"`
		LineChannelSecret string `json:"line_channel_secret" validate:"omitempty,max=200"`
		LineChannelToken  string `json:"line_channel_token" validate:"omitempty,max=500"`
		NotificationEmail string `json:"notification_email" validate:"omitempty,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	account := models.Account{
		UserID:            user.ID,
		Name:              input.Name,
		UseMaster:         true,
		LineChannelID:     input.LineChannelID,
		LineChannelSecret: input.LineChannelSecret,
		LineChannelToken:  input.LineChannelToken,
		NotificationEmail: input.NotificationEmail,
	}

	if err := ac.DB.Create(&account).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create account", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(account))
}

// GetAccounts lists the operator's accounts
func (ac *AccountController) GetAccounts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var accounts []models.Account
	if err := ac.DB.Where("user_id = ?", user.ID).Order("id").Find(&accounts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch accounts", err)
	}

	return c.JSON(utils.SuccessResponse(accounts))
}

// GetAccount returns one account owned by the operator
func (ac *AccountController) GetAccount(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	return c.JSON(utils.SuccessResponse(account))
}

// UpdateAccount updates account settings, including the use_master flag for
// switching between the shared master flow and the account's own copy.
func (ac *AccountController) UpdateAccount(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input struct {
		Name              *string `json:"name" validate:"omitempty,max=200"`
		LineChannelID     *string `json:"line_channel_id" validate:"omitempty,max=100"`
		LineChannelSecret *string `json:"line_channel_secret" validate:"omitempty,max=200"`
		LineChannelToken  *string `json:"line_channel_token" validate:"omitempty,max=500"`
		NotificationEmail *string `json:"notification_email" validate:"omitempty,email"`
		UseMaster         *bool   `json:"use_master"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.LineChannelID != nil {
		updates["line_channel_id"] = *input.LineChannelID
	}
	if input.LineChannelSecret != nil {
		updates["line_channel_secret"] = *input.LineChannelSecret
	}
	if input.LineChannelToken != nil {
		updates["line_channel_token"] = *input.LineChannelToken
	}
	if input.NotificationEmail != nil {
		updates["notification_email"] = *input.NotificationEmail
	}
	if input.UseMaster != nil {
		updates["use_master"] = *input.UseMaster
	}

	if len(updates) > 0 {
		if err := ac.DB.Model(account).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", err)
		}
	}

	return c.JSON(utils.SuccessResponse(account))
}

// DeleteAccount removes an account and all of its scoped rows
func (ac *AccountController) DeleteAccount(c *fiber.Ctx) error {
	account, err := requireAccount(c, ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		// Delete in dependency order
		tables := []interface{}{
			&models.Answer{},
			&models.LineUser{},
			&models.Condition{},
			&models.QuestionRoute{},
			&models.StartTrigger{},
			&models.QuestionAction{},
			&models.ScheduledMessage{},
			&models.EmailTemplate{},
			&models.OptionImage{},
		}
		for _, table := range tables {
			if err := tx.Where("account_id = ?", account.ID).Delete(table).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("question_id IN (?)",
			tx.Model(&models.Question{}).Select("id").Where("account_id = ?", account.ID),
		).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		return tx.Delete(account).Error
	})
	if err != nil {
		ac.Logger.Printf("Failed to delete account %d: %v", account.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account", err)
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}

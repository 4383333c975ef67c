package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
)

// requireAccount loads the account named by the :accountId route parameter
// and verifies the signed-in operator owns it. Every account-scoped handler
// goes through this instead of re-deriving the tenant from auth state.
func requireAccount(c *fiber.Ctx, db *gorm.DB) (*models.Account, error) {
	user := c.Locals("user").(*models.User)

	var account models.Account
	err := db.Where("id = ? AND user_id = ?", c.Params("accountId"), user.ID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

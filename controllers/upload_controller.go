package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

const maxUploadBytes = 5 << 20 // LINE carousel images cap at a few MB anyway

type UploadController struct {
	DB      *gorm.DB
	Storage utils.Storage
	Logger  *log.Logger
}

func NewUploadController(db *gorm.DB, storage utils.Storage, logger *log.Logger) *UploadController {
	return &UploadController{
		DB:      db,
		Storage: storage,
		Logger:  logger,
	}
}

// UploadImage stores a carousel image and returns its public URL. The file
// lands under {userId}/{accountId}/ so tenants never collide.
func (uc *UploadController) UploadImage(c *fiber.Ctx) error {
	account, err := requireAccount(c, uc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing file field", err)
	}
	if fileHeader.Size > maxUploadBytes {
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 5MB upload limit", nil)
	}

	name := strings.ToLower(fileHeader.Filename)
	dot := strings.LastIndex(name, ".")
	if dot == -1 || !allowedImageExtensions[name[dot:]] {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only jpg, png, gif and webp images are accepted", nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read upload", err)
	}
	defer f.Close()

	path := utils.ObjectPath(account.UserID, account.ID, fileHeader.Filename)
	url, err := uc.Storage.Upload(path, f)
	if err != nil {
		utils.LogError("image_upload", err, map[string]interface{}{
			"account_id": account.ID,
			"path":       path,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store upload", err)
	}

	uc.Logger.Printf("image uploaded for account %d: %s", account.ID, path)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"url":  url,
		"path": path,
	}))
}

// SetOptionImage records a per-account artwork override for a master option.
// Accounts still on master data use these instead of editing shared rows.
func (uc *UploadController) SetOptionImage(c *fiber.Ctx) error {
	account, err := requireAccount(c, uc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input struct {
		MasterOptionID uint   `json:"master_option_id" validate:"required"`
		ImageURL       string `json:"image_url" validate:"required,url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var masterOption models.MasterOption
	if err := uc.DB.First(&masterOption, input.MasterOptionID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown master option", nil)
	}

	var override models.OptionImage
	err = uc.DB.Where("account_id = ? AND master_option_id = ?", account.ID, input.MasterOptionID).
		First(&override).Error
	switch {
	case err == nil:
		if err := uc.DB.Model(&override).Update("image_url", input.ImageURL).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update option image", err)
		}
	case err == gorm.ErrRecordNotFound:
		override = models.OptionImage{
			AccountID:      account.ID,
			MasterOptionID: input.MasterOptionID,
			ImageURL:       input.ImageURL,
		}
		if err := uc.DB.Create(&override).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save option image", err)
		}
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up option image", err)
	}

	return c.JSON(utils.SuccessResponse(override))
}

// ListOptionImages returns the account's artwork overrides
func (uc *UploadController) ListOptionImages(c *fiber.Ctx) error {
	account, err := requireAccount(c, uc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var overrides []models.OptionImage
	if err := uc.DB.Where("account_id = ?", account.ID).Order("id").Find(&overrides).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch option images", err)
	}
	return c.JSON(utils.SuccessResponse(overrides))
}

// DeleteOptionImage removes an artwork override
func (uc *UploadController) DeleteOptionImage(c *fiber.Ctx) error {
	account, err := requireAccount(c, uc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	result := uc.DB.Where("id = ? AND account_id = ?", c.Params("imageId"), account.ID).
		Delete(&models.OptionImage{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete option image", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Option image not found", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Option image deleted successfully",
	})
}

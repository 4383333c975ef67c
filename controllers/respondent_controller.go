package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

// RespondentController exposes the read side of the data the external bot
// runtime records: LINE users and their answers.
type RespondentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRespondentController(db *gorm.DB, logger *log.Logger) *RespondentController {
	return &RespondentController{
		DB:     db,
		Logger: logger,
	}
}

// ListLineUsers returns the account's respondents, newest first, paginated
func (rc *RespondentController) ListLineUsers(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	if err := rc.DB.Model(&models.LineUser{}).Where("account_id = ?", account.ID).
		Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count respondents", err)
	}

	var users []models.LineUser
	if err := rc.DB.Where("account_id = ?", account.ID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch respondents", err)
	}

	return c.JSON(utils.SuccessResponse(utils.PaginatedResponse{
		Data:  users,
		Total: total,
		Page:  page,
		Limit: perPage,
	}))
}

type answerView struct {
	QuestionID    uint   `json:"question_id"`
	QuestionTitle string `json:"question_title"`
	Value         string `json:"value"`
	AnsweredAt    string `json:"answered_at"`
}

// GetLineUserAnswers returns one respondent's answers in question order,
// option answers resolved to their text
func (rc *RespondentController) GetLineUserAnswers(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var user models.LineUser
	if err := rc.DB.Where("id = ? AND account_id = ?", c.Params("lineUserId"), account.ID).
		First(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "LINE user not found", nil)
	}

	answered, err := loadAnsweredQuestions(rc.DB, account.ID, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load answers", err)
	}

	views := make([]answerView, 0, len(answered))
	for _, a := range answered {
		views = append(views, answerView{
			QuestionID:    a.Question.ID,
			QuestionTitle: a.Question.Title,
			Value:         a.DisplayValue(),
			AnsweredAt:    a.Answer.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"line_user": user,
		"answers":   views,
	}))
}

package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type DashboardStats struct {
	Questions      int64   `json:"questions"`
	Routes         int64   `json:"routes"`
	StartTriggers  int64   `json:"start_triggers"`
	LineUsers      int64   `json:"line_users"`
	Answers        int64   `json:"answers"`
	CompletionRate float64 `json:"completion_rate"`
	UseMaster      bool    `json:"use_master"`
}

type DailyAnswerPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// GetDashboardStats returns the per-account counters shown on the overview
// cards, plus the share of respondents who finished the questionnaire
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	account, err := requireAccount(c, dc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var stats DashboardStats
	stats.UseMaster = account.UseMaster

	counters := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Question{}, &stats.Questions},
		{&models.QuestionRoute{}, &stats.Routes},
		{&models.StartTrigger{}, &stats.StartTriggers},
		{&models.LineUser{}, &stats.LineUsers},
		{&models.Answer{}, &stats.Answers},
	}
	for _, counter := range counters {
		if err := dc.DB.Model(counter.model).Where("account_id = ?", account.ID).
			Count(counter.dest).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute dashboard stats", err)
		}
	}

	// completed = respondents no longer pointed at a current question
	if stats.LineUsers > 0 {
		var completed int64
		if err := dc.DB.Model(&models.LineUser{}).
			Where("account_id = ? AND current_question_id IS NULL", account.ID).
			Count(&completed).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute dashboard stats", err)
		}
		stats.CompletionRate = float64(completed) / float64(stats.LineUsers) * 100
	}

	return c.JSON(utils.SuccessResponse(stats))
}

// GetAnswerTimeline returns daily answer counts for the last N days
// (default 30, capped at 90)
func (dc *DashboardController) GetAnswerTimeline(c *fiber.Ctx) error {
	account, err := requireAccount(c, dc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	days := c.QueryInt("days", 30)
	if days < 1 || days > 90 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	var answers []models.Answer
	if err := dc.DB.Where("account_id = ? AND created_at >= ?", account.ID, since).
		Find(&answers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch answer timeline", err)
	}

	perDay := make(map[string]int64, days)
	for _, a := range answers {
		perDay[a.CreatedAt.Format("2006-01-02")]++
	}

	points := make([]DailyAnswerPoint, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, DailyAnswerPoint{Date: day, Count: perDay[day]})
	}

	return c.JSON(utils.SuccessResponse(points))
}

package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

// DuplicateController clones the shared master questionnaire into an
// account's private tables and switches the account off master mode.
type DuplicateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDuplicateController(db *gorm.DB, logger *log.Logger) *DuplicateController {
	return &DuplicateController{
		DB:     db,
		Logger: logger,
	}
}

// DuplicateMaster copies master questions, options, routes, conditions,
// start triggers, email templates and scheduled messages into the account,
// remapping all cross references to the fresh ids, then clears UseMaster.
// The whole copy runs in one transaction so a failure leaves the account
// untouched and still on master.
//
// If the account already owns questions the copy is skipped and only the
// UseMaster flag is cleared, so calling the endpoint twice cannot produce
// a second set of rows.
func (dc *DuplicateController) DuplicateMaster(c *fiber.Ctx) error {
	account, err := requireAccount(c, dc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var existing int64
	if err := dc.DB.Model(&models.Question{}).Where("account_id = ?", account.ID).
		Count(&existing).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to inspect account data", err)
	}
	if existing > 0 {
		if account.UseMaster {
			if err := dc.DB.Model(&account).Update("use_master", false).Error; err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", err)
			}
		}
		return c.JSON(fiber.Map{
			"message":    "Account already has its own data, switched off master",
			"duplicated": false,
		})
	}

	var copied copyCounts
	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		counts, err := copyMasterData(tx, account.ID)
		if err != nil {
			return err
		}
		copied = counts
		return tx.Model(&models.Account{}).Where("id = ?", account.ID).
			Update("use_master", false).Error
	})
	if err != nil {
		utils.LogError("master_duplication", err, map[string]interface{}{
			"account_id": account.ID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to duplicate master data", err)
	}

	dc.Logger.Printf("master data duplicated into account %d: %d questions, %d routes", account.ID, copied.Questions, copied.Routes)
	return c.JSON(fiber.Map{
		"message":    "Master data duplicated successfully",
		"duplicated": true,
		"counts":     copied,
	})
}

type copyCounts struct {
	Questions         int `json:"questions"`
	Options           int `json:"options"`
	Routes            int `json:"routes"`
	Conditions        int `json:"conditions"`
	StartTriggers     int `json:"start_triggers"`
	EmailTemplates    int `json:"email_templates"`
	ScheduledMessages int `json:"scheduled_messages"`
}

// copyMasterData performs the ordered copy inside the caller's transaction.
// Questions and options come first so that the id maps exist before routes,
// conditions and triggers are remapped through them.
func copyMasterData(tx *gorm.DB, accountID uint) (copyCounts, error) {
	var counts copyCounts

	// per-account carousel artwork overrides, matched by master option id
	var overrides []models.OptionImage
	if err := tx.Where("account_id = ?", accountID).Find(&overrides).Error; err != nil {
		return counts, err
	}
	overrideByMasterOption := make(map[uint]string, len(overrides))
	for _, o := range overrides {
		overrideByMasterOption[o.MasterOptionID] = o.ImageURL
	}

	questionIDs := make(map[uint]uint)
	optionIDs := make(map[uint]uint)

	var masterQuestions []models.MasterQuestion
	if err := tx.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("id").Find(&masterQuestions).Error; err != nil {
		return counts, err
	}

	for _, mq := range masterQuestions {
		question := models.Question{
			AccountID: accountID,
			Title:     mq.Title,
			Text:      mq.Text,
			Type:      mq.Type,
		}
		if err := tx.Create(&question).Error; err != nil {
			return counts, err
		}
		questionIDs[mq.ID] = question.ID
		counts.Questions++

		for _, mo := range mq.Options {
			imageURL := mo.ImageURL
			if url, ok := overrideByMasterOption[mo.ID]; ok {
				imageURL = url
			}
			option := models.Option{
				QuestionID: question.ID,
				Text:       mo.Text,
				ImageURL:   imageURL,
			}
			if err := tx.Create(&option).Error; err != nil {
				return counts, err
			}
			optionIDs[mo.ID] = option.ID
			counts.Options++
		}
	}

	var masterRoutes []models.MasterQuestionRoute
	if err := tx.Order("id").Find(&masterRoutes).Error; err != nil {
		return counts, err
	}
	for _, mr := range masterRoutes {
		from, okFrom := questionIDs[mr.FromQuestionID]
		next, okNext := questionIDs[mr.NextQuestionID]
		if !okFrom || !okNext {
			return counts, fiber.NewError(fiber.StatusInternalServerError, "master route references a missing master question")
		}
		route := models.QuestionRoute{
			AccountID:      accountID,
			FromQuestionID: from,
			NextQuestionID: next,
			ConditionGroup: mr.ConditionGroup,
		}
		if err := tx.Create(&route).Error; err != nil {
			return counts, err
		}
		counts.Routes++
	}

	var masterConditions []models.MasterCondition
	if err := tx.Order("id").Find(&masterConditions).Error; err != nil {
		return counts, err
	}
	for _, mc := range masterConditions {
		question, okQ := questionIDs[mc.QuestionID]
		required, okR := questionIDs[mc.RequiredQuestionID]
		if !okQ || !okR {
			return counts, fiber.NewError(fiber.StatusInternalServerError, "master condition references a missing master question")
		}
		cond := models.Condition{
			AccountID:          accountID,
			QuestionID:         question,
			RequiredQuestionID: required,
			Operator:           mc.Operator,
			Value:              mc.Value,
			ConditionGroup:     mc.ConditionGroup,
		}
		if mc.RequiredOptionID != nil {
			mapped, ok := optionIDs[*mc.RequiredOptionID]
			if !ok {
				return counts, fiber.NewError(fiber.StatusInternalServerError, "master condition references a missing master option")
			}
			cond.RequiredOptionID = &mapped
		}
		if err := tx.Create(&cond).Error; err != nil {
			return counts, err
		}
		counts.Conditions++
	}

	var masterTriggers []models.MasterStartTrigger
	if err := tx.Order("id").Find(&masterTriggers).Error; err != nil {
		return counts, err
	}
	for _, mt := range masterTriggers {
		question, ok := questionIDs[mt.QuestionID]
		if !ok {
			return counts, fiber.NewError(fiber.StatusInternalServerError, "master trigger references a missing master question")
		}
		trigger := models.StartTrigger{
			AccountID:  accountID,
			Keyword:    mt.Keyword,
			QuestionID: question,
		}
		if err := tx.Create(&trigger).Error; err != nil {
			return counts, err
		}
		counts.StartTriggers++
	}

	var masterTemplates []models.MasterEmailTemplate
	if err := tx.Order("id").Find(&masterTemplates).Error; err != nil {
		return counts, err
	}
	for _, mt := range masterTemplates {
		template := models.EmailTemplate{
			AccountID: accountID,
			Name:      mt.Name,
			Subject:   mt.Subject,
			Body:      mt.Body,
		}
		if err := tx.Create(&template).Error; err != nil {
			return counts, err
		}
		counts.EmailTemplates++
	}

	var masterMessages []models.MasterScheduledMessage
	if err := tx.Order("id").Find(&masterMessages).Error; err != nil {
		return counts, err
	}
	for _, mm := range masterMessages {
		message := models.ScheduledMessage{
			AccountID: accountID,
			Title:     mm.Title,
			Body:      mm.Body,
			DelayDays: mm.DelayDays,
			SendTime:  mm.SendTime,
			IsActive:  mm.IsActive,
		}
		if err := tx.Create(&message).Error; err != nil {
			return counts, err
		}
		counts.ScheduledMessages++
	}

	return counts, nil
}

package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"askline/models"
	"askline/utils"
)

// MasterController manages the shared questionnaire template. All routes
// registered for it sit behind AdminOnly.
type MasterController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMasterController(db *gorm.DB, logger *log.Logger) *MasterController {
	return &MasterController{
		DB:     db,
		Logger: logger,
	}
}

// ---- master questions ----

func (mc *MasterController) ListMasterQuestions(c *fiber.Ctx) error {
	var questions []models.MasterQuestion
	if err := mc.DB.Preload("Options").Order("id").Find(&questions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master questions", err)
	}
	return c.JSON(utils.SuccessResponse(questions))
}

type masterQuestionInput struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Text    string   `json:"text"`
	Type    string   `json:"type" validate:"required,questiontype"`
	Options []string `json:"options" validate:"dive,required"`
}

func (mc *MasterController) CreateMasterQuestion(c *fiber.Ctx) error {
	var input masterQuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	question := models.MasterQuestion{
		Title: input.Title,
		Text:  input.Text,
		Type:  input.Type,
	}
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, text := range input.Options {
			option := models.MasterOption{MasterQuestionID: question.ID, Text: text}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			question.Options = append(question.Options, option)
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master question", err)
	}

	mc.Logger.Printf("master question %d created by user %d", question.ID, c.Locals("userID"))
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(question))
}

func (mc *MasterController) UpdateMasterQuestion(c *fiber.Ctx) error {
	var question models.MasterQuestion
	if err := mc.DB.First(&question, c.Params("questionId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master question not found", nil)
	}

	var input struct {
		Title string `json:"title" validate:"required,max=200"`
		Text  string `json:"text"`
		Type  string `json:"type" validate:"required,questiontype"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{
		"title": input.Title,
		"text":  input.Text,
		"type":  input.Type,
	}
	if err := mc.DB.Model(&question).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update master question", err)
	}
	return c.JSON(utils.SuccessResponse(question))
}

// DeleteMasterQuestion refuses deletion while routes, conditions or triggers
// still reference the question
func (mc *MasterController) DeleteMasterQuestion(c *fiber.Ctx) error {
	var question models.MasterQuestion
	if err := mc.DB.First(&question, c.Params("questionId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master question not found", nil)
	}

	msg, err := utils.CheckDependents(mc.DB, question.ID, []utils.Dependency{
		{Model: &models.MasterQuestionRoute{}, Column: "from_question_id", Label: "routes"},
		{Model: &models.MasterQuestionRoute{}, Column: "next_question_id", Label: "routes"},
		{Model: &models.MasterCondition{}, Column: "required_question_id", Label: "conditions"},
		{Model: &models.MasterStartTrigger{}, Column: "question_id", Label: "start triggers"},
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check dependencies", err)
	}
	if msg != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, msg, nil)
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("master_question_id = ?", question.ID).
			Delete(&models.MasterOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master question", err)
	}

	return c.JSON(fiber.Map{
		"message": "Master question deleted successfully",
	})
}

// ---- master options ----

type masterOptionInput struct {
	Text     string `json:"text" validate:"required,max=500"`
	ImageURL string `json:"image_url"`
}

func (mc *MasterController) CreateMasterOption(c *fiber.Ctx) error {
	var question models.MasterQuestion
	if err := mc.DB.First(&question, c.Params("questionId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master question not found", nil)
	}
	if !models.IsChoiceType(question.Type) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Question type does not take options", nil)
	}

	var input masterOptionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	option := models.MasterOption{
		MasterQuestionID: question.ID,
		Text:             input.Text,
		ImageURL:         input.ImageURL,
	}
	if err := mc.DB.Create(&option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master option", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(option))
}

func (mc *MasterController) UpdateMasterOption(c *fiber.Ctx) error {
	var option models.MasterOption
	if err := mc.DB.Where("id = ? AND master_question_id = ?",
		c.Params("optionId"), c.Params("questionId")).First(&option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master option not found", nil)
	}

	var input masterOptionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{
		"text":      input.Text,
		"image_url": input.ImageURL,
	}
	if err := mc.DB.Model(&option).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update master option", err)
	}
	return c.JSON(utils.SuccessResponse(option))
}

func (mc *MasterController) DeleteMasterOption(c *fiber.Ctx) error {
	var option models.MasterOption
	if err := mc.DB.Where("id = ? AND master_question_id = ?",
		c.Params("optionId"), c.Params("questionId")).First(&option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master option not found", nil)
	}

	msg, err := utils.CheckDependents(mc.DB, option.ID, []utils.Dependency{
		{Model: &models.MasterCondition{}, Column: "required_option_id", Label: "conditions"},
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check dependencies", err)
	}
	if msg != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, msg, nil)
	}

	if err := mc.DB.Delete(&option).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master option", err)
	}
	return c.JSON(fiber.Map{
		"message": "Master option deleted successfully",
	})
}

// ---- master routes ----

type masterRouteWithConditions struct {
	models.MasterQuestionRoute
	Conditions []models.MasterCondition `json:"conditions"`
}

func (mc *MasterController) ListMasterRoutes(c *fiber.Ctx) error {
	var routes []models.MasterQuestionRoute
	if err := mc.DB.Order("id").Find(&routes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master routes", err)
	}
	var conditions []models.MasterCondition
	if err := mc.DB.Order("id").Find(&conditions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master conditions", err)
	}

	byGroup := make(map[string][]models.MasterCondition)
	for _, cond := range conditions {
		byGroup[cond.ConditionGroup] = append(byGroup[cond.ConditionGroup], cond)
	}
	out := make([]masterRouteWithConditions, 0, len(routes))
	for _, r := range routes {
		out = append(out, masterRouteWithConditions{
			MasterQuestionRoute: r,
			Conditions:          byGroup[r.ConditionGroup],
		})
	}
	return c.JSON(utils.SuccessResponse(out))
}

type masterConditionInput struct {
	RequiredQuestionID uint    `json:"required_question_id" validate:"required"`
	RequiredOptionID   *uint   `json:"required_option_id"`
	Operator           string  `json:"operator" validate:"omitempty,operator"`
	Value              *string `json:"value"`
}

type masterRouteInput struct {
	FromQuestionID uint                   `json:"from_question_id" validate:"required"`
	NextQuestionID uint                   `json:"next_question_id" validate:"required"`
	Conditions     []masterConditionInput `json:"conditions" validate:"dive"`
}

func (mc *MasterController) CreateMasterRoute(c *fiber.Ctx) error {
	var input masterRouteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := mc.validateRouteInput(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	route := models.MasterQuestionRoute{
		FromQuestionID: input.FromQuestionID,
		NextQuestionID: input.NextQuestionID,
	}
	if len(input.Conditions) > 0 {
		route.ConditionGroup = uuid.NewString()
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&route).Error; err != nil {
			return err
		}
		return createMasterConditions(tx, route, input.Conditions)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master route", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(route))
}

func (mc *MasterController) UpdateMasterRoute(c *fiber.Ctx) error {
	var route models.MasterQuestionRoute
	if err := mc.DB.First(&route, c.Params("routeId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master route not found", nil)
	}

	var input masterRouteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := mc.validateRouteInput(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		if route.ConditionGroup != "" {
			if err := tx.Where("condition_group = ?", route.ConditionGroup).
				Delete(&models.MasterCondition{}).Error; err != nil {
				return err
			}
		}

		route.FromQuestionID = input.FromQuestionID
		route.NextQuestionID = input.NextQuestionID
		route.ConditionGroup = ""
		if len(input.Conditions) > 0 {
			route.ConditionGroup = uuid.NewString()
		}
		if err := tx.Save(&route).Error; err != nil {
			return err
		}
		return createMasterConditions(tx, route, input.Conditions)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update master route", err)
	}
	return c.JSON(utils.SuccessResponse(route))
}

func (mc *MasterController) DeleteMasterRoute(c *fiber.Ctx) error {
	var route models.MasterQuestionRoute
	if err := mc.DB.First(&route, c.Params("routeId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master route not found", nil)
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		if route.ConditionGroup != "" {
			if err := tx.Where("condition_group = ?", route.ConditionGroup).
				Delete(&models.MasterCondition{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&route).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master route", err)
	}
	return c.JSON(fiber.Map{
		"message": "Master route deleted successfully",
	})
}

func (mc *MasterController) validateRouteInput(input masterRouteInput) error {
	ids := []uint{input.FromQuestionID, input.NextQuestionID}
	for _, cond := range input.Conditions {
		ids = append(ids, cond.RequiredQuestionID)
	}
	var count int64
	if err := mc.DB.Model(&models.MasterQuestion{}).Where("id IN ?", ids).
		Distinct("id").Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(uniqueIDs(ids))) {
		return fiber.NewError(fiber.StatusBadRequest, "route references an unknown master question")
	}
	for _, cond := range input.Conditions {
		if cond.RequiredOptionID == nil && cond.Value == nil {
			return fiber.NewError(fiber.StatusBadRequest, "condition needs an option or a value")
		}
		if cond.RequiredOptionID != nil {
			var option models.MasterOption
			if err := mc.DB.First(&option, *cond.RequiredOptionID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "condition references an unknown master option")
			}
		}
	}
	return nil
}

func createMasterConditions(tx *gorm.DB, route models.MasterQuestionRoute, inputs []masterConditionInput) error {
	for _, in := range inputs {
		operator := in.Operator
		if operator == "" {
			operator = models.OperatorEqual
		}
		cond := models.MasterCondition{
			QuestionID:         route.FromQuestionID,
			RequiredQuestionID: in.RequiredQuestionID,
			RequiredOptionID:   in.RequiredOptionID,
			Operator:           operator,
			Value:              in.Value,
			ConditionGroup:     route.ConditionGroup,
		}
		if err := tx.Create(&cond).Error; err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	var out []uint
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ---- master triggers, templates, scheduled messages ----

func (mc *MasterController) ListMasterTriggers(c *fiber.Ctx) error {
	var triggers []models.MasterStartTrigger
	if err := mc.DB.Order("id").Find(&triggers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master triggers", err)
	}
	return c.JSON(utils.SuccessResponse(triggers))
}

func (mc *MasterController) CreateMasterTrigger(c *fiber.Ctx) error {
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

	var question models.MasterQuestion
	if err := mc.DB.First(&question, input.QuestionID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Trigger references an unknown master question", nil)
	}

	var existing int64
	mc.DB.Model(&models.MasterStartTrigger{}).Where("keyword = ?", input.Keyword).Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A master trigger with this keyword already exists", nil)
	}

	trigger := models.MasterStartTrigger{Keyword: input.Keyword, QuestionID: input.QuestionID}
	if err := mc.DB.Create(&trigger).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master trigger", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(trigger))
}

func (mc *MasterController) DeleteMasterTrigger(c *fiber.Ctx) error {
	result := mc.DB.Delete(&models.MasterStartTrigger{}, c.Params("triggerId"))
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master trigger", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master trigger not found", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Master trigger deleted successfully",
	})
}

func (mc *MasterController) ListMasterTemplates(c *fiber.Ctx) error {
	var templates []models.MasterEmailTemplate
	if err := mc.DB.Order("id").Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master templates", err)
	}
	return c.JSON(utils.SuccessResponse(templates))
}

func (mc *MasterController) CreateMasterTemplate(c *fiber.Ctx) error {
	var input emailTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.MasterEmailTemplate{Name: input.Name, Subject: input.Subject, Body: input.Body}
	if err := mc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master template", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

func (mc *MasterController) UpdateMasterTemplate(c *fiber.Ctx) error {
	var template models.MasterEmailTemplate
	if err := mc.DB.First(&template, c.Params("templateId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master template not found", nil)
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
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update master template", err)
	}
	return c.JSON(utils.SuccessResponse(template))
}

func (mc *MasterController) DeleteMasterTemplate(c *fiber.Ctx) error {
	result := mc.DB.Delete(&models.MasterEmailTemplate{}, c.Params("templateId"))
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master template", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master template not found", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Master template deleted successfully",
	})
}

func (mc *MasterController) ListMasterMessages(c *fiber.Ctx) error {
	var messages []models.MasterScheduledMessage
	if err := mc.DB.Order("id").Find(&messages).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch master messages", err)
	}
	return c.JSON(utils.SuccessResponse(messages))
}

func (mc *MasterController) CreateMasterMessage(c *fiber.Ctx) error {
	var input scheduledMessageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	message := models.MasterScheduledMessage{
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
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create master message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(message))
}

func (mc *MasterController) UpdateMasterMessage(c *fiber.Ctx) error {
	var message models.MasterScheduledMessage
	if err := mc.DB.First(&message, c.Params("messageId")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master message not found", nil)
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
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update master message", err)
	}
	return c.JSON(utils.SuccessResponse(message))
}

func (mc *MasterController) DeleteMasterMessage(c *fiber.Ctx) error {
	result := mc.DB.Delete(&models.MasterScheduledMessage{}, c.Params("messageId"))
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete master message", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Master message not found", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Master message deleted successfully",
	})
}

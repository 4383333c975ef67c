package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"askline/flow"
	"askline/models"
	"askline/utils"
)

type RouteController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRouteController(db *gorm.DB, logger *log.Logger) *RouteController {
	return &RouteController{
		DB:     db,
		Logger: logger,
	}
}

type conditionInput struct {
	RequiredQuestionID uint    `json:"required_question_id" validate:"required"`
	RequiredOptionID   *uint   `json:"required_option_id"`
	Operator           string  `json:"operator" validate:"omitempty,operator"`
	Value              *string `json:"value"`
}

// RouteWithConditions is the route dialog's read shape: the edge, its
// conditions, and the rendered description.
type RouteWithConditions struct {
	Route       models.QuestionRoute `json:"route"`
	Conditions  []models.Condition   `json:"conditions"`
	Description string               `json:"description"`
}

// ListRoutes returns the account's routes with conditions and human-readable
// descriptions, optionally narrowed to one question via ?question_id=
func (rc *RouteController) ListRoutes(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	routeQuery := rc.DB.Where("account_id = ?", account.ID)
	conditionQuery := rc.DB.Where("account_id = ?", account.ID)
	if questionID := utils.ParseUint(c.Query("question_id")); questionID != 0 {
		routeQuery = routeQuery.Where("from_question_id = ?", questionID)
		conditionQuery = conditionQuery.Where("question_id = ?", questionID)
	}

	var routes []models.QuestionRoute
	if err := routeQuery.Order("id").Find(&routes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch routes", err)
	}

	var conditions []models.Condition
	if err := conditionQuery.Order("id").Find(&conditions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conditions", err)
	}

	questions, options, err := loadLookupMaps(rc.DB, account.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch questions", err)
	}

	byGroup := make(map[string][]models.Condition)
	for _, cond := range conditions {
		byGroup[cond.ConditionGroup] = append(byGroup[cond.ConditionGroup], cond)
	}

	result := make([]RouteWithConditions, 0, len(routes))
	for _, r := range routes {
		group := byGroup[r.ConditionGroup]
		result = append(result, RouteWithConditions{
			Route:       r,
			Conditions:  group,
			Description: flow.DescribeGroup(group, questions, options),
		})
	}

	return c.JSON(utils.SuccessResponse(result))
}

// CreateRoute inserts a route and its conditions as one unit of work. The
// condition group id is generated server-side; a route submitted without
// conditions becomes the unconditional default.
func (rc *RouteController) CreateRoute(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var input struct {
		FromQuestionID uint             `json:"from_question_id" validate:"required"`
		NextQuestionID uint             `json:"next_question_id" validate:"required"`
		Conditions     []conditionInput `json:"conditions" validate:"omitempty,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if msg := rc.validateRouteInput(account.ID, input.FromQuestionID, input.NextQuestionID, input.Conditions); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, nil)
	}

	route := models.QuestionRoute{
		AccountID:      account.ID,
		FromQuestionID: input.FromQuestionID,
		NextQuestionID: input.NextQuestionID,
	}
	if len(input.Conditions) > 0 {
		route.ConditionGroup = uuid.NewString()
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&route).Error; err != nil {
			return err
		}
		return createConditions(tx, account.ID, &route, input.Conditions)
	})
	if err != nil {
		rc.Logger.Printf("Failed to create route: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create route", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(route))
}

// UpdateRoute changes the target question and replaces the condition set.
// Replacement happens inside one transaction so a half-updated group can
// never be observed.
func (rc *RouteController) UpdateRoute(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var route models.QuestionRoute
	if err := rc.DB.Where("id = ? AND account_id = ?", c.Params("routeId"), account.ID).
		First(&route).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
	}

	var input struct {
		NextQuestionID uint             `json:"next_question_id" validate:"required"`
		Conditions     []conditionInput `json:"conditions" validate:"omitempty,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if msg := rc.validateRouteInput(account.ID, route.FromQuestionID, input.NextQuestionID, input.Conditions); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, nil)
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if route.ConditionGroup != "" {
			if err := tx.Where("account_id = ? AND question_id = ? AND condition_group = ?",
				account.ID, route.FromQuestionID, route.ConditionGroup).
				Delete(&models.Condition{}).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"next_question_id": input.NextQuestionID}
		if len(input.Conditions) > 0 && route.ConditionGroup == "" {
			route.ConditionGroup = uuid.NewString()
			updates["condition_group"] = route.ConditionGroup
		}
		if len(input.Conditions) == 0 && route.ConditionGroup != "" {
			route.ConditionGroup = ""
			updates["condition_group"] = ""
		}
		if err := tx.Model(&route).Updates(updates).Error; err != nil {
			return err
		}
		route.NextQuestionID = input.NextQuestionID

		return createConditions(tx, account.ID, &route, input.Conditions)
	})
	if err != nil {
		rc.Logger.Printf("Failed to update route %d: %v", route.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update route", err)
	}

	return c.JSON(utils.SuccessResponse(route))
}

// DeleteRoute removes a route together with its condition group
func (rc *RouteController) DeleteRoute(c *fiber.Ctx) error {
	account, err := requireAccount(c, rc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	var route models.QuestionRoute
	if err := rc.DB.Where("id = ? AND account_id = ?", c.Params("routeId"), account.ID).
		First(&route).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if route.ConditionGroup != "" {
			if err := tx.Where("account_id = ? AND question_id = ? AND condition_group = ?",
				account.ID, route.FromQuestionID, route.ConditionGroup).
				Delete(&models.Condition{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&route).Error
	})
	if err != nil {
		rc.Logger.Printf("Failed to delete route %d: %v", route.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete route", err)
	}

	return c.JSON(fiber.Map{
		"message": "Route deleted successfully",
	})
}

// validateRouteInput checks that every referenced question and option exists
// within the account, returning a user-facing message when not
func (rc *RouteController) validateRouteInput(accountID, fromID, nextID uint, conditions []conditionInput) string {
	var count int64
	rc.DB.Model(&models.Question{}).
		Where("account_id = ? AND id IN ?", accountID, []uint{fromID, nextID}).
		Count(&count)
	wanted := int64(2)
	if fromID == nextID {
		wanted = 1
	}
	if count < wanted {
		return "from_question_id or next_question_id does not exist in this account"
	}

	for _, cond := range conditions {
		var qCount int64
		rc.DB.Model(&models.Question{}).
			Where("account_id = ? AND id = ?", accountID, cond.RequiredQuestionID).
			Count(&qCount)
		if qCount == 0 {
			return "required_question_id does not exist in this account"
		}
		if cond.RequiredOptionID != nil {
			var oCount int64
			rc.DB.Model(&models.Option{}).
				Where("id = ? AND question_id = ?", *cond.RequiredOptionID, cond.RequiredQuestionID).
				Count(&oCount)
			if oCount == 0 {
				return "required_option_id does not belong to the required question"
			}
		} else if cond.Value == nil {
			return "condition needs either required_option_id or value"
		}
	}
	return ""
}

func createConditions(tx *gorm.DB, accountID uint, route *models.QuestionRoute, inputs []conditionInput) error {
	for _, in := range inputs {
		operator := in.Operator
		if operator == "" {
			operator = models.OperatorEqual
		}
		cond := models.Condition{
			AccountID:          accountID,
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

// loadLookupMaps fetches the account's questions and options keyed by id for
// the describe formatter
func loadLookupMaps(db *gorm.DB, accountID uint) (map[uint]models.Question, map[uint]models.Option, error) {
	var questions []models.Question
	if err := db.Where("account_id = ?", accountID).Find(&questions).Error; err != nil {
		return nil, nil, err
	}

	var options []models.Option
	if err := db.Joins("JOIN questions ON questions.id = options.question_id").
		Where("questions.account_id = ?", accountID).
		Find(&options).Error; err != nil {
		return nil, nil, err
	}

	qMap := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		qMap[q.ID] = q
	}
	oMap := make(map[uint]models.Option, len(options))
	for _, o := range options {
		oMap[o.ID] = o
	}
	return qMap, oMap, nil
}

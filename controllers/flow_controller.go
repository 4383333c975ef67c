package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"askline/flow"
	"askline/models"
	"askline/utils"
)

type FlowController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewFlowController(db *gorm.DB, logger *log.Logger) *FlowController {
	return &FlowController{
		DB:     db,
		Logger: logger,
	}
}

// flowData is everything the flow views need, loaded either from the
// account's private tables or from the master tables when the account still
// serves master data
type flowData struct {
	Questions     []models.Question
	Routes        []models.QuestionRoute
	Conditions    []models.Condition
	QuestionsByID map[uint]models.Question
	OptionsByID   map[uint]models.Option
}

func (fc *FlowController) loadFlowData(account *models.Account) (*flowData, error) {
	if account.UseMaster {
		return loadMasterFlowData(fc.DB)
	}

	d := &flowData{}
	if err := fc.DB.Preload("Options").Where("account_id = ?", account.ID).
		Order("id").Find(&d.Questions).Error; err != nil {
		return nil, err
	}
	if err := fc.DB.Where("account_id = ?", account.ID).Order("id").Find(&d.Routes).Error; err != nil {
		return nil, err
	}
	if err := fc.DB.Where("account_id = ?", account.ID).Order("id").Find(&d.Conditions).Error; err != nil {
		return nil, err
	}
	d.index()
	return d, nil
}

func (d *flowData) index() {
	d.QuestionsByID = make(map[uint]models.Question, len(d.Questions))
	d.OptionsByID = make(map[uint]models.Option)
	for _, q := range d.Questions {
		d.QuestionsByID[q.ID] = q
		for _, o := range q.Options {
			d.OptionsByID[o.ID] = o
		}
	}
}

func (d *flowData) describeRoute(r models.QuestionRoute) string {
	if r.ConditionGroup == "" {
		return ""
	}
	var group []models.Condition
	for _, c := range d.Conditions {
		if c.QuestionID == r.FromQuestionID && c.ConditionGroup == r.ConditionGroup {
			group = append(group, c)
		}
	}
	return flow.DescribeGroup(group, d.QuestionsByID, d.OptionsByID)
}

func (d *flowData) conditionsFor(questionID uint) []models.Condition {
	var conds []models.Condition
	for _, c := range d.Conditions {
		if c.QuestionID == questionID {
			conds = append(conds, c)
		}
	}
	return conds
}

// GetFlowTree renders the question flow as a tree per start question, each
// branch captioned with its condition description
func (fc *FlowController) GetFlowTree(c *fiber.Ctx) error {
	account, err := requireAccount(c, fc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	data, err := fc.loadFlowData(account)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load flow", err)
	}

	g := flow.NewGraph(data.Questions, data.Routes)

	var trees []*flow.TreeNode
	for _, startID := range g.StartQuestionIDs() {
		if tree := g.BuildTree(startID, data.describeRoute); tree != nil {
			trees = append(trees, tree)
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"use_master": account.UseMaster,
		"trees":      trees,
	}))
}

// GetFlowGrid returns the BFS level layout used by the visual flow chart:
// one column per level, unreachable questions in the final fallback column
func (fc *FlowController) GetFlowGrid(c *fiber.Ctx) error {
	account, err := requireAccount(c, fc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	data, err := fc.loadFlowData(account)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load flow", err)
	}

	g := flow.NewGraph(data.Questions, data.Routes)
	levels := g.Levels()

	type gridCell struct {
		Question models.Question `json:"question"`
		Level    int             `json:"level"`
	}
	type gridEdge struct {
		RouteID        uint   `json:"route_id"`
		FromQuestionID uint   `json:"from_question_id"`
		NextQuestionID uint   `json:"next_question_id"`
		Label          string `json:"label"`
	}

	cells := make([]gridCell, 0, len(data.Questions))
	for _, q := range data.Questions {
		cells = append(cells, gridCell{Question: q, Level: levels[q.ID]})
	}

	edges := make([]gridEdge, 0, len(data.Routes))
	for _, r := range data.Routes {
		edges = append(edges, gridEdge{
			RouteID:        r.ID,
			FromQuestionID: r.FromQuestionID,
			NextQuestionID: r.NextQuestionID,
			Label:          data.describeRoute(r),
		})
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"use_master": account.UseMaster,
		"cells":      cells,
		"edges":      edges,
	}))
}

// GetResponseMatrix builds the per-user answer table. Columns follow the
// linear chain from the first start trigger's question; rows are the
// account's LINE users.
func (fc *FlowController) GetResponseMatrix(c *fiber.Ctx) error {
	account, err := requireAccount(c, fc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Account not found", nil)
	}

	data, err := fc.loadFlowData(account)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load flow", err)
	}

	g := flow.NewGraph(data.Questions, data.Routes)

	// The first start trigger anchors the column order; fall back to the
	// graph's start heuristic when no trigger exists yet
	startID := uint(0)
	var trigger models.StartTrigger
	if err := fc.DB.Where("account_id = ?", account.ID).Order("id").First(&trigger).Error; err == nil {
		startID = trigger.QuestionID
	} else if starts := g.StartQuestionIDs(); len(starts) > 0 {
		startID = starts[0]
	}

	chain := g.Chain(startID)
	columns := make([]models.Question, 0, len(chain))
	for _, id := range chain {
		if q, ok := g.Question(id); ok {
			columns = append(columns, q)
		}
	}

	var lineUsers []models.LineUser
	if err := fc.DB.Where("account_id = ?", account.ID).Order("id").Find(&lineUsers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	var answers []models.Answer
	if err := fc.DB.Where("account_id = ?", account.ID).Order("id").Find(&answers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch answers", err)
	}

	// newest answer per (user, question) wins
	cellValues := make(map[uint]map[uint]string)
	for _, a := range answers {
		if cellValues[a.LineUserID] == nil {
			cellValues[a.LineUserID] = make(map[uint]string)
		}
		value := a.Text
		if a.OptionID != nil {
			if o, ok := data.OptionsByID[*a.OptionID]; ok {
				value = o.Text
			}
		}
		cellValues[a.LineUserID][a.QuestionID] = value
	}

	type matrixRow struct {
		User  models.LineUser `json:"user"`
		Cells []string        `json:"cells"`
	}

	rows := make([]matrixRow, 0, len(lineUsers))
	for _, u := range lineUsers {
		row := matrixRow{User: u, Cells: make([]string, len(chain))}
		for i, qid := range chain {
			row.Cells[i] = cellValues[u.ID][qid]
		}
		rows = append(rows, row)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"columns": columns,
		"rows":    rows,
	}))
}

type previewClientMessage struct {
	QuestionID uint   `json:"question_id"`
	OptionID   uint   `json:"option_id"`
	Text       string `json:"text"`
}

type previewServerMessage struct {
	Type     string           `json:"type"` // question, end, error
	Question *models.Question `json:"question,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// PreviewFlow is a websocket conversation simulator: it walks the flow with
// the same evaluator the bot runtime uses so operators can test routing
// before going live. The client sends one answer per question; the server
// replies with the next question or an end marker.
func (fc *FlowController) PreviewFlow(conn *websocket.Conn) {
	defer conn.Close()

	user, ok := conn.Locals("user").(*models.User)
	if !ok {
		_ = conn.WriteJSON(previewServerMessage{Type: "error", Message: "Authorization required"})
		return
	}

	var account models.Account
	if err := fc.DB.Where("id = ? AND user_id = ?", conn.Params("accountId"), user.ID).
		First(&account).Error; err != nil {
		_ = conn.WriteJSON(previewServerMessage{Type: "error", Message: "Account not found"})
		return
	}

	data, err := fc.loadFlowData(&account)
	if err != nil {
		_ = conn.WriteJSON(previewServerMessage{Type: "error", Message: "Failed to load flow"})
		return
	}
	g := flow.NewGraph(data.Questions, data.Routes)

	currentID := utils.ParseUint(conn.Query("start"))
	if currentID == 0 {
		starts := g.StartQuestionIDs()
		if len(starts) == 0 {
			_ = conn.WriteJSON(previewServerMessage{Type: "error", Message: "Flow has no start question"})
			return
		}
		currentID = starts[0]
	}

	answers := flow.Answers{}
	for {
		question, ok := g.Question(currentID)
		if !ok {
			_ = conn.WriteJSON(previewServerMessage{Type: "end"})
			return
		}
		if err := conn.WriteJSON(previewServerMessage{Type: "question", Question: &question}); err != nil {
			return
		}

		var msg previewClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		answers[question.ID] = flow.Answer{OptionID: msg.OptionID, Text: msg.Text}

		next, ok := flow.ResolveNext(g.Routes(question.ID), data.conditionsFor(question.ID), answers)
		if !ok {
			_ = conn.WriteJSON(previewServerMessage{Type: "end"})
			return
		}
		currentID = next
	}
}

// loadMasterFlowData reads the master tables and reshapes them into the
// account-scoped structs so the flow package serves both variants
func loadMasterFlowData(db *gorm.DB) (*flowData, error) {
	var masterQuestions []models.MasterQuestion
	if err := db.Preload("Options").Order("id").Find(&masterQuestions).Error; err != nil {
		return nil, err
	}
	var masterRoutes []models.MasterQuestionRoute
	if err := db.Order("id").Find(&masterRoutes).Error; err != nil {
		return nil, err
	}
	var masterConditions []models.MasterCondition
	if err := db.Order("id").Find(&masterConditions).Error; err != nil {
		return nil, err
	}

	d := &flowData{}
	for _, mq := range masterQuestions {
		q := models.Question{Model: mq.Model, Title: mq.Title, Text: mq.Text, Type: mq.Type}
		for _, mo := range mq.Options {
			q.Options = append(q.Options, models.Option{
				Model:      mo.Model,
				QuestionID: mo.MasterQuestionID,
				Text:       mo.Text,
				ImageURL:   mo.ImageURL,
			})
		}
		d.Questions = append(d.Questions, q)
	}
	for _, mr := range masterRoutes {
		d.Routes = append(d.Routes, models.QuestionRoute{
			Model:          mr.Model,
			FromQuestionID: mr.FromQuestionID,
			NextQuestionID: mr.NextQuestionID,
			ConditionGroup: mr.ConditionGroup,
		})
	}
	for _, mc := range masterConditions {
		d.Conditions = append(d.Conditions, models.Condition{
			Model:              mc.Model,
			QuestionID:         mc.QuestionID,
			RequiredQuestionID: mc.RequiredQuestionID,
			RequiredOptionID:   mc.RequiredOptionID,
			Operator:           mc.Operator,
			Value:              mc.Value,
			ConditionGroup:     mc.ConditionGroup,
		})
	}
	d.index()
	return d, nil
}

package controller

import (
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"askline/config"
	"askline/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

// seedMasterFlow builds a small template: Q1 (button, two options) routes to
// Q2 when option A is picked and to Q3 otherwise, plus a trigger, a template
// and a scheduled message. Master rows get explicit ids well above anything
// the account tables' autoincrement will hand out, so an accidental reuse of
// a master id in a copied reference cannot hide behind equal numbers.
func seedMasterFlow(t *testing.T, db *gorm.DB) (q1, q2, q3 models.MasterQuestion, optA, optB models.MasterOption) {
	t.Helper()

	q1 = models.MasterQuestion{Model: gorm.Model{ID: 101}, Title: "事故の種類", Type: models.QuestionTypeButton}
	q2 = models.MasterQuestion{Model: gorm.Model{ID: 102}, Title: "怪我の状況", Type: models.QuestionTypeFreeText}
	q3 = models.MasterQuestion{Model: gorm.Model{ID: 103}, Title: "修理の状況", Type: models.QuestionTypeFreeText}
	require.NoError(t, db.Create(&q1).Error)
	require.NoError(t, db.Create(&q2).Error)
	require.NoError(t, db.Create(&q3).Error)

	optA = models.MasterOption{Model: gorm.Model{ID: 201}, MasterQuestionID: q1.ID, Text: "追突事故", ImageURL: "https://cdn.example.com/a.png"}
	optB = models.MasterOption{Model: gorm.Model{ID: 202}, MasterQuestionID: q1.ID, Text: "物損事故"}
	require.NoError(t, db.Create(&optA).Error)
	require.NoError(t, db.Create(&optB).Error)

	conditional := models.MasterQuestionRoute{FromQuestionID: q1.ID, NextQuestionID: q2.ID, ConditionGroup: "g1"}
	fallback := models.MasterQuestionRoute{FromQuestionID: q1.ID, NextQuestionID: q3.ID}
	require.NoError(t, db.Create(&conditional).Error)
	require.NoError(t, db.Create(&fallback).Error)

	require.NoError(t, db.Create(&models.MasterCondition{
		QuestionID:         q1.ID,
		RequiredQuestionID: q1.ID,
		RequiredOptionID:   &optA.ID,
		Operator:           models.OperatorEqual,
		ConditionGroup:     "g1",
	}).Error)

	require.NoError(t, db.Create(&models.MasterStartTrigger{Keyword: "相談", QuestionID: q1.ID}).Error)
	require.NoError(t, db.Create(&models.MasterEmailTemplate{
		Name:    "完了通知",
		Subject: "{name} 様の回答",
		Body:    "{answers}",
	}).Error)
	require.NoError(t, db.Create(&models.MasterScheduledMessage{
		Title: "フォローアップ", Body: "その後いかがですか", DelayDays: 3, SendTime: "10:00", IsActive: true,
	}).Error)
	return
}

func TestCopyMasterDataRemapsReferences(t *testing.T) {
	db := openTestDB(t)
	q1, q2, q3, optA, _ := seedMasterFlow(t, db)

	account := models.Account{UserID: 1, Name: "tenant", UseMaster: true}
	require.NoError(t, db.Create(&account).Error)

	var counts copyCounts
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		counts, err = copyMasterData(tx, account.ID)
		return err
	}))

	assert.Equal(t, 3, counts.Questions)
	assert.Equal(t, 2, counts.Options)
	assert.Equal(t, 2, counts.Routes)
	assert.Equal(t, 1, counts.Conditions)
	assert.Equal(t, 1, counts.StartTriggers)
	assert.Equal(t, 1, counts.EmailTemplates)
	assert.Equal(t, 1, counts.ScheduledMessages)

	// every copied row carries the account id and fresh ids
	var questions []models.Question
	require.NoError(t, db.Where("account_id = ?", account.ID).Order("id").Find(&questions).Error)
	require.Len(t, questions, 3)
	byTitle := map[string]models.Question{}
	for _, q := range questions {
		assert.NotContains(t, []uint{q1.ID, q2.ID, q3.ID}, q.ID, "copied question must not reuse a master id")
		byTitle[q.Title] = q
	}

	var routes []models.QuestionRoute
	require.NoError(t, db.Where("account_id = ?", account.ID).Order("id").Find(&routes).Error)
	require.Len(t, routes, 2)
	assert.Equal(t, byTitle["事故の種類"].ID, routes[0].FromQuestionID)
	assert.Equal(t, byTitle["怪我の状況"].ID, routes[0].NextQuestionID)
	assert.Equal(t, "g1", routes[0].ConditionGroup)
	assert.Equal(t, byTitle["修理の状況"].ID, routes[1].NextQuestionID)
	assert.Empty(t, routes[1].ConditionGroup)

	var cond models.Condition
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&cond).Error)
	assert.Equal(t, byTitle["事故の種類"].ID, cond.RequiredQuestionID)
	require.NotNil(t, cond.RequiredOptionID)
	assert.NotEqual(t, optA.ID, *cond.RequiredOptionID, "condition must point at the copied option")

	var copiedOption models.Option
	require.NoError(t, db.First(&copiedOption, *cond.RequiredOptionID).Error)
	assert.Equal(t, "追突事故", copiedOption.Text)
	assert.Equal(t, byTitle["事故の種類"].ID, copiedOption.QuestionID)

	var trigger models.StartTrigger
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&trigger).Error)
	assert.Equal(t, "相談", trigger.Keyword)
	assert.Equal(t, byTitle["事故の種類"].ID, trigger.QuestionID)
}

func TestCopyMasterDataAppliesImageOverrides(t *testing.T) {
	db := openTestDB(t)
	_, _, _, optA, optB := seedMasterFlow(t, db)

	account := models.Account{UserID: 1, Name: "tenant", UseMaster: true}
	require.NoError(t, db.Create(&account).Error)
	require.NoError(t, db.Create(&models.OptionImage{
		AccountID:      account.ID,
		MasterOptionID: optA.ID,
		ImageURL:       "https://cdn.example.com/custom.png",
	}).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := copyMasterData(tx, account.ID)
		return err
	}))

	var overridden, untouched models.Option
	require.NoError(t, db.Where("text = ?", optA.Text).First(&overridden).Error)
	require.NoError(t, db.Where("text = ?", optB.Text).First(&untouched).Error)
	assert.Equal(t, "https://cdn.example.com/custom.png", overridden.ImageURL)
	assert.Empty(t, untouched.ImageURL)
}

// newDuplicateApp wires the handler behind a stub auth middleware so the
// endpoint-level behavior (idempotence, flag flip) can be exercised.
func newDuplicateApp(db *gorm.DB, user *models.User) *fiber.App {
	dc := NewDuplicateController(db, log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Post("/accounts/:accountId/duplicate", func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	}, dc.DuplicateMaster)
	return app
}

func TestDuplicateMasterIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedMasterFlow(t, db)

	user := models.User{Email: "op@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	account := models.Account{UserID: user.ID, Name: "tenant", UseMaster: true}
	require.NoError(t, db.Create(&account).Error)

	app := newDuplicateApp(db, &user)
	url := fmt.Sprintf("/accounts/%d/duplicate", account.ID)

	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var afterFirst models.Account
	require.NoError(t, db.First(&afterFirst, account.ID).Error)
	assert.False(t, afterFirst.UseMaster)

	var firstCount int64
	require.NoError(t, db.Model(&models.Question{}).Where("account_id = ?", account.ID).Count(&firstCount).Error)
	assert.Equal(t, int64(3), firstCount)

	// second call must not duplicate rows again
	resp, err = app.Test(httptest.NewRequest("POST", url, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var secondCount int64
	require.NoError(t, db.Model(&models.Question{}).Where("account_id = ?", account.ID).Count(&secondCount).Error)
	assert.Equal(t, firstCount, secondCount)
}

func TestDuplicateMasterRejectsForeignAccount(t *testing.T) {
	db := openTestDB(t)
	seedMasterFlow(t, db)

	owner := models.User{Email: "owner@example.com", PasswordHash: "x"}
	intruder := models.User{Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&intruder).Error)
	account := models.Account{UserID: owner.ID, Name: "tenant", UseMaster: true}
	require.NoError(t, db.Create(&account).Error)

	app := newDuplicateApp(db, &intruder)
	resp, err := app.Test(httptest.NewRequest("POST", fmt.Sprintf("/accounts/%d/duplicate", account.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var still models.Account
	require.NoError(t, db.First(&still, account.ID).Error)
	assert.True(t, still.UseMaster)
}

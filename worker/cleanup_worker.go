package worker

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"askline/config"
	"askline/models"
)

// CleanupWorker sweeps rows left dangling by question deletions that raced
// a concurrent edit. Deletions are guarded at the API layer, so a sweep
// normally finds nothing; it exists to keep the flow tables consistent when
// a guard check and a delete interleave.
type CleanupWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
	cron   *cron.Cron
}

func NewCleanupWorker(db *gorm.DB, logger *log.Logger) *CleanupWorker {
	return &CleanupWorker{
		DB:     db,
		Logger: logger,
		cron:   cron.New(),
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	schedule := config.AppConfig.CleanupSchedule
	if _, err := cw.cron.AddFunc(schedule, cw.sweep); err != nil {
		cw.Logger.Printf("Invalid cleanup schedule %q: %v", schedule, err)
		return
	}
	cw.cron.Start()
	cw.Logger.Printf("Cleanup worker started with schedule %q", schedule)

	<-ctx.Done()
	cw.Logger.Println("Cleanup worker shutting down...")
	stopCtx := cw.cron.Stop()
	<-stopCtx.Done()
}

func (cw *CleanupWorker) sweep() {
	total := int64(0)
	total += cw.deleteOrphans(&models.Option{},
		"question_id NOT IN (?)", cw.liveQuestionIDs())
	total += cw.deleteOrphans(&models.QuestionRoute{},
		"from_question_id NOT IN (?) OR next_question_id NOT IN (?)",
		cw.liveQuestionIDs(), cw.liveQuestionIDs())
	total += cw.deleteOrphans(&models.Condition{},
		"question_id NOT IN (?) OR required_question_id NOT IN (?)",
		cw.liveQuestionIDs(), cw.liveQuestionIDs())
	total += cw.deleteOrphans(&models.StartTrigger{},
		"question_id NOT IN (?)", cw.liveQuestionIDs())
	total += cw.deleteOrphans(&models.QuestionAction{},
		"question_id NOT IN (?)", cw.liveQuestionIDs())

	if total > 0 {
		cw.Logger.Printf("Cleanup sweep removed %d orphaned rows", total)
	}
}

// liveQuestionIDs is a subquery over non-deleted questions, rebuilt per use
// so each delete sees current data
func (cw *CleanupWorker) liveQuestionIDs() *gorm.DB {
	return cw.DB.Model(&models.Question{}).Select("id")
}

func (cw *CleanupWorker) deleteOrphans(model interface{}, query string, args ...interface{}) int64 {
	result := cw.DB.Where(query, args...).Delete(model)
	if result.Error != nil {
		cw.Logger.Printf("Cleanup sweep failed for %T: %v", model, result.Error)
		return 0
	}
	return result.RowsAffected
}

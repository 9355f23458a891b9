package repository

import (
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/util"

	"gorm.io/gorm"
)

type QuizRunRepository struct {
	DB *gorm.DB
}

func NewQuizRunRepository(db *gorm.DB) *QuizRunRepository {
	return &QuizRunRepository{DB: db}
}

func (r *QuizRunRepository) Create(run *model.QuizRun) error {
	return r.DB.Create(run).Error
}

func (r *QuizRunRepository) Save(run *model.QuizRun) error {
	return r.DB.Save(run).Error
}

func (r *QuizRunRepository) FindByID(id string) (*model.QuizRun, error) {
	var run model.QuizRun
	if err := r.DB.First(&run, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrRunNotFound)
	}
	return &run, nil
}

func (r *QuizRunRepository) CreateItems(items []model.QuizRunItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.Create(&items).Error
}

// GetItems returns a run's items ordered by position.
func (r *QuizRunRepository) GetItems(runID string) ([]model.QuizRunItem, error) {
	var items []model.QuizRunItem
	err := r.DB.Where("run_id = ?", runID).Order("position ASC").Find(&items).Error
	return items, err
}

func (r *QuizRunRepository) SaveItem(item *model.QuizRunItem) error {
	return r.DB.Save(item).Error
}

// DeleteByUser removes all of a user's runs and their items. Used only by
// the destructive progress reset.
func (r *QuizRunRepository) DeleteByUser(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var runIDs []string
		if err := tx.Model(&model.QuizRun{}).Where("user_id = ?", userID).Pluck("id", &runIDs).Error; err != nil {
			return err
		}
		if len(runIDs) == 0 {
			return nil
		}
		if err := tx.Unscoped().Where("run_id IN ?", runIDs).Delete(&model.QuizRunItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("run_id IN ?", runIDs).Delete(&model.QuizAttempt{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.QuizRun{}).Error
	})
}

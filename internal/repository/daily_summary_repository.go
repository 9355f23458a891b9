package repository

import (
	"errors"

	"mathdojo_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailySummaryRepository struct {
	DB *gorm.DB
}

func NewDailySummaryRepository(db *gorm.DB) *DailySummaryRepository {
	return &DailySummaryRepository{DB: db}
}

// Increment applies atomic deltas to the (user, date) row, creating it on
// first touch. Never read-modify-write in application memory.
func (r *DailySummaryRepository) Increment(userID uint, date string, correctDelta int64, activeMsDelta int64) error {
	row := model.DailySummary{
		UserID:        userID,
		Date:          date,
		CorrectCount:  correctDelta,
		TotalActiveMs: activeMsDelta,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"correct_count":   gorm.Expr("correct_count + ?", correctDelta),
			"total_active_ms": gorm.Expr("total_active_ms + ?", activeMsDelta),
		}),
	}).Create(&row).Error
}

func (r *DailySummaryRepository) GetByUserAndDate(userID uint, date string) (*model.DailySummary, error) {
	var summary model.DailySummary
	err := r.DB.Where("user_id = ? AND date = ?", userID, date).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.DailySummary{UserID: userID, Date: date}, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *DailySummaryRepository) DeleteByUser(userID uint) error {
	return r.DB.Unscoped().Where("user_id = ?", userID).Delete(&model.DailySummary{}).Error
}

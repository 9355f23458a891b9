package repository

import (
	"errors"

	"mathdojo_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FactRepository struct {
	DB *gorm.DB
}

func NewFactRepository(db *gorm.DB) *FactRepository {
	return &FactRepository{DB: db}
}

// FindBySlot returns the canonical pair for a slot, or (nil, nil) when none
// is seeded. Absence is a valid terminal answer, not an error.
func (r *FactRepository) FindBySlot(op model.Operation, level int, belt model.Belt) (*model.FactPair, error) {
	var fact model.FactPair
	err := r.DB.Where("operation = ? AND level = ? AND belt = ?", op, level, belt).First(&fact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fact, nil
}

func (r *FactRepository) FindAll() ([]model.FactPair, error) {
	var facts []model.FactPair
	err := r.DB.Find(&facts).Error
	return facts, err
}

// Upsert replaces a slot's pair; used only by seeding.
func (r *FactRepository) Upsert(fact *model.FactPair) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operation"}, {Name: "level"}, {Name: "belt"}},
		DoUpdates: clause.AssignmentColumns([]string{"a", "b"}),
	}).Create(fact).Error
}

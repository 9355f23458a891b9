package repository

import (
	"errors"

	"mathdojo_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) GetLevel(userID uint, level int) (*model.LevelProgress, error) {
	var p model.LevelProgress
	err := r.DB.Where("user_id = ? AND level = ?", userID, level).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) GetOrCreateLevel(userID uint, level int) (*model.LevelProgress, error) {
	p, err := r.GetLevel(userID, level)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	p = &model.LevelProgress{UserID: userID, Level: level}
	if err := r.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepository) SaveLevel(p *model.LevelProgress) error {
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) GetBelt(userID uint, level int, belt model.Belt) (*model.BeltProgress, error) {
	var b model.BeltProgress
	err := r.DB.Where("user_id = ? AND level = ? AND belt = ?", userID, level, belt).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ProgressRepository) GetOrCreateBelt(userID uint, level int, belt model.Belt) (*model.BeltProgress, error) {
	b, err := r.GetBelt(userID, level, belt)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b = &model.BeltProgress{UserID: userID, Level: level, Belt: belt}
	if err := r.DB.Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *ProgressRepository) SaveBelt(b *model.BeltProgress) error {
	return r.DB.Save(b).Error
}

func (r *ProgressRepository) ListLevels(userID uint) ([]model.LevelProgress, error) {
	var levels []model.LevelProgress
	err := r.DB.Where("user_id = ?", userID).Order("level ASC").Find(&levels).Error
	return levels, err
}

func (r *ProgressRepository) ListBelts(userID uint) ([]model.BeltProgress, error) {
	var belts []model.BeltProgress
	err := r.DB.Where("user_id = ?", userID).Find(&belts).Error
	return belts, err
}

// DeleteAllForUser wipes every progress row. Destructive, no soft delete.
func (r *ProgressRepository) DeleteAllForUser(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.BeltProgress{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&model.LevelProgress{}).Error
	})
}

// InitDefault seeds the day-one state: level 1 unlocked with its white belt
// unlocked. Called at user creation and after a reset.
func (r *ProgressRepository) InitDefault(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		level := &model.LevelProgress{UserID: userID, Level: 1, Unlocked: true}
		if err := tx.Create(level).Error; err != nil {
			return err
		}
		belt := &model.BeltProgress{UserID: userID, Level: 1, Belt: model.BeltWhite, Unlocked: true}
		return tx.Create(belt).Error
	})
}

package repository

import (
	"time"

	"mathdojo_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindKidByName(parentID uint, name string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("parent_id = ? AND name = ? AND role = ?", parentID, name, model.Kid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListKids(parentID uint) ([]model.User, error) {
	var kids []model.User
	err := r.DB.Where("parent_id = ? AND role = ?", parentID, model.Kid).Find(&kids).Error
	return kids, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// IncrementAllTimeCorrect bumps the user's lifetime correct-answer counter
// atomically in the store.
func (r *UserRepository) IncrementAllTimeCorrect(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("all_time_correct", gorm.Expr("all_time_correct + 1")).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login", time.Now()).Error
}

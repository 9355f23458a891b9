package repository

import (
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrQuestionNotFound)
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []string) (map[string]model.Question, error) {
	var questions []model.Question
	if err := r.DB.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

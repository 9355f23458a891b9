package model

type AttemptReason string

const (
	AttemptAnswer     AttemptReason = "answer"
	AttemptInactivity AttemptReason = "inactivity"
)

// QuizAttempt is the append-only audit log: one row per answer submission,
// inactivity trigger and practice attempt. Never updated.
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel

	RunID      string        `gorm:"index;type:varchar(36)" json:"runId"`
	QuestionID string        `gorm:"index;type:varchar(36)" json:"questionId"`
	UserAnswer int           `json:"userAnswer"`
	IsCorrect  bool          `json:"isCorrect"`
	ResponseMs int64         `json:"responseMs"`
	Reason     AttemptReason `gorm:"size:20" json:"reason"`
	Practice   bool          `gorm:"default:false" json:"practice"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

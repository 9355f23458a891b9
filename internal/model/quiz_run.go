package model

import "time"

type RunStatus string

const (
	RunPrepared   RunStatus = "prepared"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// QuizRun is one quiz attempt: prepared -> in_progress -> completed/failed.
// The embedded timer fields follow the active-time policy: StartedAt is nil
// while paused, TotalActiveMs accumulates only running intervals, and
// RemainingMs counts down against LimitMs for black-belt degrees.
// swagger:model QuizRun
type QuizRun struct {
	UUIDBase

	UserID       uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	Operation    Operation `gorm:"size:20" json:"operation"`
	Level        int       `json:"level"`
	Belt         Belt      `gorm:"size:20" json:"belt"`
	Status       RunStatus `gorm:"size:20;index" json:"status"`
	Reason       string    `gorm:"size:20" json:"reason,omitempty"`
	CurrentIndex int       `json:"currentIndex"`
	CorrectCount int       `json:"correctCount"`
	WrongCount   int       `json:"wrongCount"`
	LimitMs      int64     `json:"limitMs"`
	RemainingMs  int64     `json:"remainingMs"`
	// TotalActiveMs is everything the timer measured; FlushedActiveMs is the
	// share of it already written to the daily summaries.
	TotalActiveMs   int64      `json:"totalActiveMs"`
	FlushedActiveMs int64      `json:"-"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
}

func (QuizRun) TableName() string {
	return "quiz_runs"
}

// NewQuizRun creates a prepared run with its timer configured from the belt:
// black degrees get the per-degree hard limit, colored belts are untimed.
func NewQuizRun(userID uint, op Operation, level int, belt Belt) *QuizRun {
	limit := TimeLimit(belt).Milliseconds()
	return &QuizRun{
		UserID:      userID,
		Operation:   op,
		Level:       level,
		Belt:        belt,
		Status:      RunPrepared,
		LimitMs:     limit,
		RemainingMs: limit,
	}
}

func (r *QuizRun) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

func (r *QuizRun) Timed() bool {
	return r.LimitMs > 0
}

// StartTimer begins an active interval.
func (r *QuizRun) StartTimer(now time.Time) {
	if r.Timed() && r.RemainingMs == 0 && r.TotalActiveMs == 0 {
		r.RemainingMs = r.LimitMs
	}
	r.StartedAt = &now
}

// PauseTimer closes the current active interval, returning its length in
// milliseconds (0 if the timer was not running). Remaining time is floored
// at zero.
func (r *QuizRun) PauseTimer(now time.Time) int64 {
	if r.StartedAt == nil {
		return 0
	}
	delta := now.Sub(*r.StartedAt).Milliseconds()
	if delta < 0 {
		delta = 0
	}
	r.TotalActiveMs += delta
	if r.Timed() {
		r.RemainingMs -= delta
		if r.RemainingMs < 0 {
			r.RemainingMs = 0
		}
	}
	r.StartedAt = nil
	return delta
}

// ResumeTimer reopens an active interval after an interruption.
func (r *QuizRun) ResumeTimer(now time.Time) {
	r.StartedAt = &now
}

// TimeUp reports whether active time exceeded the limit. Landing exactly on
// the limit is still in time; untimed (colored) runs never time out.
func (r *QuizRun) TimeUp() bool {
	return r.Timed() && r.TotalActiveMs > r.LimitMs
}

// QuizRunItem is one slot of a run's fixed question sequence. Only the item
// at the run's CurrentIndex is answerable; wrong answers or inactivity flag
// it for practice without advancing.
// swagger:model QuizRunItem
type QuizRunItem struct {
	BaseModel

	RunID            string `gorm:"index;type:varchar(36)" json:"runId"`
	Position         int    `json:"position"`
	QuestionID       string `gorm:"type:varchar(36)" json:"questionId"`
	PracticeRequired bool   `gorm:"default:false" json:"practiceRequired"`
	Practiced        bool   `gorm:"default:false" json:"practiced"`
}

func (QuizRunItem) TableName() string {
	return "quiz_run_items"
}

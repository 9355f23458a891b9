package model

// DailySummary aggregates one user's activity for one Pacific-timezone
// calendar day. Counters are only ever incremented atomically in the store.
// swagger:model DailySummary
type DailySummary struct {
	BaseModel

	UserID        uint   `gorm:"index:idx_daily_summary,unique;type:bigint unsigned" json:"userId"`
	Date          string `gorm:"size:10;index:idx_daily_summary,unique" json:"date"`
	CorrectCount  int64  `gorm:"default:0" json:"correctCount"`
	TotalActiveMs int64  `gorm:"default:0" json:"totalActiveMs"`
}

func (DailySummary) TableName() string {
	return "daily_summaries"
}

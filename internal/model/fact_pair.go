package model

// FactPair is the single seeded canonical (a,b) fact for a
// (operation, level, belt) slot. Seeded once, read-only afterwards.
// swagger:model FactPair
type FactPair struct {
	BaseModel

	Operation Operation `gorm:"size:20;index:idx_fact_slot,unique" json:"operation"`
	Level     int       `gorm:"index:idx_fact_slot,unique" json:"level"`
	Belt      Belt      `gorm:"size:20;index:idx_fact_slot,unique" json:"belt"`
	A         int       `json:"a"`
	B         int       `json:"b"`
}

func (FactPair) TableName() string {
	return "fact_pairs"
}

func (f FactPair) Key() string {
	return FactKey(f.Operation, f.Level, f.Belt)
}

// Identical reports whether both operands are the same digit, which halves
// the practice set and the new-question pool.
func (f FactPair) Identical() bool {
	return f.A == f.B
}

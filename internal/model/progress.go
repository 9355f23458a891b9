package model

import (
	"encoding/json"
	"sort"
)

// LevelProgress is the per-level row of a user's progression state. Black
// degree completion lives here; colored belts get their own BeltProgress
// rows. Level numbers are typed throughout, never string tags.
// swagger:model LevelProgress
type LevelProgress struct {
	BaseModel

	UserID           uint   `gorm:"index:idx_level_progress,unique;type:bigint unsigned" json:"userId"`
	Level            int    `gorm:"index:idx_level_progress,unique" json:"level"`
	Unlocked         bool   `gorm:"default:false" json:"unlocked"`
	Completed        bool   `gorm:"default:false" json:"completed"`
	BlackUnlocked    bool   `gorm:"default:false" json:"blackUnlocked"`
	CompletedDegrees string `gorm:"type:json" json:"-"`
}

func (LevelProgress) TableName() string {
	return "level_progress"
}

// Degrees returns the completed black degrees in ascending order.
func (p *LevelProgress) Degrees() []int {
	var out []int
	if p.CompletedDegrees != "" {
		_ = json.Unmarshal([]byte(p.CompletedDegrees), &out)
	}
	sort.Ints(out)
	return out
}

// AddDegree marks degree n complete. Returns false if it was already set.
func (p *LevelProgress) AddDegree(n int) bool {
	degrees := p.Degrees()
	for _, d := range degrees {
		if d == n {
			return false
		}
	}
	degrees = append(degrees, n)
	sort.Ints(degrees)
	b, _ := json.Marshal(degrees)
	p.CompletedDegrees = string(b)
	return true
}

// HasDegree reports whether degree n is complete.
func (p *LevelProgress) HasDegree(n int) bool {
	for _, d := range p.Degrees() {
		if d == n {
			return true
		}
	}
	return false
}

// BeltProgress is the unlock/completion state of one colored belt for a user.
// swagger:model BeltProgress
type BeltProgress struct {
	BaseModel

	UserID    uint `gorm:"index:idx_belt_progress,unique;type:bigint unsigned" json:"userId"`
	Level     int  `gorm:"index:idx_belt_progress,unique" json:"level"`
	Belt      Belt `gorm:"size:20;index:idx_belt_progress,unique" json:"belt"`
	Unlocked  bool `gorm:"default:false" json:"unlocked"`
	Completed bool `gorm:"default:false" json:"completed"`
}

func (BeltProgress) TableName() string {
	return "belt_progress"
}

// BeltState is the API view of a single colored belt's progress.
type BeltState struct {
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
}

// BlackState is the API view of a level's black-degree progress.
type BlackState struct {
	Unlocked         bool  `json:"unlocked"`
	CompletedDegrees []int `json:"completedDegrees"`
}

// LevelView assembles one level's progress for the API.
type LevelView struct {
	Level     int                `json:"level"`
	Unlocked  bool               `json:"unlocked"`
	Completed bool               `json:"completed"`
	Belts     map[Belt]BeltState `json:"belts"`
	Black     BlackState         `json:"black"`
}

// ProgressMap is the full progress payload keyed by level number.
type ProgressMap map[int]LevelView

package model

import (
	"encoding/json"
	"time"
)

// Question is a catalog row. Forward is true when the rating scale increases with agreement.
type Question struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Category  string    `gorm:"not null;type:VARCHAR(100);index:questions_category_idx" json:"category"`
	Prompt    string    `gorm:"not null;type:TEXT" json:"prompt"`
	Forward   bool      `gorm:"not null" json:"forward"`
	Weight    float64   `gorm:"not null" json:"weight"`
	CreatedAt time.Time `json:"-"`
}

type QuestionList []Question

func (q Question) String() string {
	val, _ := json.Marshal(q)
	return string(val)
}

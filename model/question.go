package model

import (
	"encoding/json"
	"time"
)

// Question is a SAT practice question. Choices is a JSON array of option
// strings; CorrectChoice holds the expected answer value.
type Question struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	Section       string          `json:"section" gorm:"index;not null"` // math, reading_writing
	Difficulty    string          `json:"difficulty" gorm:"index"`       // easy, medium, hard
	Prompt        string          `json:"prompt" gorm:"type:text;not null"`
	Choices       json.RawMessage `json:"choices" gorm:"type:text"`
	CorrectChoice string          `json:"correct_choice" gorm:"not null"`
	Explanation   string          `json:"explanation" gorm:"type:text"`
	IsActive      bool            `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

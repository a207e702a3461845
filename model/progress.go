package model

import (
	"encoding/json"
	"time"
)

// LocalProgress is the device-side durable snapshot, a single row per
// identity holding the serialized progress record. The store exposes only
// get/set/clear over it.
type LocalProgress struct {
	Identity  string          `json:"identity" gorm:"primaryKey"`
	Snapshot  json.RawMessage `json:"snapshot" gorm:"type:text;not null"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null"`
}

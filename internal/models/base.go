package models

import "time"

// BaseModel carries the surrogate key and bookkeeping timestamps shared by
// mutable entities. CreatedAt is set once on insert; UpdatedAt is refreshed
// by GORM on every save.
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

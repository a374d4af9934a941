package model

import "time"

// 1セッションにつきカートは1つ
type Cart struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionKey string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_key"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

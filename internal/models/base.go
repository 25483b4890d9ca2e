package models

import "time"

// Base — ключ и отметки времени, общие для users и products
type Base struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Persisted — запись уже есть в базе
func (b Base) Persisted() bool { return b.ID != 0 }

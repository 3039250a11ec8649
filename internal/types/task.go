package types

import (
	"time"

	"github.com/google/uuid"
)

// Task is the persistence row for a task. Domain invariants live in
// internal/domain; this struct only describes storage.
type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Status    string    `gorm:"column:status;not null;index" json:"status"`
	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

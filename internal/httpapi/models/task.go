package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a service engagement between one pet owner and one sitter.
// Tasks are created by the booking subsystem; this module only reads
// them and sets ReviewID once the owner submits a review.
type Task struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	PetOwnerUserID string `gorm:"type:uuid;not null;index" json:"pet_owner_user_id"`
	SitterUserID   string `gorm:"type:uuid;not null;index" json:"sitter_user_id"`
	Status         string `gorm:"default:'completed';not null" json:"status"`
	ReviewID       *int64 `json:"review_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	PetOwner *User   `gorm:"foreignKey:PetOwnerUserID" json:"pet_owner,omitempty"`
	Sitter   *Sitter `gorm:"foreignKey:SitterUserID" json:"sitter,omitempty"`
}

func (task *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	return
}

func (Task) TableName() string {
	return "tasks"
}

package models

import "time"

// Review holds both halves of a task's review: the pet owner's
// rating/content and the sitter's. At most one row exists per task
// (TaskID is unique). Either half may be NULL until that party
// submits; AVG over the rating columns then naturally skips rows the
// party has not rated yet.
type Review struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID string `gorm:"type:uuid;uniqueIndex;not null" json:"task_id"`

	PetOwnerUserID  string  `gorm:"type:uuid;not null;index" json:"pet_owner_user_id"`
	PetOwnerRating  *int    `gorm:"check:pet_owner_rating >= 1 AND pet_owner_rating <= 5" json:"pet_owner_rating,omitempty"`
	PetOwnerContent *string `json:"pet_owner_content,omitempty"`

	SitterUserID        string     `gorm:"type:uuid;not null;index" json:"sitter_user_id"`
	SitterRating        *int       `gorm:"check:sitter_rating >= 1 AND sitter_rating <= 5" json:"sitter_rating,omitempty"`
	SitterContent       *string    `json:"sitter_content,omitempty"`
	SitterUserCreatedAt *time.Time `json:"sitter_user_created_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Task *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

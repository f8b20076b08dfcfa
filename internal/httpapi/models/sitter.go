package models

import "time"

// Sitter is the sitter-side profile for a user account. Review
// statistics here are recomputed when a pet owner reviews a task
// this sitter worked.
type Sitter struct {
	UserID        string  `gorm:"primaryKey;type:uuid" json:"user_id"`
	Introduction  *string `json:"introduction,omitempty"`
	AverageRating float64 `gorm:"type:decimal(3,2);default:0" json:"average_rating"`
	TotalReviews  int64   `gorm:"default:0" json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}

func (Sitter) TableName() string {
	return "sitters"
}

package dto

import (
	"time"

	"sitterhub/internal/httpapi/models"
)

// ReviewRequest is the shared body for creating and amending a review
type ReviewRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Content string `json:"content" binding:"required"`
}

// ReviewResponse mirrors the stored review row, both halves included
type ReviewResponse struct {
	ID                  int64      `json:"id"`
	TaskID              string     `json:"task_id"`
	PetOwnerUserID      string     `json:"pet_owner_user_id"`
	PetOwnerRating      *int       `json:"pet_owner_rating"`
	PetOwnerContent     *string    `json:"pet_owner_content"`
	SitterUserID        string     `json:"sitter_user_id"`
	SitterRating        *int       `json:"sitter_rating"`
	SitterContent       *string    `json:"sitter_content"`
	SitterUserCreatedAt *time.Time `json:"sitter_user_created_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:                  review.ID,
		TaskID:              review.TaskID,
		PetOwnerUserID:      review.PetOwnerUserID,
		PetOwnerRating:      review.PetOwnerRating,
		PetOwnerContent:     review.PetOwnerContent,
		SitterUserID:        review.SitterUserID,
		SitterRating:        review.SitterRating,
		SitterContent:       review.SitterContent,
		SitterUserCreatedAt: review.SitterUserCreatedAt,
		CreatedAt:           review.CreatedAt,
		UpdatedAt:           review.UpdatedAt,
	}
}

// FromModelsToReviewResponses converts a slice of Review models
func FromModelsToReviewResponses(reviews []models.Review) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *FromModelToReviewResponse(&reviews[i]))
	}
	return responses
}

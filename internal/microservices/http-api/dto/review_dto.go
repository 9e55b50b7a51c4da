package dto

// CreateReviewRequest for reviewing a book once
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

type ReviewCreatedResponse struct {
	ReviewID   int64   `json:"review_id"`
	BookID     int64   `json:"book_id"`
	Rating     int     `json:"rating"`
	BookRating float64 `json:"book_rating"`
}

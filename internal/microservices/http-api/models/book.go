package models

import "time"

// Book is catalog data. Rating and TotalRentals are derived and only
// written by the review and rental flows.
type Book struct {
	ID                int64     `json:"book_id" gorm:"primaryKey;autoIncrement"`
	Title             string    `json:"title" gorm:"size:255;not null"`
	Author            string    `json:"author" gorm:"size:255;not null"`
	Category          string    `json:"category" gorm:"size:100;not null;index"`
	Description       *string   `json:"description,omitempty" gorm:"type:text"`
	CoverImage        *string   `json:"cover_image,omitempty" gorm:"size:500"`
	FullPrice         float64   `json:"full_price" gorm:"type:decimal(10,2);not null"`
	RentalPrice7Days  float64   `json:"rental_price_7days" gorm:"column:rental_price_7days;type:decimal(10,2);not null"`
	RentalPrice14Days float64   `json:"rental_price_14days" gorm:"column:rental_price_14days;type:decimal(10,2);not null"`
	RentalPrice30Days float64   `json:"rental_price_30days" gorm:"column:rental_price_30days;type:decimal(10,2);not null"`
	Rating            float64   `json:"rating" gorm:"type:decimal(3,2);not null;default:0"`
	TotalRentals      int64     `json:"total_rentals" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}

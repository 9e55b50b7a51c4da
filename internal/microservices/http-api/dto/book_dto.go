package dto

import (
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"
)

// BookListQuery mirrors GET /books query params; the service clamps page and limit.
type BookListQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type BookListResponse struct {
	Books      []models.Book `json:"books"`
	Pagination Pagination    `json:"pagination"`
}

type BookDetailResponse struct {
	Book    *models.Book              `json:"book"`
	Reviews []repository.ReviewDetail `json:"reviews"`
}

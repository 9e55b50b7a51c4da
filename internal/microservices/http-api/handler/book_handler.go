package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"booklease/internal/microservices/http-api/dto"
	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	books   service.BookService
	reviews service.ReviewService
	logger  *slog.Logger
}

func NewBookHandler(books service.BookService, reviews service.ReviewService, logger *slog.Logger) *BookHandler {
	RegisterValidators()
	return &BookHandler{books: books, reviews: reviews, logger: logger}
}

// RegisterRoutes mounts the public catalog and the authenticated review route.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, guards RouteGuards) {
	books := rg.Group("/books")
	books.GET("", h.List)
	books.GET("/categories", h.Categories)
	books.GET("/popular", h.Popular)
	books.GET("/:book_id", h.Get)
	books.POST("/:book_id/reviews", guards.Auth, guards.WriteLimit, h.AddReview)
}

// List books with category, search, sort and pagination
func (h *BookHandler) List(c *gin.Context) {
	var q dto.BookListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.logger, invalidInput("invalid query parameters"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.books.ListBooks(ctx, q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", resp)
}

func (h *BookHandler) Get(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		respondError(c, h.logger, service.ErrBookNotFound)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.books.GetBook(ctx, bookID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", resp)
}

func (h *BookHandler) Categories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cats, err := h.books.Categories(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", cats)
}

func (h *BookHandler) Popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.books.Popular(ctx, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", books)
}

// AddReview records the user's single review of a book
func (h *BookHandler) AddReview(c *gin.Context) {
	userID, ok := currentUser(c, h.logger)
	if !ok {
		return
	}

	bookID, ok := pathID(c, "book_id")
	if !ok {
		respondError(c, h.logger, service.ErrBookNotFound)
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.reviews.AddReview(ctx, userID, bookID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Review added successfully", resp)
}

package client

// http_client.go = talks to the BookLease API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defines the HTTP client structure and methods
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Request/response shapes, kept local so the CLI does not import server packages.

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Book struct {
	ID                int64   `json:"book_id"`
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	Category          string  `json:"category"`
	RentalPrice7Days  float64 `json:"rental_price_7days"`
	RentalPrice14Days float64 `json:"rental_price_14days"`
	RentalPrice30Days float64 `json:"rental_price_30days"`
	Rating            float64 `json:"rating"`
	TotalRentals      int64   `json:"total_rentals"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type BookList struct {
	Books      []Book     `json:"books"`
	Pagination Pagination `json:"pagination"`
}

type BookQuery struct {
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type RentalCreated struct {
	RentalID    int64     `json:"rental_id"`
	BookTitle   string    `json:"book_title"`
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`
	RentalDays  int       `json:"rental_days"`
	PricePaid   float64   `json:"price_paid"`
}

type RentalExtended struct {
	NewEndDate  time.Time `json:"new_end_date"`
	ExtendDays  int       `json:"extend_days"`
	ExtendPrice float64   `json:"extend_price"`
}

type Rental struct {
	RentalID   int64     `json:"rental_id"`
	BookID     int64     `json:"book_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	RentalEnd  time.Time `json:"rental_end"`
	RentalDays int       `json:"rental_days"`
	PricePaid  float64   `json:"price_paid"`
	Status     string    `json:"status"`
	Expired    bool      `json:"expired"`
}

type RentalHistory struct {
	Rentals    []Rental   `json:"rentals"`
	Pagination Pagination `json:"pagination"`
}

type RentalStats struct {
	TotalRentals  int64   `json:"total_rentals"`
	TotalSpent    float64 `json:"total_spent"`
	ActiveRentals int64   `json:"active_rentals"`
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends one request and decodes the envelope's data into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *HTTPClient) Register(ctx context.Context, request *RegisterRequest) (*User, error) {
	var result User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*User, error) {
	var result User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListBooks(ctx context.Context, q BookQuery) (*BookList, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/api/books"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result BookList
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Popular(ctx context.Context, limit int) ([]Book, error) {
	var result []Book
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/books/popular?limit=%d", limit), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) Rent(ctx context.Context, bookID int64, days int) (*RentalCreated, error) {
	body := map[string]any{"book_id": bookID, "rental_days": days}
	var result RentalCreated
	if err := c.do(ctx, http.MethodPost, "/api/rentals", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Extend(ctx context.Context, rentalID int64, days int) (*RentalExtended, error) {
	body := map[string]any{"extend_days": days}
	var result RentalExtended
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/rentals/%d/extend", rentalID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ActiveRentals(ctx context.Context) ([]Rental, error) {
	var result []Rental
	if err := c.do(ctx, http.MethodGet, "/api/rentals/active", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) RentalHistory(ctx context.Context, page, limit int) (*RentalHistory, error) {
	var result RentalHistory
	path := fmt.Sprintf("/api/rentals/history?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*RentalStats, error) {
	var result RentalStats
	if err := c.do(ctx, http.MethodGet, "/api/rentals/stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Review(ctx context.Context, bookID int64, rating int, comment string) error {
	body := map[string]any{"rating": rating}
	if comment != "" {
		body["comment"] = comment
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/books/%d/reviews", bookID), body, nil)
}

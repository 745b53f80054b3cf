package dto

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the only token type the API accepts.
const TokenTypeAccess = "access"

// AuthClaims defines the custom claims for JWT. The subject carries the user id as well.
type AuthClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SubjectUserID falls back to the subject when user_id is absent.
func (c AuthClaims) SubjectUserID() (int64, bool) {
	if c.UserID > 0 {
		return c.UserID, true
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	return id, err == nil && id > 0
}

// TokenResponse represents the response containing an access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationInfo defines pagination details for responses.
type PaginationInfo struct {
	TotalItems  int `json:"total_items"`
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// NewPaginationInfo derives the page count from the total.
func NewPaginationInfo(total, limit, page int) PaginationInfo {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PaginationInfo{TotalItems: total, Limit: limit, CurrentPage: page, TotalPages: pages}
}

// UserProgressResponse is the per-user bookkeeping row.
type UserProgressResponse struct {
	UserID             int64   `json:"user_id"`
	Points             int     `json:"points"`
	UsageSeconds       float64 `json:"usage_seconds"`
	TotalQuestions     int     `json:"total_questions"`
	PercentageExpected float64 `json:"percentage_expected"`
}

package models

import (
	"time"

	dbmodels "github.com/mytaskflow/backend/database/models"
	"github.com/mytaskflow/backend/services"
)

// APIResponse is the standard envelope for every /api endpoint except
// /api/reset, which keeps its own legacy shape.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(code, message string, details map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}

// ResetResponse is the legacy reset body: {success, message} on 200,
// {success, error} on 500. Clients match on this exact shape.
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DashboardStats is the combined overview payload.
type DashboardStats struct {
	Stats            *dbmodels.UserStats  `json:"stats"`
	ActiveHabits     int                  `json:"active_habits"`
	MonthCompletions int                  `json:"month_completions"`
	MonthlyProgress  int                  `json:"monthly_progress"`
	Daily            []services.DailyStat `json:"daily"`
}

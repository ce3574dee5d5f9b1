package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
)

var (
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate_limited")
)

const (
	errorTypeInvalidRequest = "invalid_request_error"
	errorTypeConflict       = "conflict_error"
	errorTypeRateLimit      = "rate_limit_error"
	errorTypeNotFound       = "not_found_error"
	errorTypeUnauthorized   = "authentication_error"
	errorTypeInternal       = "api_error"
)

type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Code }

func newValidationError(field, code, message string) error {
	return &ValidationError{Field: field, Code: code, Message: message}
}

func invalidRequestError() error {
	return newValidationError("", "invalid_request", "invalid request body")
}

type errorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// AbortWithError maps engine errors onto HTTP status codes and a stable body.
func AbortWithError(c *gin.Context, err error) {
	status, body := classifyError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: body})
}

func classifyError(err error) (int, errorBody) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorBody{
			Type:    errorTypeInvalidRequest,
			Code:    validation.Code,
			Message: validation.Message,
			Field:   validation.Field,
		}
	case contributiondomain.IsConflict(err):
		return http.StatusConflict, errorBody{Type: errorTypeConflict, Code: err.Error()}
	case rewardsdomain.IsRateLimited(err), errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorBody{Type: errorTypeRateLimit, Code: err.Error()}
	case errors.Is(err, contributiondomain.ErrContributionNotFound),
		errors.Is(err, rewardsdomain.ErrRewardsNotFound),
		errors.Is(err, leaderboarddomain.ErrNotRanked),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorBody{Type: errorTypeNotFound, Code: err.Error()}
	case contributiondomain.IsValidation(err),
		rewardsdomain.IsValidation(err),
		errors.Is(err, leaderboarddomain.ErrInvalidPeriod),
		errors.Is(err, leaderboarddomain.ErrInvalidUser),
		errors.Is(err, reliabilitydomain.ErrInvalidCharger):
		return http.StatusBadRequest, errorBody{Type: errorTypeInvalidRequest, Code: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Type: errorTypeUnauthorized, Code: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Type: errorTypeInternal, Code: "timeout"}
	default:
		return http.StatusInternalServerError, errorBody{Type: errorTypeInternal, Code: "internal_error"}
	}
}

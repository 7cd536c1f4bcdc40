package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/logger"
)

// ErrorResponse is the JSON envelope for every error reply.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
}

// ErrorHandler recovers panics and renders errors attached to the gin context
// in the standard envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				requestID := GetRequestID(c)

				logger.Error().
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", recovered).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
					WithRequestID(requestID).
					WithDetail("panic", fmt.Sprintf("%v", recovered))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Success:   false,
					Error:     appErr,
					Timestamp: time.Now(),
					RequestID: requestID,
				})
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			Abort(c, c.Errors.Last().Err)
		}
	}
}

// Abort renders err with the status mapped from its error code and stops the
// handler chain.
func Abort(c *gin.Context, err error) {
	requestID := GetRequestID(c)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}
	appErr.WithRequestID(requestID)

	status := statusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error().
			Str("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Err(err).
			Msg("Request failed")
	} else {
		logger.Warn().
			Str("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Str("code", string(appErr.Code)).
			Msg(appErr.Message)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeInsufficientTokens:
		return http.StatusPaymentRequired
	case errors.ErrCodeFraudRejected, errors.ErrCodeUserBlocked:
		return http.StatusForbidden
	case errors.ErrCodeNotFound, errors.ErrCodeUserNotFound,
		errors.ErrCodeFriendNotFound, errors.ErrCodeChallengeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict, errors.ErrCodeAlreadyClaimed:
		return http.StatusConflict
	case errors.ErrCodeChallengePending, errors.ErrCodeDailyLimitReached:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case errors.ErrCodeExternalAPI:
		return http.StatusBadGateway
	case errors.ErrCodeAdmissionDenied:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

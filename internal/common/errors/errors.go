package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"

	// Account errors
	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserBlocked   ErrorCode = "USER_BLOCKED"
	ErrCodeFraudRejected ErrorCode = "FRAUD_REJECTED"

	// Reward errors
	ErrCodeFriendNotFound     ErrorCode = "FRIEND_NOT_FOUND"
	ErrCodeChallengeNotFound  ErrorCode = "CHALLENGE_NOT_FOUND"
	ErrCodeChallengePending   ErrorCode = "CHALLENGE_NOT_COMPLETED"
	ErrCodeAlreadyClaimed     ErrorCode = "ALREADY_CLAIMED"
	ErrCodeInsufficientTokens ErrorCode = "INSUFFICIENT_TOKENS"
	ErrCodeAdmissionDenied    ErrorCode = "ADMISSION_DENIED"
	ErrCodeDailyLimitReached  ErrorCode = "DAILY_LIMIT_REACHED"

	// Infrastructure errors
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeExternalAPI   ErrorCode = "EXTERNAL_API_ERROR"
)

// AppError is the typed error carried through every service layer.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is any of the "not found" classes.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeFriendNotFound ||
		e.Code == ErrCodeChallengeNotFound
}

// IsTerminal reports whether retrying the same request can never succeed.
func (e *AppError) IsTerminal() bool {
	return e.Code == ErrCodeFraudRejected || e.Code == ErrCodeAlreadyClaimed
}

// WithDetail attaches structured context to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf is Wrap with message formatting.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Constructors for the errors used throughout the reward flows.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUserNotFoundError(userID string) *AppError {
	return New(ErrCodeUserNotFound, "User not found").WithDetail("user_id", userID)
}

func NewFriendNotFoundError(userID, friendID string) *AppError {
	return New(ErrCodeFriendNotFound, "Friend not found").
		WithDetail("user_id", userID).
		WithDetail("friend_id", friendID)
}

func NewChallengeNotFoundError(challengeID string) *AppError {
	return New(ErrCodeChallengeNotFound, "Challenge not found").
		WithDetail("challenge_id", challengeID)
}

// NewFraudRejection carries a user-displayable rejection reason. The reason
// string is surfaced verbatim.
func NewFraudRejection(check, reason string) *AppError {
	return New(ErrCodeFraudRejected, reason).WithDetail("check", check)
}

// NewAdmissionDenied signals the provider balance is below the admission
// threshold (or could not be confirmed). The action must not proceed.
func NewAdmissionDenied() *AppError {
	return New(ErrCodeAdmissionDenied, "The system is under too much load. Please try again later.")
}

func NewAlreadyClaimedError(what string) *AppError {
	return New(ErrCodeAlreadyClaimed, "You've already claimed this reward!").WithDetail("reward", what)
}

func NewInsufficientTokensError(balance, price float64) *AppError {
	return New(ErrCodeInsufficientTokens, "You don't have enough tokens").
		WithDetail("balance", balance).
		WithDetail("price", price)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewExternalAPIError(service string, err error) *AppError {
	return Wrap(err, ErrCodeExternalAPI, fmt.Sprintf("%s request failed", service)).
		WithDetail("service", service)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason))
}

func NewRateLimitError(action string) *AppError {
	return New(ErrCodeTooManyRequests,
		fmt.Sprintf("Too many %s attempts. Please wait and try again.", action)).
		WithDetail("action", action)
}

func NewDailyLimitError(action string) *AppError {
	return New(ErrCodeDailyLimitReached, "Chill, that's enough for today. Try again tomorrow.").
		WithDetail("action", action)
}

// AsAppError extracts an AppError when the chain contains one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}

package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet (WAL) ----

func ErrInsufficientFunds() *AppError {
	return New("WAL_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Invalid amount", http.StatusBadRequest)
}

// ---- Game (GAME) ----

func ErrGameNotFound() *AppError {
	return New("GAME_001", "Game not found", http.StatusNotFound)
}

func ErrActiveGameExists() *AppError {
	return New("GAME_002", "An active game already exists for this user", http.StatusConflict)
}

// ErrIllegalAction reports an action the current hand shape does not
// allow (e.g., splitting unequal ranks, doubling a three-card hand).
func ErrIllegalAction(message string) *AppError {
	return New("GAME_003", message, http.StatusBadRequest)
}

func ErrGameOver() *AppError {
	return New("GAME_004", "Game is already resolved", http.StatusConflict)
}

// ErrConcurrencyConflict reports a lost race on the same game; the
// caller should retry.
func ErrConcurrencyConflict() *AppError {
	return New("GAME_005", "Concurrent game action in progress, retry", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrUserNotFound() *AppError {
	return New("SYS_002", "User not found", http.StatusNotFound)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_003", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

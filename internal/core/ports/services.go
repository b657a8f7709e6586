package ports

import (
	"context"
	"time"

	"casino-platform/internal/core/domain"

	"github.com/google/uuid"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// --- Service Ports (Business Logic) ---

// GameResult is the view returned by every engine operation: the game
// after the action plus the caller's resulting wallet balance.
type GameResult struct {
	Game    *domain.Game
	Balance int64
}

// GameService is the blackjack engine. Every operation is one atomic
// unit: legality check, wallet movement, hand/deck mutation and status
// transition commit together or not at all. Operations on the same
// user's game are mutually exclusive.
type GameService interface {
	InitializeGame(ctx context.Context, userID uuid.UUID, bet int64) (*GameResult, error)
	GetGame(ctx context.Context, gameID, userID uuid.UUID) (*GameResult, error)
	Hit(ctx context.Context, gameID, userID uuid.UUID) (*GameResult, error)
	Stand(ctx context.Context, gameID, userID uuid.UUID) (*GameResult, error)
	DoubleDown(ctx context.Context, gameID, userID uuid.UUID) (*GameResult, error)
	Split(ctx context.Context, gameID, userID uuid.UUID) (*GameResult, error)
}

// WalletService covers out-of-game wallet management.
type WalletService interface {
	// AddFunds credits amount (> 0) and returns the new balance.
	AddFunds(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	// CashOut debits amount (> 0); fails with InsufficientFunds when the
	// balance cannot cover it. Returns the new balance.
	CashOut(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

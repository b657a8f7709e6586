package ports

import (
	"context"

	"casino-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users and their
// wallet balance. Methods accepting pgx.Tx run inside transaction
// blocks with pessimistic locking.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, balance int64) error
}

// GameRepository defines persistence operations for blackjack games.
type GameRepository interface {
	Create(ctx context.Context, tx pgx.Tx, game *domain.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	// GetActiveByUserID returns the user's ACTIVE game, or nil.
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Game, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Game, error)
	// UpdateActive persists the game only while the stored row is still
	// ACTIVE. Returns false when the guard fails, which means another
	// request settled or mutated the game first.
	UpdateActive(ctx context.Context, tx pgx.Tx, game *domain.Game) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WalletLedger is the only path through which a balance may change.
// Both calls run inside the caller's transaction so game-state writes
// and money movement commit or roll back together.
type WalletLedger interface {
	// Debit subtracts amount from the user's balance and returns the new
	// balance. Fails with InsufficientFunds when amount exceeds the
	// balance; non-positive amounts are rejected as invalid. No state
	// changes on failure.
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error)
	// Credit adds amount (>= 0) to the user's balance and returns the
	// new balance. A zero credit reads the balance without changing it.
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error)
}

// GameLocker serializes engine operations on a single user's active
// game. Acquisition waits with bounded retries and surfaces a
// conflict error instead of blocking indefinitely.
type GameLocker interface {
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}

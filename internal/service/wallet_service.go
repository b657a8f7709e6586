package service

import (
	"context"
	"fmt"

	"casino-platform/internal/core/ports"
	"casino-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WalletLedgerImpl implements ports.WalletLedger. It is the single
// write path to a user's balance: every debit and credit goes through
// a locked read followed by an UPDATE inside the caller's transaction.
type WalletLedgerImpl struct {
	userRepo ports.UserRepository
}

// NewWalletLedger creates a new WalletLedgerImpl.
func NewWalletLedger(userRepo ports.UserRepository) *WalletLedgerImpl {
	return &WalletLedgerImpl{userRepo: userRepo}
}

// Debit subtracts amount from the user's balance within tx.
func (l *WalletLedgerImpl) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	user, err := l.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return 0, apperror.ErrUserNotFound()
	}

	if user.Balance < amount {
		return 0, apperror.ErrInsufficientFunds()
	}

	newBalance := user.Balance - amount
	if err := l.userRepo.UpdateBalance(ctx, tx, userID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// Credit adds amount to the user's balance within tx. A zero amount
// performs a locked read without writing, so callers can observe the
// balance under the same serialization as a real credit.
func (l *WalletLedgerImpl) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error) {
	if amount < 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	user, err := l.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return 0, apperror.ErrUserNotFound()
	}

	if amount == 0 {
		return user.Balance, nil
	}

	newBalance := user.Balance + amount
	if err := l.userRepo.UpdateBalance(ctx, tx, userID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// WalletServiceImpl implements ports.WalletService for out-of-game
// wallet management. Each operation owns its own transaction.
type WalletServiceImpl struct {
	userRepo   ports.UserRepository
	ledger     ports.WalletLedger
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	userRepo ports.UserRepository,
	ledger ports.WalletLedger,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		userRepo:   userRepo,
		ledger:     ledger,
		transactor: transactor,
		log:        log,
	}
}

// AddFunds credits the user's wallet.
func (s *WalletServiceImpl) AddFunds(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	newBalance, err := s.ledger.Credit(ctx, dbTx, userID, amount)
	if err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("funds added")

	return newBalance, nil
}

// CashOut debits the user's wallet.
func (s *WalletServiceImpl) CashOut(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	newBalance, err := s.ledger.Debit(ctx, dbTx, userID, amount)
	if err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("cash out processed")

	return newBalance, nil
}

// GetBalance returns the user's current balance.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return 0, apperror.ErrUserNotFound()
	}
	return user.Balance, nil
}

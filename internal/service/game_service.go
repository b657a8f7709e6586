package service

import (
	"context"
	"fmt"
	"time"

	"casino-platform/internal/core/domain"
	"casino-platform/internal/core/ports"
	"casino-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// GameServiceImpl implements ports.GameService: the blackjack engine.
//
// Every mutating operation follows the same shape: acquire the
// per-user lock, open a transaction, lock the game row, validate the
// action, move money through the ledger, mutate hands/deck, persist
// through the ACTIVE-status guard and commit. A failure at any step
// rolls the whole unit back, so a debited stake can never outlive a
// failed card deal.
type GameServiceImpl struct {
	gameRepo   ports.GameRepository
	userRepo   ports.UserRepository
	ledger     ports.WalletLedger
	transactor ports.DBTransactor
	locker     ports.GameLocker
	rng        domain.RandSource
	minBet     int64
	maxBet     int64
	log        zerolog.Logger
}

// NewGameService creates a new GameServiceImpl.
func NewGameService(
	gameRepo ports.GameRepository,
	userRepo ports.UserRepository,
	ledger ports.WalletLedger,
	transactor ports.DBTransactor,
	locker ports.GameLocker,
	rng domain.RandSource,
	minBet, maxBet int64,
	log zerolog.Logger,
) *GameServiceImpl {
	return &GameServiceImpl{
		gameRepo:   gameRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		transactor: transactor,
		locker:     locker,
		rng:        rng,
		minBet:     minBet,
		maxBet:     maxBet,
		log:        log,
	}
}

// InitializeGame reserves the bet, deals the opening cards and, on a
// natural blackjack, settles immediately within the same transaction.
func (s *GameServiceImpl) InitializeGame(ctx context.Context, userID uuid.UUID, bet int64) (*ports.GameResult, error) {
	if bet <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if bet < s.minBet || bet > s.maxBet {
		return nil, apperror.Validation(fmt.Sprintf("bet must be between %d and %d", s.minBet, s.maxBet))
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.gameRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check active game: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrActiveGameExists()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Stake reservation: the bet leaves the wallet before the game
	// becomes visible.
	balance, err := s.ledger.Debit(ctx, dbTx, userID, bet)
	if err != nil {
		return nil, err
	}

	deck := domain.NewDeck()
	domain.ShuffleDeck(deck, s.rng)
	game := domain.NewGame(userID, bet, deck)

	// A natural resolves before any player action.
	if game.Hands[0].IsBlackjack() {
		game.ResolveOutcomes()
		game.Settle(time.Now())
		if payout := game.Payout(); payout > 0 {
			balance, err = s.ledger.Credit(ctx, dbTx, userID, payout)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := s.gameRepo.Create(ctx, dbTx, game); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create game: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("game_id", game.ID.String()).
		Str("user_id", userID.String()).
		Int64("bet", bet).
		Str("status", string(game.Status)).
		Msg("game initialized")

	return &ports.GameResult{Game: game, Balance: balance}, nil
}

// GetGame returns the game view and current balance without locking.
func (s *GameServiceImpl) GetGame(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get game: %w", err))
	}
	if game == nil || game.UserID != userID {
		return nil, apperror.ErrGameNotFound()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound()
	}

	return &ports.GameResult{Game: game, Balance: user.Balance}, nil
}

// Hit deals one card to the hand awaiting action.
func (s *GameServiceImpl) Hit(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error) {
	return s.act(ctx, gameID, userID, "hit", func(dbTx pgx.Tx, game *domain.Game) (int64, error) {
		hand := game.ActiveHand()
		if hand == nil {
			return 0, apperror.ErrIllegalAction("no hand awaiting action")
		}
		if hand.Value() >= 21 {
			return 0, apperror.ErrIllegalAction("hand cannot take another card")
		}

		hand.AddCard(game.DealCard())
		if hand.IsBust() {
			game.AdvanceHand()
		}

		if game.PlayerTurnDone() {
			return s.finishGame(ctx, dbTx, game)
		}
		return s.ledger.Credit(ctx, dbTx, userID, 0)
	})
}

// Stand finishes the current hand; once every hand has acted the
// dealer plays and the game settles.
func (s *GameServiceImpl) Stand(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error) {
	return s.act(ctx, gameID, userID, "stand", func(dbTx pgx.Tx, game *domain.Game) (int64, error) {
		if game.ActiveHand() == nil {
			return 0, apperror.ErrIllegalAction("no hand awaiting action")
		}

		game.AdvanceHand()
		if game.PlayerTurnDone() {
			return s.finishGame(ctx, dbTx, game)
		}
		return s.ledger.Credit(ctx, dbTx, userID, 0)
	})
}

// DoubleDown re-debits the hand's stake, deals exactly one card and
// closes the hand. The debit and the card deal commit together.
func (s *GameServiceImpl) DoubleDown(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error) {
	return s.act(ctx, gameID, userID, "double down", func(dbTx pgx.Tx, game *domain.Game) (int64, error) {
		hand := game.ActiveHand()
		if hand == nil || !hand.CanDouble() {
			return 0, apperror.ErrIllegalAction("double down requires a two-card hand")
		}

		balance, err := s.ledger.Debit(ctx, dbTx, userID, hand.Stake)
		if err != nil {
			return 0, err
		}

		hand.Stake *= 2
		hand.Doubled = true
		hand.AddCard(game.DealCard())
		game.AdvanceHand()

		if game.PlayerTurnDone() {
			return s.finishGame(ctx, dbTx, game)
		}
		return balance, nil
	})
}

// Split divides a pair into two staked hands and deals one card to
// each. Re-splitting a split hand is not allowed.
func (s *GameServiceImpl) Split(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error) {
	return s.act(ctx, gameID, userID, "split", func(dbTx pgx.Tx, game *domain.Game) (int64, error) {
		hand := game.ActiveHand()
		if hand == nil || !hand.CanSplit() {
			return 0, apperror.ErrIllegalAction("split requires two cards of equal rank")
		}

		balance, err := s.ledger.Debit(ctx, dbTx, userID, hand.Stake)
		if err != nil {
			return 0, err
		}

		first, second := hand.Split()
		first.AddCard(game.DealCard())
		second.AddCard(game.DealCard())
		game.Hands[game.CurrentHand] = first
		game.Hands = append(game.Hands, second)

		return balance, nil
	})
}

// act runs one player action as an atomic unit under the per-user lock.
func (s *GameServiceImpl) act(
	ctx context.Context,
	gameID, userID uuid.UUID,
	name string,
	fn func(dbTx pgx.Tx, game *domain.Game) (int64, error),
) (*ports.GameResult, error) {
	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	game, err := s.gameRepo.GetByIDForUpdate(ctx, dbTx, gameID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock game: %w", err))
	}
	if game == nil || game.UserID != userID {
		return nil, apperror.ErrGameNotFound()
	}
	if game.IsOver() {
		return nil, apperror.ErrGameOver()
	}

	balance, err := fn(dbTx, game)
	if err != nil {
		return nil, err
	}

	ok, err := s.gameRepo.UpdateActive(ctx, dbTx, game)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist game: %w", err))
	}
	if !ok {
		// Another request settled the game between our read and write.
		return nil, apperror.ErrConcurrencyConflict()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("game_id", game.ID.String()).
		Str("user_id", userID.String()).
		Str("action", name).
		Str("status", string(game.Status)).
		Msg("game action processed")

	return &ports.GameResult{Game: game, Balance: balance}, nil
}

// finishGame runs dealer resolution and settlement inside the caller's
// transaction, crediting the payout exactly once. Returns the balance
// after settlement.
func (s *GameServiceImpl) finishGame(ctx context.Context, dbTx pgx.Tx, game *domain.Game) (int64, error) {
	game.PlayDealer()
	game.ResolveOutcomes()
	game.Settle(time.Now())
	return s.ledger.Credit(ctx, dbTx, game.UserID, game.Payout())
}

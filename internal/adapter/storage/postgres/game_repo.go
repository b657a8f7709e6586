package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casino-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GameRepo implements ports.GameRepository. Hands, dealer hand and the
// remaining deck are stored as JSONB columns; the status column guards
// every update so a settled game can never be written again.
type GameRepo struct {
	pool Pool
}

// NewGameRepo creates a new GameRepo.
func NewGameRepo(pool Pool) *GameRepo {
	return &GameRepo{pool: pool}
}

// Create inserts a game within a transaction.
func (r *GameRepo) Create(ctx context.Context, tx pgx.Tx, g *domain.Game) error {
	hands, dealer, deck, err := marshalGameState(g)
	if err != nil {
		return err
	}

	query := `INSERT INTO games (id, user_id, bet, status, current_hand, hands, dealer, deck, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, query,
		g.ID, g.UserID, g.Bet, string(g.Status), g.CurrentHand,
		hands, dealer, deck, g.CreatedAt, g.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GetByID fetches a game by UUID (without locking).
func (r *GameRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	query := gameSelect + ` WHERE id = $1`
	return r.scanGame(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByUserID fetches the user's ACTIVE game, or nil.
func (r *GameRepo) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Game, error) {
	query := gameSelect + ` WHERE user_id = $1 AND status = 'ACTIVE'`
	return r.scanGame(r.pool.QueryRow(ctx, query, userID))
}

// GetByIDForUpdate fetches a game by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *GameRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Game, error) {
	query := gameSelect + ` WHERE id = $1 FOR UPDATE`
	return r.scanGame(tx.QueryRow(ctx, query, id))
}

// UpdateActive persists the game's mutable state. The WHERE clause
// only matches a row still in ACTIVE status, which makes the terminal
// transition, and therefore settlement, exactly-once.
func (r *GameRepo) UpdateActive(ctx context.Context, tx pgx.Tx, g *domain.Game) (bool, error) {
	hands, dealer, deck, err := marshalGameState(g)
	if err != nil {
		return false, err
	}

	query := `UPDATE games
		SET status = $1, current_hand = $2, hands = $3, dealer = $4, deck = $5, resolved_at = $6
		WHERE id = $7 AND status = 'ACTIVE'`

	tag, err := tx.Exec(ctx, query,
		string(g.Status), g.CurrentHand, hands, dealer, deck, g.ResolvedAt, g.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const gameSelect = `SELECT id, user_id, bet, status, current_hand, hands, dealer, deck, created_at, resolved_at
	FROM games`

func (r *GameRepo) scanGame(row pgx.Row) (*domain.Game, error) {
	g := &domain.Game{}
	var status string
	var hands, dealer, deck []byte

	err := row.Scan(
		&g.ID, &g.UserID, &g.Bet, &status, &g.CurrentHand,
		&hands, &dealer, &deck, &g.CreatedAt, &g.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	g.Status = domain.GameStatus(status)
	if err := json.Unmarshal(hands, &g.Hands); err != nil {
		return nil, fmt.Errorf("decode hands: %w", err)
	}
	if err := json.Unmarshal(dealer, &g.Dealer); err != nil {
		return nil, fmt.Errorf("decode dealer hand: %w", err)
	}
	if err := json.Unmarshal(deck, &g.Deck); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	return g, nil
}

func marshalGameState(g *domain.Game) (hands, dealer, deck []byte, err error) {
	if hands, err = json.Marshal(g.Hands); err != nil {
		return nil, nil, nil, fmt.Errorf("encode hands: %w", err)
	}
	if dealer, err = json.Marshal(g.Dealer); err != nil {
		return nil, nil, nil, fmt.Errorf("encode dealer hand: %w", err)
	}
	if deck, err = json.Marshal(g.Deck); err != nil {
		return nil, nil, nil, fmt.Errorf("encode deck: %w", err)
	}
	return hands, dealer, deck, nil
}

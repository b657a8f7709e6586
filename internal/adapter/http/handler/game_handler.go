package handler

import (
	"context"
	"time"

	"casino-platform/internal/adapter/http/dto"
	"casino-platform/internal/core/domain"
	"casino-platform/internal/core/ports"
	"casino-platform/pkg/apperror"
	"casino-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GameHandler handles blackjack game endpoints.
type GameHandler struct {
	gameSvc ports.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(gameSvc ports.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// Create handles POST /api/v1/games.
func (h *GameHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.gameSvc.InitializeGame(c.Request.Context(), userID, req.Bet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toGameResponse(result))
}

// Get handles GET /api/v1/games/:id.
func (h *GameHandler) Get(c *gin.Context) {
	h.withGame(c, h.gameSvc.GetGame)
}

// Hit handles POST /api/v1/games/:id/hit.
func (h *GameHandler) Hit(c *gin.Context) {
	h.withGame(c, h.gameSvc.Hit)
}

// Stand handles POST /api/v1/games/:id/stand.
func (h *GameHandler) Stand(c *gin.Context) {
	h.withGame(c, h.gameSvc.Stand)
}

// DoubleDown handles POST /api/v1/games/:id/double.
func (h *GameHandler) DoubleDown(c *gin.Context) {
	h.withGame(c, h.gameSvc.DoubleDown)
}

// Split handles POST /api/v1/games/:id/split.
func (h *GameHandler) Split(c *gin.Context) {
	h.withGame(c, h.gameSvc.Split)
}

func (h *GameHandler) withGame(
	c *gin.Context,
	op func(ctx context.Context, gameID, userID uuid.UUID) (*ports.GameResult, error),
) {
	userID, ok := authedUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid game id"))
		return
	}

	result, err := op(c.Request.Context(), gameID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toGameResponse(result))
}

// toGameResponse converts an engine result to the API view. While the
// game is active the dealer's hole card stays hidden and the dealer
// value reflects the upcard only.
func toGameResponse(result *ports.GameResult) dto.GameResponse {
	game := result.Game

	hands := make([]dto.HandView, 0, len(game.Hands))
	for _, h := range game.Hands {
		hands = append(hands, dto.HandView{
			Cards:   toCardViews(h.Cards),
			Value:   h.Value(),
			Stake:   h.Stake,
			Doubled: h.Doubled,
			Outcome: string(h.Outcome),
		})
	}

	dealer := dto.DealerView{}
	if game.IsOver() {
		dealer.Cards = toCardViews(game.Dealer.Cards)
		dealer.Value = game.Dealer.Value()
	} else if len(game.Dealer.Cards) > 0 {
		upcard := game.Dealer.Cards[0]
		dealer.Cards = toCardViews([]domain.Card{upcard})
		dealer.Value = upcard.BlackjackValue()
		dealer.HoleHidden = true
	}

	resp := dto.GameResponse{
		ID:          game.ID.String(),
		Status:      string(game.Status),
		Bet:         game.Bet,
		CurrentHand: game.CurrentHand,
		Hands:       hands,
		Dealer:      dealer,
		Balance:     result.Balance,
		CreatedAt:   game.CreatedAt.Format(time.RFC3339),
	}
	if game.ResolvedAt != nil {
		resolved := game.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolved
	}
	return resp
}

func toCardViews(cards []domain.Card) []dto.CardView {
	views := make([]dto.CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, dto.CardView{
			Suit: c.Suit.String(),
			Rank: c.Rank.String(),
		})
	}
	return views
}

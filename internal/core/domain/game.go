package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a blackjack game.
type GameStatus string

const (
	GameStatusActive     GameStatus = "ACTIVE"
	GameStatusPlayerBust GameStatus = "PLAYER_BUST"
	GameStatusDealerBust GameStatus = "DEALER_BUST"
	GameStatusPlayerWin  GameStatus = "PLAYER_WIN"
	GameStatusDealerWin  GameStatus = "DEALER_WIN"
	GameStatusPush       GameStatus = "PUSH"
	GameStatusBlackjack  GameStatus = "BLACKJACK"
)

// DealerStandValue is the total at which the dealer stops drawing.
// The dealer stands on all 17s.
const DealerStandValue = 17

// Game is one blackjack round for a single user. At most one game per
// user may be ACTIVE; the opening bet is already debited from the
// wallet by the time the game exists.
type Game struct {
	ID     uuid.UUID  `json:"id"`
	UserID uuid.UUID  `json:"user_id"`
	Bet    int64      `json:"bet"` // opening bet, smallest currency unit
	Status GameStatus `json:"status"`

	Hands  []*Hand `json:"hands"`  // player hands; >1 only after a split
	Dealer *Hand   `json:"dealer"` // dealer hand
	Deck   []Card  `json:"deck"`   // remaining undealt cards, consumed front-to-back

	// CurrentHand is the index of the player hand awaiting action.
	// Hands before it are finished; once it passes the last hand the
	// dealer resolves.
	CurrentHand int `json:"current_hand"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewGame creates an ACTIVE game and deals the opening two cards each
// to player and dealer, alternating, from the front of deck.
func NewGame(userID uuid.UUID, bet int64, deck []Card) *Game {
	g := &Game{
		ID:        uuid.New(),
		UserID:    userID,
		Bet:       bet,
		Status:    GameStatusActive,
		Hands:     []*Hand{NewHand(bet)},
		Dealer:    NewHand(0),
		Deck:      deck,
		CreatedAt: time.Now().UTC(),
	}
	g.Hands[0].AddCard(g.DealCard())
	g.Dealer.AddCard(g.DealCard())
	g.Hands[0].AddCard(g.DealCard())
	g.Dealer.AddCard(g.DealCard())
	return g
}

// DealCard removes and returns the top card of the remaining deck.
// A single round cannot exhaust a 52-card deck (two hands plus the
// dealer draw at most 32 cards before everything busts).
func (g *Game) DealCard() Card {
	card := g.Deck[0]
	g.Deck = g.Deck[1:]
	return card
}

// IsOver reports whether the game has reached a terminal status.
func (g *Game) IsOver() bool {
	return g.Status != GameStatusActive
}

// ActiveHand returns the player hand awaiting action, or nil when the
// player turn is finished.
func (g *Game) ActiveHand() *Hand {
	if g.CurrentHand >= len(g.Hands) {
		return nil
	}
	return g.Hands[g.CurrentHand]
}

// AdvanceHand marks the current hand finished and moves to the next.
func (g *Game) AdvanceHand() {
	g.CurrentHand++
}

// PlayerTurnDone reports whether every player hand has acted.
func (g *Game) PlayerTurnDone() bool {
	return g.CurrentHand >= len(g.Hands)
}

// TotalStake returns the sum of all hand stakes (doubles and splits
// each add to the committed total).
func (g *Game) TotalStake() int64 {
	var total int64
	for _, h := range g.Hands {
		total += h.Stake
	}
	return total
}

// AllHandsBust reports whether every player hand busted.
func (g *Game) AllHandsBust() bool {
	for _, h := range g.Hands {
		if !h.IsBust() {
			return false
		}
	}
	return true
}

// PlayDealer draws dealer cards until the stand value is reached.
// The dealer does not draw when every player hand already busted.
func (g *Game) PlayDealer() {
	if g.AllHandsBust() {
		return
	}
	for g.Dealer.Value() < DealerStandValue {
		g.Dealer.AddCard(g.DealCard())
	}
}

// ResolveOutcomes records the outcome of each player hand against the
// finished dealer hand.
func (g *Game) ResolveOutcomes() {
	dealerValue := g.Dealer.Value()
	dealerBlackjack := g.Dealer.IsBlackjack()
	for _, h := range g.Hands {
		switch {
		case h.IsBust():
			h.Outcome = OutcomeBust
		case h.IsBlackjack() && !h.FromSplit:
			if dealerBlackjack {
				h.Outcome = OutcomePush
			} else {
				h.Outcome = OutcomeBlackjack
			}
		case g.Dealer.IsBust():
			h.Outcome = OutcomeWin
		case h.Value() > dealerValue:
			h.Outcome = OutcomeWin
		case h.Value() < dealerValue:
			h.Outcome = OutcomeLose
		default:
			h.Outcome = OutcomePush
		}
	}
}

// Payout returns the total amount to credit for a resolved game: per
// hand, 2x stake for a win, the stake back for a push, 5/2x stake for
// a natural blackjack and nothing for a loss or bust. It does not
// mutate state; callers move money through the wallet ledger.
func (g *Game) Payout() int64 {
	var total int64
	for _, h := range g.Hands {
		switch h.Outcome {
		case OutcomeWin:
			total += 2 * h.Stake
		case OutcomePush:
			total += h.Stake
		case OutcomeBlackjack:
			total += h.Stake * 5 / 2
		}
	}
	return total
}

// DeriveStatus maps resolved hand outcomes to the terminal game status.
// For split games the aggregate is decided by total payout against
// total stake.
func (g *Game) DeriveStatus() GameStatus {
	if g.AllHandsBust() {
		return GameStatusPlayerBust
	}
	if len(g.Hands) == 1 {
		switch g.Hands[0].Outcome {
		case OutcomeBlackjack:
			return GameStatusBlackjack
		case OutcomePush:
			return GameStatusPush
		case OutcomeLose:
			return GameStatusDealerWin
		case OutcomeBust:
			return GameStatusPlayerBust
		}
		if g.Dealer.IsBust() {
			return GameStatusDealerBust
		}
		return GameStatusPlayerWin
	}
	if g.Dealer.IsBust() {
		return GameStatusDealerBust
	}
	payout := g.Payout()
	stake := g.TotalStake()
	switch {
	case payout > stake:
		return GameStatusPlayerWin
	case payout < stake:
		return GameStatusDealerWin
	default:
		return GameStatusPush
	}
}

// Settle finalizes a game: resolves outcomes if needed, stamps the
// terminal status and resolution time. The wallet credit itself is
// guarded by the storage layer's ACTIVE-status transition so a game
// can never pay out twice.
func (g *Game) Settle(now time.Time) {
	if g.Status != GameStatusActive {
		return
	}
	g.Status = g.DeriveStatus()
	resolved := now.UTC()
	g.ResolvedAt = &resolved
}

package domain

// HandOutcome is the per-hand result recorded at settlement.
type HandOutcome string

const (
	OutcomePending   HandOutcome = ""
	OutcomeWin       HandOutcome = "WIN"
	OutcomeLose      HandOutcome = "LOSE"
	OutcomePush      HandOutcome = "PUSH"
	OutcomeBlackjack HandOutcome = "BLACKJACK"
	OutcomeBust      HandOutcome = "BUST"
)

// Hand is an ordered sequence of cards with its own stake.
// A split produces two hands, each carrying a full stake.
type Hand struct {
	Cards     []Card      `json:"cards"`
	Stake     int64       `json:"stake"`
	Doubled   bool        `json:"doubled,omitempty"`
	FromSplit bool        `json:"from_split,omitempty"`
	Outcome   HandOutcome `json:"outcome,omitempty"`
}

// NewHand creates a hand with the given stake.
func NewHand(stake int64, cards ...Card) *Hand {
	h := &Hand{Stake: stake, Cards: make([]Card, 0, 8)}
	h.Cards = append(h.Cards, cards...)
	return h
}

// AddCard appends a card to the hand.
func (h *Hand) AddCard(card Card) {
	h.Cards = append(h.Cards, card)
}

// Value returns the best blackjack total: each Ace counts as 11, then
// Aces are demoted to 1 one at a time while the total exceeds 21.
func (h *Hand) Value() int {
	total := 0
	aces := 0
	for _, c := range h.Cards {
		if c.IsAce() {
			aces++
		}
		total += c.BlackjackValue()
	}
	for aces > 0 && total > 21 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.Value() == 21
}

// IsBust reports whether the hand total exceeds 21.
func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

// IsSoft reports whether the best total still counts an Ace as 11.
func (h *Hand) IsSoft() bool {
	hard := 0
	aces := 0
	for _, c := range h.Cards {
		if c.IsAce() {
			aces++
			hard++
		} else {
			hard += c.BlackjackValue()
		}
	}
	return aces > 0 && hard+10 <= 21
}

// CanSplit reports whether the hand may be split: exactly two cards of
// equal rank, and the hand is not itself a split child (no re-split).
func (h *Hand) CanSplit() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank && !h.FromSplit
}

// CanDouble reports whether the hand may double down: exactly two cards
// and not a natural. Doubling after a split is permitted.
func (h *Hand) CanDouble() bool {
	return len(h.Cards) == 2 && !h.IsBlackjack()
}

// Split divides the hand into two one-card hands, each keeping the
// original stake. The receiver must satisfy CanSplit.
func (h *Hand) Split() (*Hand, *Hand) {
	first := NewHand(h.Stake, h.Cards[0])
	second := NewHand(h.Stake, h.Cards[1])
	first.FromSplit = true
	second.FromSplit = true
	return first, second
}

// Size returns the number of cards in the hand.
func (h *Hand) Size() int {
	return len(h.Cards)
}

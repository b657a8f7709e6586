package domain

import "fmt"

// Suit represents a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit.
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String returns e.g. "A♠" or "10♥".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsAce reports whether the card is an Ace.
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// BlackjackValue returns the card's base blackjack value.
// Aces count as 11 here; demotion to 1 is handled at the hand level.
func (c Card) BlackjackValue() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Ten:
		return 10
	default:
		return int(c.Rank)
	}
}

// RandSource supplies random integers for shuffling. It is injected so
// tests can substitute a deterministic generator.
type RandSource interface {
	// Next returns a uniformly distributed int in [low, highExclusive).
	Next(low, highExclusive int) int
}

// NewDeck creates a standard 52-card deck in deterministic order,
// one card per (suit, rank) combination.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// ShuffleDeck performs an in-place Fisher-Yates shuffle driven by rng.
// It reorders the deck without changing its membership.
func ShuffleDeck(deck []Card, rng RandSource) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Next(0, i+1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

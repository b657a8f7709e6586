package dto

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AmountRequest is the request body for deposits and cash-outs.
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletBalanceResponse is the response for balance queries and
// wallet mutations.
type WalletBalanceResponse struct {
	Balance int64 `json:"balance"`
}

// CreateGameRequest is the request body for starting a blackjack game.
type CreateGameRequest struct {
	Bet int64 `json:"bet" binding:"required,gt=0"`
}

// CardView is a single card in a game response.
type CardView struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// HandView is one player hand in a game response.
type HandView struct {
	Cards   []CardView `json:"cards"`
	Value   int        `json:"value"`
	Stake   int64      `json:"stake"`
	Doubled bool       `json:"doubled,omitempty"`
	Outcome string     `json:"outcome,omitempty"`
}

// DealerView is the dealer hand. While the game is active only the
// upcard is exposed and HoleHidden is true; Value then covers the
// visible cards only.
type DealerView struct {
	Cards      []CardView `json:"cards"`
	Value      int        `json:"value"`
	HoleHidden bool       `json:"hole_hidden,omitempty"`
}

// GameResponse is the game view returned by every engine endpoint.
type GameResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Bet         int64      `json:"bet"`
	CurrentHand int        `json:"current_hand"`
	Hands       []HandView `json:"hands"`
	Dealer      DealerView `json:"dealer"`
	Balance     int64      `json:"balance"`
	CreatedAt   string     `json:"created_at"`
	ResolvedAt  *string    `json:"resolved_at,omitempty"`
}

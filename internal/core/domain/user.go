package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered player. Balance is held in the smallest
// currency unit and is only ever mutated through the wallet ledger's
// debit/credit operations.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

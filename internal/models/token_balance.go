package models

import "time"

type TokenType string

const (
	TokenFanzcoin TokenType = "fanzcoin"
	TokenLoyalty  TokenType = "loyalty"
	TokenReward   TokenType = "reward"
	TokenUtility  TokenType = "utility"
)

var TokenTypes = []TokenType{TokenFanzcoin, TokenLoyalty, TokenReward, TokenUtility}

func (t TokenType) Valid() bool {
	for _, v := range TokenTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TokenBalance is a user's holding of one non-cash token type.
type TokenBalance struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	UserID        string    `gorm:"size:64;not null;uniqueIndex:idx_tokens_user_type" json:"user_id"`
	TokenType     TokenType `gorm:"size:16;not null;uniqueIndex:idx_tokens_user_type" json:"token_type"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"`
	LockedBalance int64     `gorm:"not null;default:0" json:"locked_balance"`
	ValuePerToken int64     `gorm:"not null" json:"value_per_token"`
	Version       int64     `gorm:"not null;default:1" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Spendable is the part of the balance not locked.
func (t *TokenBalance) Spendable() int64 {
	return t.Balance - t.LockedBalance
}

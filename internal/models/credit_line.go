package models

import "time"

type CreditLineStatus string

const (
	CreditLineStatusPending   CreditLineStatus = "pending"
	CreditLineStatusActive    CreditLineStatus = "active"
	CreditLineStatusClosed    CreditLineStatus = "closed"
	CreditLineStatusDefaulted CreditLineStatus = "defaulted"
)

// Terminal reports whether no further transition is allowed.
func (s CreditLineStatus) Terminal() bool {
	return s == CreditLineStatusClosed || s == CreditLineStatusDefaulted
}

type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

func (t RiskTier) Valid() bool {
	return t == RiskTierLow || t == RiskTierMedium || t == RiskTierHigh
}

// CreditLine is a revolving credit facility.
// AvailableCredit + UsedCredit always equals CreditLimit.
type CreditLine struct {
	ID              string           `gorm:"primaryKey;size:64" json:"id"`
	UserID          string           `gorm:"size:64;not null;index" json:"user_id"`
	Status          CreditLineStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	CreditLimit     int64            `gorm:"not null" json:"credit_limit"`
	AvailableCredit int64            `gorm:"not null" json:"available_credit"`
	UsedCredit      int64            `gorm:"not null;default:0" json:"used_credit"`
	InterestRateBps int              `gorm:"not null;default:0" json:"interest_rate_bps"`
	TrustScore      int              `gorm:"not null;default:0" json:"trust_score"`
	RiskTier        RiskTier         `gorm:"size:16;not null" json:"risk_tier"`
	Collateral      string           `gorm:"size:255" json:"collateral,omitempty"`
	ApprovedBy      string           `gorm:"size:64" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	Version         int64            `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

package models

import "time"

type SplitType string

const (
	SplitCollaborative SplitType = "collaborative"
	SplitAffiliate     SplitType = "affiliate"
	SplitReferral      SplitType = "referral"
	SplitPlatformFee   SplitType = "platform_fee"
	SplitRoyalty       SplitType = "royalty"
)

func (t SplitType) Valid() bool {
	switch t {
	case SplitCollaborative, SplitAffiliate, SplitReferral, SplitPlatformFee, SplitRoyalty:
		return true
	}
	return false
}

type RevenueShareStatus string

const (
	RevenueShareStatusPending   RevenueShareStatus = "pending"
	RevenueShareStatusCompleted RevenueShareStatus = "completed"
	RevenueShareStatusFailed    RevenueShareStatus = "failed"
)

// RevenueShare records how one amount was divided among beneficiaries.
type RevenueShare struct {
	ID              string              `gorm:"primaryKey;size:64" json:"id"`
	ReferenceType   string              `gorm:"size:32;not null;index:idx_revenue_reference,priority:1" json:"reference_type"`
	ReferenceID     string              `gorm:"size:64;not null;index:idx_revenue_reference,priority:2" json:"reference_id"`
	SplitType       SplitType           `gorm:"size:16;not null" json:"split_type"`
	TotalAmount     int64               `gorm:"not null" json:"total_amount"`
	RemainderAmount int64               `gorm:"not null;default:0" json:"remainder_amount"`
	Status          RevenueShareStatus  `gorm:"size:16;not null;default:'pending'" json:"status"`
	FailureReason   string              `gorm:"size:255" json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
	Splits          []RevenueShareSplit `gorm:"foreignKey:RevenueShareID;constraint:OnDelete:RESTRICT" json:"splits"`
	Version         int64               `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RevenueShareSplit is one beneficiary's part. Amount is the floored share;
// RemainderAmount is the rounding remainder this beneficiary absorbed.
type RevenueShareSplit struct {
	ID              uint    `gorm:"primaryKey" json:"-"`
	RevenueShareID  string  `gorm:"size:64;not null;uniqueIndex:idx_split_share_user" json:"-"`
	Position        int     `gorm:"not null" json:"position"`
	UserID          string  `gorm:"size:64;not null;uniqueIndex:idx_split_share_user" json:"user_id"`
	Percentage      float64 `gorm:"not null" json:"percentage"`
	Amount          int64   `gorm:"not null" json:"amount"`
	RemainderAmount int64   `gorm:"not null;default:0" json:"remainder_amount"`
	EntryID         string  `gorm:"size:64" json:"entry_id,omitempty"`
}

// Credited is what the beneficiary's wallet receives.
func (s RevenueShareSplit) Credited() int64 {
	return s.Amount + s.RemainderAmount
}

// Clone returns a copy that shares no slices with rs.
func (rs *RevenueShare) Clone() *RevenueShare {
	out := *rs
	out.Splits = append([]RevenueShareSplit(nil), rs.Splits...)
	return &out
}

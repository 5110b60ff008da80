package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Metadata keys understood by the journal.
const (
	MetaNote                 = "note"
	MetaExternalRef          = "external_ref"
	MetaTransferID           = "transfer_id"
	MetaCounterpartyWalletID = "counterparty_wallet_id"
	MetaCounterpartyUserID   = "counterparty_user_id"
	MetaCreditLineID         = "credit_line_id"
	MetaTokenType            = "token_type"
	MetaTokenAmount          = "token_amount"
	MetaValuePerToken        = "value_per_token"
	MetaRevenueShareID       = "revenue_share_id"
	MetaSplitType            = "split_type"
	MetaPercentage           = "percentage"
	MetaRemainder            = "remainder"
	MetaProcessor            = "processor"
	MetaProcessorRef         = "processor_ref"
	MetaSubscriptionID       = "subscription_id"
	MetaCreatorID            = "creator_id"
	MetaReason               = "reason"
)

var commonMetadataKeys = []string{MetaNote, MetaExternalRef}

// AllowedMetadataKeys is the closed key set per category, on top of the
// common keys.
var AllowedMetadataKeys = map[TransactionCategory][]string{
	CategoryTransfer:      {MetaTransferID, MetaCounterpartyWalletID, MetaCounterpartyUserID},
	CategoryPayment:       {MetaRevenueShareID, MetaSplitType, MetaPercentage, MetaRemainder},
	CategoryCreditIssued:  {MetaCreditLineID},
	CategoryTokenPurchase: {MetaTokenType, MetaTokenAmount, MetaValuePerToken},
	CategoryDeposit:       {MetaProcessor, MetaProcessorRef},
	CategoryWithdrawal:    {MetaProcessor, MetaProcessorRef},
	CategoryRefund:        {MetaProcessor, MetaProcessorRef, MetaReason},
	CategorySubscription:  {MetaSubscriptionID, MetaCreatorID},
	CategoryTip:           {MetaCreatorID},
	CategoryAdjustment:    {MetaReason},
}

// Metadata is a flat string map stored as jsonb.
type Metadata map[string]string

// Validate rejects keys outside the category's closed set.
func (m Metadata) Validate(category TransactionCategory) error {
	allowed, ok := AllowedMetadataKeys[category]
	if !ok {
		return fmt.Errorf("unknown category %q", category)
	}
	var unknown []string
	for k := range m {
		if !contains(allowed, k) && !contains(commonMetadataKeys, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("metadata keys %v not allowed for category %q", unknown, category)
	}
	return nil
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Value implements the driver.Valuer interface
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *Metadata) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, m)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Points ledger entry_type values.
const (
	PointsEntryJoinBonus     = "join_bonus"
	PointsEntryReferralBonus = "referral_bonus"
	PointsEntryTaskReward    = "task_reward"
	PointsEntryWithdrawal    = "withdrawal"
)

// PointsEntry is one append-only row of the points ledger. Amount is always
// positive; withdrawal entries debit the account.
type PointsEntry struct {
	ID           uuid.UUID `json:"id"`
	AccountID    string    `json:"accountId"`
	EntryType    string    `json:"entryType"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	RefID        *string   `json:"refId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Signed returns the balance delta the entry represents.
func (e *PointsEntry) Signed() int64 {
	if e.EntryType == PointsEntryWithdrawal {
		return -e.Amount
	}
	return e.Amount
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal request status values. Approved and Rejected are set by the
// operator outside this service.
const (
	WithdrawalStatusPending  = "Pending"
	WithdrawalStatusApproved = "Approved"
	WithdrawalStatusRejected = "Rejected"
)

type WithdrawalRequest struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"accountId"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"date"`
}

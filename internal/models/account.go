package models

import (
	"time"
)

// JoinBonus is the fixed number of points credited to an account created
// through a referral code.
const JoinBonus = 10

// Presentation defaults applied when the bot does not supply a value.
const (
	DefaultDisplayName = "Anonymous"
	DefaultContact     = "Not provided"
)

type Account struct {
	ID                 string               `json:"id"`
	DisplayName        string               `json:"displayName"`
	AvatarRef          string               `json:"avatarRef"`
	Contact            string               `json:"contact"`
	ReferralCode       string               `json:"referralCode"`
	Balance            int64                `json:"balance"`
	ReferredBy         *string              `json:"referredBy"`
	CompletedTasks     []string             `json:"completedTasks"`
	WithdrawalRequests []*WithdrawalRequest `json:"withdrawalRequests"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

// Profile is the presentation metadata supplied on registration. None of it
// is validated.
type Profile struct {
	Contact     string
	DisplayName string
	AvatarRef   string
}

// WithDefaults fills empty fields with the presentation defaults.
func (p Profile) WithDefaults() Profile {
	if p.Contact == "" {
		p.Contact = DefaultContact
	}
	if p.DisplayName == "" {
		p.DisplayName = DefaultDisplayName
	}
	return p
}

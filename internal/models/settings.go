package models

import "time"

// Settings holds the reward parameters configured by the administrator.
type Settings struct {
	MinWithdraw     int64     `json:"minWithdraw"`
	ReferBonus      int64     `json:"referBonus"`
	TaskPoints      int64     `json:"taskPoints"`
	WithdrawMethods []string  `json:"withdrawMethods"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// DefaultSettings returns the values used while no settings row exists.
func DefaultSettings() Settings {
	return Settings{
		MinWithdraw:     50,
		ReferBonus:      20,
		TaskPoints:      10,
		WithdrawMethods: []string{"bKash", "Nagad", "USDT", "TRX"},
	}
}

// AllowsMethod reports whether method is one of the configured withdraw methods.
func (s Settings) AllowsMethod(method string) bool {
	for _, m := range s.WithdrawMethods {
		if m == method {
			return true
		}
	}
	return false
}

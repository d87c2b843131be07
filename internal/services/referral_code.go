package services

import (
	"crypto/rand"
	"math/big"
)

const (
	ReferralCodeLength   = 6
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds regeneration when a fresh code is already taken.
	maxCodeAttempts = 5
)

var alphabetSize = big.NewInt(int64(len(referralCodeAlphabet)))

// newReferralCode is swapped in tests to force collisions.
var newReferralCode = NewReferralCode

// NewReferralCode returns a random 6-character code over [A-Z0-9].
func NewReferralCode() string {
	b := make([]byte, ReferralCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("crypto/rand: " + err.Error())
		}
		b[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(b)
}

package services

import (
	"errors"
)

// Kind groups error codes into the categories reported to API callers.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindNotFound      Kind = "NotFoundError"
	KindConflict      Kind = "ConflictError"
	KindAuthorization Kind = "AuthorizationError"
	KindStore         Kind = "StoreError"
)

// Sentinel errors returned by the ledger services. Callers match them with
// errors.Is; the services wrap them with context via fmt.Errorf("%w").
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidSettings     = errors.New("invalid settings")
	ErrUnsupportedMethod   = errors.New("unsupported withdraw method")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrAlreadyRegistered   = errors.New("account already registered")
	ErrAlreadyCompleted    = errors.New("task already completed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below minimum withdraw")
	ErrUnauthorized        = errors.New("unauthorized")
)

var classified = []struct {
	err  error
	code string
	kind Kind
}{
	{ErrInvalidSettings, "InvalidSettings", KindValidation},
	{ErrUnsupportedMethod, "UnsupportedMethod", KindValidation},
	{ErrInvalidReferralCode, "InvalidReferralCode", KindValidation},
	{ErrValidation, "ValidationError", KindValidation},
	{ErrAccountNotFound, "AccountNotFound", KindNotFound},
	{ErrTaskNotFound, "TaskNotFound", KindNotFound},
	{ErrAlreadyRegistered, "AlreadyRegistered", KindConflict},
	{ErrAlreadyCompleted, "AlreadyCompleted", KindConflict},
	{ErrInsufficientBalance, "InsufficientBalance", KindConflict},
	{ErrBelowMinimum, "BelowMinimum", KindConflict},
	{ErrUnauthorized, "Unauthorized", KindAuthorization},
}

// Classify maps err to its stable error code and kind. Errors that are not
// one of the sentinels above are persistence failures.
func Classify(err error) (code string, kind Kind) {
	for _, c := range classified {
		if errors.Is(err, c.err) {
			return c.code, c.kind
		}
	}
	return "StoreError", KindStore
}

// outcome is the metrics label for the result of an operation.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	code, _ := Classify(err)
	return code
}

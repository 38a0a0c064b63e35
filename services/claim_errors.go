package services

import "errors"

type ClaimErrorCode string

const (
	CodeDropNotFound       ClaimErrorCode = "DROP_NOT_FOUND"
	CodeDropNotLive        ClaimErrorCode = "DROP_NOT_LIVE"
	CodeDropSoldOut        ClaimErrorCode = "DROP_SOLD_OUT"
	CodeWalletRequired     ClaimErrorCode = "WALLET_REQUIRED"
	CodeLimitReached       ClaimErrorCode = "LIMIT_REACHED"
	CodeDealSupplyExceeded ClaimErrorCode = "DEAL_SUPPLY_EXCEEDED"
)

// ClaimError is a business rule rejection. Callers match it with errors.Is
// against the sentinels below or read Code through errors.As.
type ClaimError struct {
	Code    ClaimErrorCode
	Message string
}

func (e *ClaimError) Error() string {
	return e.Message
}

// Is matches any ClaimError with the same code.
func (e *ClaimError) Is(target error) bool {
	var other *ClaimError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func newClaimError(code ClaimErrorCode, message string) *ClaimError {
	return &ClaimError{Code: code, Message: message}
}

var (
	ErrDropNotFound       = newClaimError(CodeDropNotFound, "Drop not found")
	ErrDropNotLive        = newClaimError(CodeDropNotLive, "Drop is not live")
	ErrDropOutsideWindow  = newClaimError(CodeDropNotLive, "Drop is outside active window")
	ErrDropSoldOut        = newClaimError(CodeDropSoldOut, "Drop supply exhausted")
	ErrWalletRequired     = newClaimError(CodeWalletRequired, "Wallet address required to claim drop")
	ErrLimitReached       = newClaimError(CodeLimitReached, "Wallet already claimed this drop")
	ErrDealSupplyExceeded = newClaimError(CodeDealSupplyExceeded, "Deal supply exhausted")
)

func ClaimErrorCodes() []ClaimErrorCode {
	return []ClaimErrorCode{
		CodeDropNotFound,
		CodeDropNotLive,
		CodeDropSoldOut,
		CodeWalletRequired,
		CodeLimitReached,
		CodeDealSupplyExceeded,
	}
}

// AsClaimError extracts the ClaimError from err, if any.
func AsClaimError(err error) (*ClaimError, bool) {
	var ce *ClaimError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

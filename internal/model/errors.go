package model

import "errors"

// Kind classifies protocol rejections.
type Kind uint8

const (
	KindAccessControl Kind = iota + 1
	KindValidation
	KindGovernanceTiming
	KindCryptographic
	KindCrosschainDelivery
)

func (k Kind) String() string {
	switch k {
	case KindAccessControl:
		return "access_control"
	case KindValidation:
		return "validation"
	case KindGovernanceTiming:
		return "governance_timing"
	case KindCryptographic:
		return "cryptographic"
	case KindCrosschainDelivery:
		return "crosschain_delivery"
	default:
		return "unknown"
	}
}

// Error is an explicit rejection carrying a short machine-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

var (
	ErrOwner       = newError(KindAccessControl, "!owner")
	ErrWhitelisted = newError(KindAccessControl, "!whitelisted")
	ErrAuthorized  = newError(KindAccessControl, "!authorized")

	ErrDomain          = newError(KindValidation, "!domain")
	ErrContractAddress = newError(KindValidation, "!contractAddress")
	ErrArmExists       = newError(KindValidation, "alreadyExists")
	ErrNotExists       = newError(KindValidation, "!exists")
	ErrTokenExists     = newError(KindValidation, "exists")
	ErrZeroAddress     = newError(KindValidation, "!zeroAddress")
	ErrInvalidToken    = newError(KindValidation, "!valid")
	ErrProductID       = newError(KindValidation, "!productId")
	ErrPrice           = newError(KindValidation, "!price")
	ErrSeller          = newError(KindValidation, "!seller")
	ErrStock           = newError(KindValidation, "!stock")
	ErrProductExists   = newError(KindValidation, "alreadyExist")
	ErrSettlementToken = newError(KindValidation, "!settlementToken")
	ErrLength          = newError(KindValidation, "!length")
	ErrFee             = newError(KindValidation, "!fee")
	ErrEnabled         = newError(KindValidation, "!enabled")
	ErrValue           = newError(KindValidation, "!value")
	ErrFunds           = newError(KindValidation, "!funds")
	ErrStatus          = newError(KindValidation, "!status")
	ErrLocal           = newError(KindValidation, "!local")
	ErrAmount          = newError(KindValidation, "!amount")
	ErrArm             = newError(KindValidation, "!arm")
	ErrBinding         = newError(KindValidation, "!binding")

	ErrNotPrepared = newError(KindGovernanceTiming, "!prepared")
	ErrLocked      = newError(KindGovernanceTiming, "!unlocked")

	ErrSignature = newError(KindCryptographic, "!signature")
	ErrNonce     = newError(KindCryptographic, "!nonce")

	ErrAuthorizedOrigin = newError(KindCrosschainDelivery, "!authorizedOrigin")
	ErrExecutor         = newError(KindCrosschainDelivery, "!executor")
	ErrDelivery         = newError(KindCrosschainDelivery, "!delivery")
	ErrSlippage         = newError(KindCrosschainDelivery, "!slippage")
	ErrLiquidity        = newError(KindCrosschainDelivery, "!liquidity")
	ErrPayload          = newError(KindCrosschainDelivery, "!payload")
)

// KindOf returns the kind of a protocol rejection anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// ReasonOf returns the machine-readable reason of err, "" for nil and
// "internal" for errors that are not protocol rejections.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return "internal"
}

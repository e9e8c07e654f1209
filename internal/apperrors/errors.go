package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrCompanyNotFound indicates that a company with the given ID does not exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInvestorNotFound indicates that an investor with the given ID does not exist.
	ErrInvestorNotFound = errors.New("investor not found")

	// ErrRoundNotFound indicates that a round with the given ID does not exist.
	ErrRoundNotFound = errors.New("round not found")

	// ErrDividendNotFound indicates that a dividend record with the given ID does not exist.
	ErrDividendNotFound = errors.New("dividend not found")

	// ErrPaymentNotFound indicates that a payment with the given ID does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrEntityHoldingNotFound indicates a pass-through entity has no underlying holdings.
	ErrEntityHoldingNotFound = errors.New("entity holdings not found")
)

// Prerequisite errors block payment collection before any write occurs.
var (
	// ErrNoPaymentSource indicates the company has no alive, ready payment source.
	ErrNoPaymentSource = errors.New("no alive and ready payment source")

	// ErrRoundNotReady indicates the round is not yet marked ready for payment.
	ErrRoundNotReady = errors.New("round not ready for payment")

	// ErrRoundAlreadyPaid indicates collection was attempted for a round already paid.
	ErrRoundAlreadyPaid = errors.New("round already paid")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrRoundConflict indicates an existing round overlaps the requested issuance date.
	ErrRoundConflict = errors.New("conflicting round exists for company")

	// ErrInvalidComputation indicates the computation input is malformed.
	ErrInvalidComputation = errors.New("invalid computation input")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data.
var (
	ErrFailedToRetrieveRounds    = errors.New("failed to retrieve rounds")
	ErrFailedToRetrieveRound     = errors.New("failed to retrieve round")
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")
	ErrFailedToRetrievePayment   = errors.New("failed to retrieve payment")
	ErrFailedToRetrieveLedger    = errors.New("failed to retrieve balance transactions")
	ErrFailedToCreateRound       = errors.New("failed to create round")
	ErrFailedToCreatePayment     = errors.New("failed to create payment")
	ErrFailedToProcessWebhook    = errors.New("failed to process webhook event")
	ErrFailedToRefreshPayment    = errors.New("failed to refresh payment status")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a payment exists for a round that doesn't exist).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// PaymentError wraps a gateway-side failure. It carries the gateway's own
// message so callers can surface it, and unwraps to ErrGateway so errors.Is
// keeps working across layers.
type PaymentError struct {
	RoundID  string
	IntentID string
	Message  string
}

// ErrGateway is the sentinel all PaymentError values unwrap to.
var ErrGateway = errors.New("payment gateway error")

func (e *PaymentError) Error() string {
	if e.IntentID != "" {
		return fmt.Sprintf("payment gateway error for round %s (intent %s): %s", e.RoundID, e.IntentID, e.Message)
	}
	return fmt.Sprintf("payment gateway error for round %s: %s", e.RoundID, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return ErrGateway
}

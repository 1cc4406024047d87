package services

// ErrorKind groups errors by how a caller should react to them
type ErrorKind string

const (
	KindPermission        ErrorKind = "permission"
	KindStatePrecondition ErrorKind = "state_precondition"
	KindCapacity          ErrorKind = "capacity"
	KindArithmetic        ErrorKind = "arithmetic"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindInvalidInput      ErrorKind = "invalid_input"
)

// Error is a domain error returned by the marketplace, management and
// governance services. Sentinels are compared with errors.Is.
type Error struct {
	Kind ErrorKind
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Permission
var (
	ErrNoPermission           = newError(KindPermission, "NoPermission")
	ErrInsufficientPermission = newError(KindPermission, "InsufficientPermission")
	ErrUserNotWhitelisted     = newError(KindPermission, "UserNotWhitelisted")
	ErrLawyerJobTaken         = newError(KindPermission, "LawyerJobTaken")
)

// State preconditions
var (
	ErrInvalidIndex            = newError(KindStatePrecondition, "InvalidIndex")
	ErrRegionUnknown           = newError(KindStatePrecondition, "RegionUnknown")
	ErrLocationRegistered      = newError(KindStatePrecondition, "LocationRegistered")
	ErrLocationUnknown         = newError(KindStatePrecondition, "LocationUnknown")
	ErrTokenNotForSale         = newError(KindStatePrecondition, "TokenNotForSale")
	ErrNotEnoughTokenAvailable = newError(KindStatePrecondition, "NotEnoughTokenAvailable")
	ErrNotEnoughToken          = newError(KindStatePrecondition, "NotEnoughToken")
	ErrSpvNotCreated           = newError(KindStatePrecondition, "SpvNotCreated")
	ErrPropertyAlreadySold     = newError(KindStatePrecondition, "PropertyAlreadySold")
	ErrOfferAlreadyExists      = newError(KindStatePrecondition, "OfferAlreadyExists")
	ErrLawyerAlreadyRegistered = newError(KindStatePrecondition, "LawyerAlreadyRegistered")
	ErrCostsTooHigh            = newError(KindStatePrecondition, "CostsTooHigh")
	ErrLettingAgentExists      = newError(KindStatePrecondition, "LettingAgentExists")
	ErrAgentNotFound           = newError(KindStatePrecondition, "AgentNotFound")
	ErrAlreadyDeposited        = newError(KindStatePrecondition, "AlreadyDeposited")
	ErrNotDeposited            = newError(KindStatePrecondition, "NotDeposited")
	ErrNoLoactions             = newError(KindStatePrecondition, "NoLoactions")
	ErrLettingAgentInLocation  = newError(KindStatePrecondition, "LettingAgentInLocation")
	ErrLettingAgentAlreadySet  = newError(KindStatePrecondition, "LettingAgentAlreadySet")
	ErrNoLettingAgentFound     = newError(KindStatePrecondition, "NoLettingAgentFound")
	ErrUserHasNoFundsStored    = newError(KindStatePrecondition, "UserHasNoFundsStored")
	ErrNotOngoing              = newError(KindStatePrecondition, "NotOngoing")
	ErrChallengeAlreadyOngoing = newError(KindStatePrecondition, "ChallengeAlreadyOngoing")
)

// Capacity
var (
	ErrTooManyToken              = newError(KindCapacity, "TooManyToken")
	ErrTooManyTokenBuyer         = newError(KindCapacity, "TooManyTokenBuyer")
	ErrTooManyLettingAgents      = newError(KindCapacity, "TooManyLettingAgents")
	ErrTooManyLocations          = newError(KindCapacity, "TooManyLocations")
	ErrTooManyAssignedProperties = newError(KindCapacity, "TooManyAssignedProperties")
	ErrTooManyProposals          = newError(KindCapacity, "TooManyProposals")
)

// Arithmetic
var (
	ErrConversionError     = newError(KindArithmetic, "ConversionError")
	ErrMultiplyError       = newError(KindArithmetic, "MultiplyError")
	ErrDivisionError       = newError(KindArithmetic, "DivisionError")
	ErrArithmeticOverflow  = newError(KindArithmetic, "ArithmeticOverflow")
	ErrArithmeticUnderflow = newError(KindArithmetic, "ArithmeticUnderflow")
)

// Insufficient funds. Ledger shortfalls surface as blockchain.ErrNotEnoughFunds.
var (
	ErrNotEnoughReserves = newError(KindInsufficientFunds, "NotEnoughReserves")
)

// Invalid input
var (
	ErrAmountCannotBeZero = newError(KindInvalidInput, "AmountCannotBeZero")
	ErrInvalidLocation    = newError(KindInvalidInput, "InvalidLocation")
	ErrInvalidVote        = newError(KindInvalidInput, "InvalidVote")
	ErrInvalidLegalSide   = newError(KindInvalidInput, "InvalidLegalSide")
)

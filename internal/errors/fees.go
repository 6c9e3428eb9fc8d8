package errors

// Configuration errors are operator-facing: the engine cannot derive a
// correct fee until an administrator fixes the data.
var (
	ErrNoBaseBand = &DomainError{
		Kind:    KindConfiguration,
		Code:    "NO_BASE_BAND",
		Message: "no base band found",
	}
	ErrBaseBandWithoutFee = &DomainError{
		Kind:    KindConfiguration,
		Code:    "BASE_BAND_WITHOUT_FEE",
		Message: "base band has no fee",
	}
	ErrBaseSizeMultiplier = &DomainError{
		Kind:    KindConfiguration,
		Code:    "BASE_SIZE_MULTIPLIER",
		Message: "base band size has a zero multiplier",
	}
	ErrNoDefaultBillingAgent = &DomainError{
		Kind:    KindConfiguration,
		Code:    "NO_DEFAULT_BILLING_AGENT",
		Message: "no default billing agent configured",
	}
	ErrNoDefaultLevel = &DomainError{
		Kind:    KindConfiguration,
		Code:    "NO_DEFAULT_LEVEL",
		Message: "no default support level configured",
	}
)

var (
	ErrBandNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "BAND_NOT_FOUND",
		Message: "band not found",
	}
	ErrSupporterNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "SUPPORTER_NOT_FOUND",
		Message: "supporter not found",
	}
	ErrBillingAgentNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "BILLING_AGENT_NOT_FOUND",
		Message: "billing agent not found",
	}
	ErrLevelNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "LEVEL_NOT_FOUND",
		Message: "support level not found",
	}
	ErrSizeNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "SIZE_NOT_FOUND",
		Message: "supporter size not found",
	}
	ErrCurrencyNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "CURRENCY_NOT_FOUND",
		Message: "currency not found",
	}
)

var (
	ErrInvalidCategory = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_CATEGORY",
		Message: "invalid band category",
	}
	ErrInvalidTransition = &DomainError{
		Kind:    KindConflict,
		Code:    "INVALID_CATEGORY_TRANSITION",
		Message: "band category transition not allowed",
	}
)

package domain

import "fmt"

// Error types for consistent error handling across the CNAB service.

// Reasons carried by ErrConfiguration.
const (
	ReasonMissingConfigField = "missing config field"
	ReasonInvalidFieldType   = "invalid field type"
	ReasonAlreadyConfigured  = "already configured"
	ReasonNotConfigured      = "not configured"
)

// ErrConfiguration indicates a missing or mistyped configuration key, raised
// while configuring a remessa file.
type ErrConfiguration struct {
	Key    string
	Reason string
}

func (e *ErrConfiguration) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error on '%s': %s", e.Key, e.Reason)
}

// IsMissingField reports whether the key was absent.
func (e *ErrConfiguration) IsMissingField() bool {
	return e.Reason == ReasonMissingConfigField
}

// IsInvalidType reports whether the key was present with the wrong type.
func (e *ErrConfiguration) IsInvalidType() bool {
	return e.Reason == ReasonInvalidFieldType
}

// ErrValidation indicates a record or input failed a field constraint.
// Record is empty for request-level validation.
type ErrValidation struct {
	Record  string
	Field   string
	Message string
	Err     error
}

func (e *ErrValidation) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error on '%s.%s': %s", e.Record, e.Field, e.Message)
}

func (e *ErrValidation) Unwrap() error {
	return e.Err
}

// ErrUnknownBankVariant indicates a bank code, or a layout variant of a known
// bank, with no registered field plan.
type ErrUnknownBankVariant struct {
	Code    int
	Variant string
}

func (e *ErrUnknownBankVariant) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("unknown bank variant: %03d/%s", e.Code, e.Variant)
	}
	return fmt.Sprintf("unknown bank variant: %03d", e.Code)
}

// ErrFinalized indicates a mutation attempted after the file was rendered.
type ErrFinalized struct {
	Operation string
}

func (e *ErrFinalized) Error() string {
	return fmt.Sprintf("file already finalized: %s not allowed", e.Operation)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrPayloadTooLarge indicates an uploaded file exceeded the configured limit.
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("payload exceeds %d bytes", e.Limit)
}

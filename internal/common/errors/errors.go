// Package errors provides standardized error handling for the compatibility workers
// and their BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Compatibility analysis taxonomy
const (
	ErrCodeInvalidOfferType   ErrorCode = "INVALID_OFFER_TYPE"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeAuthorization      ErrorCode = "AUTHORIZATION_ERROR"
	ErrCodeAuthentication     ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Worker-level errors
const (
	ErrCodeParse              ErrorCode = "PARSE_ERROR"
	ErrCodeAnalysisInProgress ErrorCode = "ANALYSIS_IN_PROGRESS"
	ErrCodeOfferLookupFailed  ErrorCode = "OFFER_LOOKUP_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// User-facing hints attached to retryable remote failures.
const (
	HintTryAgainShortly         = "try again shortly"
	HintTemporarilyUnavailable  = "the service is temporarily unavailable"
	metadataKeyHint             = "hint"
	metadataKeyAlias            = "alias"
	metadataKeyStatusCode       = "statusCode"
	metadataKeyServiceReference = "service"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Hint returns the user-facing hint for retryable errors, or an empty string.
func (e *StandardError) Hint() string {
	if e.Metadata == nil {
		return ""
	}
	hint, _ := e.Metadata[metadataKeyHint].(string)
	return hint
}

// Alias returns the offer type alias carried by an INVALID_OFFER_TYPE error.
func (e *StandardError) Alias() string {
	if e.Metadata == nil {
		return ""
	}
	alias, _ := e.Metadata[metadataKeyAlias].(string)
	return alias
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidOfferTypeError creates a non-retryable error for an unrecognized offer type alias.
func NewInvalidOfferTypeError(alias string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOfferType,
		Message:   "Unrecognized offer type",
		Details:   fmt.Sprintf("offerType: %q", alias),
		Retryable: false,
		Metadata:  map[string]interface{}{metadataKeyAlias: alias},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable error for a request rejected by the scoring service.
// The remote message is kept verbatim in Details.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Request rejected by the scoring service",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthorizationError creates a non-retryable access-denied error.
func NewAuthorizationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthorization,
		Message:   "Access denied by the scoring service",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable error; the caller should re-authenticate.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable error for an unknown candidate or offer.
func NewNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   errDetails(err),
		Retryable: true,
		Metadata: map[string]interface{}{
			metadataKeyHint:             HintTryAgainShortly,
			metadataKeyServiceReference: service,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError creates a retryable error for 5xx and transport failures.
func NewServiceUnavailableError(service string, statusCode int, err error) *StandardError {
	meta := map[string]interface{}{
		metadataKeyHint:             HintTemporarilyUnavailable,
		metadataKeyServiceReference: service,
	}
	if statusCode > 0 {
		meta[metadataKeyStatusCode] = statusCode
	}
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("Service '%s' unavailable", service),
		Details:   errDetails(err),
		Retryable: true,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError creates a non-retryable error for malformed job variables.
func NewParseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParse,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisInProgressError creates a retryable error when the same pair is already being analyzed.
func NewAnalysisInProgressError(candidateID, offerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisInProgress,
		Message:   "Analysis already in progress",
		Details:   fmt.Sprintf("candidateId: %s, offerId: %s", candidateID, offerID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOfferLookupFailedError creates a retryable database error.
func NewOfferLookupFailedError(offerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOfferLookupFailed,
		Message:   "Offer lookup failed",
		Details:   fmt.Sprintf("offerId: %s, error: %s", offerID, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidOfferType:   "INVALID_OFFER_TYPE",
	ErrCodeValidation:         "COMPATIBILITY_VALIDATION_FAILED",
	ErrCodeAuthorization:      "COMPATIBILITY_ACCESS_DENIED",
	ErrCodeAuthentication:     "COMPATIBILITY_UNAUTHENTICATED",
	ErrCodeNotFound:           "COMPATIBILITY_NOT_FOUND",
	ErrCodeTimeout:            "COMPATIBILITY_TIMEOUT",
	ErrCodeServiceUnavailable: "COMPATIBILITY_SERVICE_UNAVAILABLE",
	ErrCodeParse:              "PARSE_ERROR",
	ErrCodeAnalysisInProgress: "ANALYSIS_IN_PROGRESS",
	ErrCodeOfferLookupFailed:  "OFFER_LOOKUP_FAILED",
}

// GetRetryCount returns the recommended job retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeServiceUnavailable,
		ErrCodeOfferLookupFailed:
		return 3

	case ErrCodeTimeout,
		ErrCodeAnalysisInProgress:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if hint := stdErr.Hint(); hint != "" {
		vars["errorHint"] = hint
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or an empty code.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "UNAVAILABLE"):
		return "REMOTE"
	case strings.Contains(codeStr, "OFFER_LOOKUP"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	default:
		return "OTHER"
	}
}

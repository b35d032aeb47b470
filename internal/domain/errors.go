package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Application error codes
const (
	EINVALID      = "invalid"          // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized"     // Authentication required
	EFORBIDDEN    = "forbidden"        // Permission denied
	ENOTFOUND     = "not_found"        // Resource not found
	ECONFLICT     = "conflict"         // Resource conflict (e.g., duplicate)
	EEXPIRED      = "expired"          // Deal past its expiry date
	ESOLDOUT      = "sold_out"         // Deal-wide redemption cap reached
	EUSERCAP      = "user_cap"         // Per-user deal cap reached
	EREDEEMED     = "already_redeemed" // Claim was already redeemed
	ELIMIT        = "limit_exceeded"   // Monthly redemption limit reached
	EPLANCONFIG   = "plan_config"      // No active plan for the tier
	EINTERNAL     = "internal"         // Internal server error
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "redemption.redeem")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var le *LimitError
	if errors.As(err, &le) {
		return ELIMIT
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
// Internal and plan-configuration errors render a generic message so
// operational details never reach end users.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var le *LimitError
	if errors.As(err, &le) {
		return le.Message()
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL || e.Code == EPLANCONFIG {
			return "Something went wrong. Please try again later."
		}
		return e.Message
	}
	return "Something went wrong. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s with ID %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Unauthorized creates an authentication error.
func Unauthorized(op, message string) *Error {
	return &Error{
		Code:    EUNAUTHORIZED,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Redemption failure constructors. Each failure kind gets its own code
// because the client renders a distinct message per kind.

// DealExpired creates the failure for a deal past its expiry date.
func DealExpired(op string, dealID uuid.UUID) *Error {
	return &Error{
		Code:    EEXPIRED,
		Op:      op,
		Message: fmt.Sprintf("deal %s has expired", dealID),
	}
}

// DealSoldOut creates the failure for a deal at its global redemption cap.
func DealSoldOut(op string, dealID uuid.UUID) *Error {
	return &Error{
		Code:    ESOLDOUT,
		Op:      op,
		Message: fmt.Sprintf("deal %s is sold out", dealID),
	}
}

// UserCapReached creates the failure for a user at a deal's per-user cap.
func UserCapReached(op string, dealID uuid.UUID, maxPerUser int) *Error {
	return &Error{
		Code:    EUSERCAP,
		Op:      op,
		Message: fmt.Sprintf("you have already redeemed deal %s the maximum of %d times", dealID, maxPerUser),
	}
}

// AlreadyRedeemed creates the idempotency-guard failure for a claim that
// was redeemed before. Clients may treat this as a soft success; the
// engine never converts it into a duplicate record.
func AlreadyRedeemed(op string, dealID uuid.UUID) *Error {
	return &Error{
		Code:    EREDEEMED,
		Op:      op,
		Message: fmt.Sprintf("deal %s has already been redeemed", dealID),
	}
}

// PlanNotFound creates the configuration fault for a tier with no active
// plan row. This is an operator problem, not a user-facing failure.
func PlanNotFound(op string, tier Tier) *Error {
	return &Error{
		Code:    EPLANCONFIG,
		Op:      op,
		Message: fmt.Sprintf("no active subscription plan for tier %q", tier),
	}
}

// LimitError represents a monthly redemption limit failure. It carries
// the remaining/limit pair so clients can render quota banners.
type LimitError struct {
	Op        string
	Remaining int
	Limit     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: monthly redemption limit reached (%d of %d remaining)", e.Op, e.Remaining, e.Limit)
}

// Message returns the user-facing text for the limit failure.
func (e *LimitError) Message() string {
	return fmt.Sprintf("You have reached your monthly redemption limit of %d.", e.Limit)
}

// LimitExceeded creates a monthly limit failure.
func LimitExceeded(op string, remaining, limit int) *LimitError {
	return &LimitError{
		Op:        op,
		Remaining: remaining,
		Limit:     limit,
	}
}

package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors, matchable with errors.Is across the typed errors below.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	ErrAccountNotFound  = errors.New("account not found")
	ErrOperationFailed  = errors.New("operation failed")
)

// InvalidParameterError reports a malformed creation parameter. It is always
// raised before any state change.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// AccountNotFoundError reports a metadata query against a location that
// holds no code.
type AccountNotFoundError struct {
	Address common.Address
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.Address.Hex())
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// OperationFailedError reports a downstream call that failed after
// validation passed. Reason carries the callee's failure verbatim when
// available.
type OperationFailedError struct {
	Op     string
	Reason string
	Err    error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation failed: %s: %s", e.Op, e.Reason)
}

func (e *OperationFailedError) Is(target error) bool {
	return target == ErrOperationFailed
}

func (e *OperationFailedError) Unwrap() error {
	return e.Err
}

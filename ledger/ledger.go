// Package ledger abstracts the chain state the registry runs against:
// code inspection, code deployment and atomic transaction boundaries.
package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrCodeExists is returned when deploying over an occupied location.
	ErrCodeExists = errors.New("code already present at location")

	// ErrReadOnly is returned by ledgers that can observe but not mutate
	// chain state.
	ErrReadOnly = errors.New("ledger is read-only")
)

// Ledger owns the mapping from location to code. Implementations must treat
// Transact as an all-or-nothing unit: if fn returns an error, every mutation
// made through the ledger inside fn is discarded.
type Ledger interface {
	// CodeAt returns the code deployed at addr, or an empty slice when the
	// location holds no code.
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)

	// DeployCode writes code at addr. Fails with ErrCodeExists if the
	// location is already occupied.
	DeployCode(ctx context.Context, addr common.Address, code []byte) error

	// Call invokes the contract at addr with the given calldata and returns
	// its output.
	Call(ctx context.Context, addr common.Address, data []byte) ([]byte, error)

	// Transact runs fn as one atomic unit against this ledger.
	Transact(ctx context.Context, fn func(Ledger) error) error
}

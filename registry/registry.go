// Package registry derives deterministic token-bound account addresses,
// deploys the delegating account code there exactly once and reads the
// embedded binding back. Existence and metadata are always derived from the
// ledger's code at the target address; the registry keeps no index of its
// own.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/chirper-ai/contracts-sub002/account"
	"github.com/chirper-ai/contracts-sub002/ledger"
)

// CreationRecord is emitted exactly once per account, on first deployment.
type CreationRecord struct {
	Account        common.Address
	Implementation common.Address
	ChainID        string
	TokenContract  common.Address
	TokenID        string
	Salt           common.Hash
	InitData       []byte
}

type Registry struct {
	address common.Address
	ledger  ledger.Ledger
	log     *zap.Logger
	now     func() time.Time
	sink    func(CreationRecord)
}

type Option func(*Registry)

func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithClock overrides the deadline clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithRecordSink receives each creation record after its atomic unit
// commits.
func WithRecordSink(sink func(CreationRecord)) Option {
	return func(r *Registry) { r.sink = sink }
}

// New builds a registry identified by address, operating against l. The
// address participates in derivation: two registries at different addresses
// derive disjoint account locations.
func New(address common.Address, l ledger.Ledger, opts ...Option) *Registry {
	r := &Registry{
		address: address,
		ledger:  l,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Address() common.Address {
	return r.address
}

// ComputeAddress derives the account location for already-validated params:
// keccak256(0xff ++ registry ++ salt ++ keccak256(code))[12:].
func (r *Registry) ComputeAddress(p CreationParams) common.Address {
	addr, _ := r.derive(p)
	return addr
}

// derive is the single source of truth for identity: every path that needs
// the account's location or code goes through it.
func (r *Registry) derive(p CreationParams) (common.Address, []byte) {
	code := account.BuildCode(p.Implementation, p.ChainID, p.TokenContract, p.TokenID, p.Salt)
	return crypto.CreateAddress2(r.address, p.Salt, crypto.Keccak256(code)), code
}

// PredictAddress validates params and derives the account location. No side
// effects; the create path derives the identical address.
func (r *Registry) PredictAddress(p CreationParams) (common.Address, error) {
	if err := validateParams(p); err != nil {
		return common.Address{}, err
	}
	return r.ComputeAddress(p), nil
}

// Exists reports whether the account for p has been deployed, along with
// its derived location.
func (r *Registry) Exists(ctx context.Context, p CreationParams) (bool, common.Address, error) {
	addr, err := r.PredictAddress(p)
	if err != nil {
		return false, common.Address{}, err
	}
	code, err := r.ledger.CodeAt(ctx, addr)
	if err != nil {
		return false, common.Address{}, fmt.Errorf("read code at %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, addr, nil
}

// CreateAccount deploys the account for p at its derived location, calling
// init.InitData against it when non-empty. A second call with identical
// params observes the existing code and returns the same location without
// redeploying, re-initializing or emitting another record. Deployment and
// initialization run in one ledger transaction: an initialization failure
// rolls the deployment back, so a failed create never claims the location.
func (r *Registry) CreateAccount(ctx context.Context, p CreationParams, init InitParams) (common.Address, error) {
	if err := validateParams(p); err != nil {
		return common.Address{}, err
	}
	if !init.Deadline.IsZero() && r.now().After(init.Deadline) {
		return common.Address{}, ErrDeadlineExceeded
	}

	addr, code := r.derive(p)

	existing, err := r.ledger.CodeAt(ctx, addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("read code at %s: %w", addr.Hex(), err)
	}
	if len(existing) > 0 {
		return addr, nil
	}

	err = r.ledger.Transact(ctx, func(tx ledger.Ledger) error {
		if err := tx.DeployCode(ctx, addr, code); err != nil {
			return fmt.Errorf("deploy account code: %w", err)
		}
		if len(init.InitData) == 0 {
			return nil
		}
		if _, err := tx.Call(ctx, addr, init.InitData); err != nil {
			return &OperationFailedError{
				Op:     "account initialization",
				Reason: err.Error(),
				Err:    err,
			}
		}
		return nil
	})
	if err != nil {
		return common.Address{}, err
	}

	rec := CreationRecord{
		Account:        addr,
		Implementation: p.Implementation,
		ChainID:        p.ChainID.String(),
		TokenContract:  p.TokenContract,
		TokenID:        p.TokenID.String(),
		Salt:           p.Salt,
		InitData:       init.InitData,
	}
	r.log.Info("account created",
		zap.String("account", addr.Hex()),
		zap.String("implementation", p.Implementation.Hex()),
		zap.String("chainId", rec.ChainID),
		zap.String("tokenContract", p.TokenContract.Hex()),
		zap.String("tokenId", rec.TokenID),
		zap.String("salt", p.Salt.Hex()),
	)
	if r.sink != nil {
		r.sink(rec)
	}
	return addr, nil
}

// GetImplementation reads the delegation target back from the account's
// deployed code.
func (r *Registry) GetImplementation(ctx context.Context, addr common.Address) (common.Address, error) {
	meta, err := r.metadataAt(ctx, addr)
	if err != nil {
		return common.Address{}, err
	}
	return meta.Implementation, nil
}

// GetTokenForAccount reads the reference-token binding back from the
// account's deployed code.
func (r *Registry) GetTokenForAccount(ctx context.Context, addr common.Address) (Token, error) {
	meta, err := r.metadataAt(ctx, addr)
	if err != nil {
		return Token{}, err
	}
	return Token{
		ChainID:  meta.ChainID,
		Contract: meta.TokenContract,
		ID:       meta.TokenID,
	}, nil
}

func (r *Registry) metadataAt(ctx context.Context, addr common.Address) (account.Metadata, error) {
	code, err := r.ledger.CodeAt(ctx, addr)
	if err != nil {
		return account.Metadata{}, fmt.Errorf("read code at %s: %w", addr.Hex(), err)
	}
	if len(code) == 0 {
		return account.Metadata{}, &AccountNotFoundError{Address: addr}
	}
	meta, err := account.Decode(code)
	if err != nil {
		return account.Metadata{}, fmt.Errorf("decode account %s: %w", addr.Hex(), err)
	}
	return meta, nil
}

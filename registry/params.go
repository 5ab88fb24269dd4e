package registry

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CreationParams fully determines an account's identity: equal params always
// derive the same address.
type CreationParams struct {
	Implementation common.Address
	ChainID        *big.Int
	TokenContract  common.Address
	TokenID        *big.Int
	Salt           common.Hash
}

// InitParams configures the optional post-deployment initialization call.
// A zero Deadline means no deadline.
type InitParams struct {
	InitData []byte
	Deadline time.Time
}

// Token is the reference-token binding recovered from a deployed account.
type Token struct {
	ChainID  *big.Int
	Contract common.Address
	ID       *big.Int
}

func validateParams(p CreationParams) error {
	if p.Implementation == (common.Address{}) {
		return &InvalidParameterError{Field: "implementation", Reason: "zero address"}
	}
	if p.ChainID == nil || p.ChainID.Sign() <= 0 {
		return &InvalidParameterError{Field: "chainId", Reason: "must be a positive integer"}
	}
	if p.ChainID.BitLen() > 256 {
		return &InvalidParameterError{Field: "chainId", Reason: "exceeds 256 bits"}
	}
	if p.TokenContract == (common.Address{}) {
		return &InvalidParameterError{Field: "tokenContract", Reason: "zero address"}
	}
	if p.TokenID == nil || p.TokenID.Sign() < 0 {
		return &InvalidParameterError{Field: "tokenId", Reason: "must be a non-negative integer"}
	}
	if p.TokenID.BitLen() > 256 {
		return &InvalidParameterError{Field: "tokenId", Reason: "exceeds 256 bits"}
	}
	return nil
}

// ValidateCreationParams reports whether params would pass CreateAccount's
// validation, with the failure reason when they would not.
func ValidateCreationParams(p CreationParams) (bool, string) {
	if err := validateParams(p); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Package skilltoken binds the skill-token economics contract. The registry
// only consumes it as the source of the account implementation address; its
// minting and fee logic stay opaque.
package skilltoken

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
)

const (
	name    = "SkillToken"
	version = "0.1.0"
)

var (
	funcAccountImplementation = w3.MustNewFunc(
		"accountImplementation()", "address",
	)
	funcOwnerOf = w3.MustNewFunc(
		"ownerOf(uint256)", "address",
	)
)

func Name() string    { return name }
func Version() string { return version }

// AccountImplementation reads the delegation target the token contract
// designates for its bound accounts.
func AccountImplementation(ctx context.Context, client *w3.Client, token common.Address) (common.Address, error) {
	var impl common.Address
	if err := client.CallCtx(ctx, eth.CallFunc(token, funcAccountImplementation).Returns(&impl)); err != nil {
		return common.Address{}, fmt.Errorf("accountImplementation: %w", err)
	}
	return impl, nil
}

// OwnerOf resolves the current holder of a skill token.
func OwnerOf(ctx context.Context, client *w3.Client, token common.Address, tokenID *big.Int) (common.Address, error) {
	var owner common.Address
	if err := client.CallCtx(ctx, eth.CallFunc(token, funcOwnerOf, tokenID).Returns(&owner)); err != nil {
		return common.Address{}, fmt.Errorf("ownerOf %s: %w", tokenID, err)
	}
	return owner, nil
}

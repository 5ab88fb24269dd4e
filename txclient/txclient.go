// Package txclient submits createAccount transactions to an on-chain
// registry contract and recovers the created account address from receipt
// logs.
package txclient

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"

	"github.com/chirper-ai/contracts-sub002/registry"
)

const CreateAccountGasLimit uint64 = 400_000

var (
	funcCreateAccount = w3.MustNewFunc(
		"createAccount(address,uint256,address,uint256,bytes32,bytes)", "address",
	)
	eventAccountCreated = w3.MustNewEvent(
		"AccountCreated(address account,address indexed implementation,uint256 chainId,address indexed tokenContract,uint256 indexed tokenId,bytes32 salt)",
	)
)

type (
	CreateResult struct {
		TxHash  common.Hash
		Account common.Address
	}

	Client struct {
		client    *w3.Client
		signer    types.Signer
		key       *ecdsa.PrivateKey
		address   common.Address
		gasFeeCap *big.Int
		gasTipCap *big.Int
	}
)

func NewClient(rpcURL string, chainID int64, privateKey *ecdsa.PrivateKey, gasFeeCap, gasTipCap *big.Int) (*Client, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{
		client:    client,
		signer:    types.NewLondonSigner(big.NewInt(chainID)),
		key:       privateKey,
		address:   crypto.PubkeyToAddress(privateKey.PublicKey),
		gasFeeCap: gasFeeCap,
		gasTipCap: gasTipCap,
	}, nil
}

func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) getNonce(ctx context.Context) (uint64, error) {
	var nonce uint64
	if err := c.client.CallCtx(ctx, eth.Nonce(c.address, nil).Returns(&nonce)); err != nil {
		return 0, fmt.Errorf("get nonce: %w", err)
	}
	return nonce, nil
}

func (c *Client) sendTx(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	signedTx, err := types.SignTx(tx, c.signer, c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	if err := c.client.CallCtx(ctx, eth.SendTx(signedTx).Returns(nil)); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	return signedTx.Hash(), nil
}

// CreateAccount submits createAccount for p against the registry contract.
// The tx reverts on-chain under the same conditions the local registry
// rejects: invalid params, passed deadline or failed initialization.
func (c *Client) CreateAccount(ctx context.Context, registryAddr common.Address, p registry.CreationParams, initData []byte, gasLimit uint64) (common.Hash, error) {
	calldata, err := funcCreateAccount.EncodeArgs(
		p.Implementation, p.ChainID, p.TokenContract, p.TokenID, p.Salt, initData,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode createAccount: %w", err)
	}

	nonce, err := c.getNonce(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		To:        &registryAddr,
		GasFeeCap: c.gasFeeCap,
		GasTipCap: c.gasTipCap,
		Gas:       gasLimit,
		Data:      calldata,
	})

	return c.sendTx(ctx, tx)
}

func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		var receipt *types.Receipt
		err := c.client.CallCtx(ctx, eth.TxReceipt(txHash).Returns(&receipt))
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// AccountFromReceipt scans receipt logs for the AccountCreated event and
// returns the created account's address.
func AccountFromReceipt(receipt *types.Receipt) (common.Address, error) {
	for _, log := range receipt.Logs {
		var (
			acct           common.Address
			implementation common.Address
			chainID        big.Int
			tokenContract  common.Address
			tokenID        big.Int
			salt           common.Hash
		)
		if err := eventAccountCreated.DecodeArgs(log, &acct, &implementation, &chainID, &tokenContract, &tokenID, &salt); err == nil {
			return acct, nil
		}
	}
	return common.Address{}, errors.New("AccountCreated event not found in receipt logs")
}

package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
)

// RPC observes chain state over JSON-RPC. It is read-only: deployments go
// through the on-chain registry contract, not through this adapter.
type RPC struct {
	client *w3.Client
}

func DialRPC(rpcURL string) (*RPC, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &RPC{client: client}, nil
}

func NewRPC(client *w3.Client) *RPC {
	return &RPC{client: client}
}

func (r *RPC) Close() error {
	return r.client.Close()
}

// Client exposes the underlying w3 client for typed contract calls beside
// the ledger interface.
func (r *RPC) Client() *w3.Client {
	return r.client
}

func (r *RPC) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var code []byte
	if err := r.client.CallCtx(ctx, eth.Code(addr, nil).Returns(&code)); err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

func (r *RPC) Call(ctx context.Context, addr common.Address, data []byte) ([]byte, error) {
	msg := &w3types.Message{
		To:    &addr,
		Input: data,
	}
	var output []byte
	if err := r.client.CallCtx(ctx, eth.Call(msg, nil, nil).Returns(&output)); err != nil {
		return nil, fmt.Errorf("call %s: %w", addr.Hex(), err)
	}
	return output, nil
}

func (r *RPC) DeployCode(context.Context, common.Address, []byte) error {
	return ErrReadOnly
}

func (r *RPC) Transact(context.Context, func(Ledger) error) error {
	return ErrReadOnly
}

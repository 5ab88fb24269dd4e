package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = common.HexToAddress("0x00000000000000000000000000000000000000AA")

func TestMemoryDeployAndRead(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	code, err := mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, mem.DeployCode(ctx, testAddr, []byte{0x01, 0x02}))

	code, err = mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, code)
}

func TestMemoryDeployTwice(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.DeployCode(ctx, testAddr, []byte{0x01}))
	err := mem.DeployCode(ctx, testAddr, []byte{0x02})
	assert.ErrorIs(t, err, ErrCodeExists)

	code, err := mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, code)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	deployed := []byte{0x01, 0x02}
	require.NoError(t, mem.DeployCode(ctx, testAddr, deployed))

	// Mutating the caller's slice or the returned slice must not reach the
	// stored code.
	deployed[0] = 0xff
	code, err := mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, code)

	code[1] = 0xff
	code, err = mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, code)
}

func TestMemoryCallHandlers(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	// No handler: call succeeds with empty output.
	out, err := mem.Call(ctx, testAddr, []byte{0x01})
	require.NoError(t, err)
	assert.Empty(t, out)

	mem.SetHandler(testAddr, func(data []byte) ([]byte, error) {
		return append([]byte{0xab}, data...), nil
	})
	out, err = mem.Call(ctx, testAddr, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0x01}, out)

	mem.SetHandler(testAddr, func([]byte) ([]byte, error) {
		return nil, errors.New("revert")
	})
	_, err = mem.Call(ctx, testAddr, nil)
	assert.EqualError(t, err, "revert")
}

func TestMemoryTransactCommit(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	err := mem.Transact(ctx, func(tx Ledger) error {
		return tx.DeployCode(ctx, testAddr, []byte{0x01})
	})
	require.NoError(t, err)

	code, err := mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, code)
}

func TestMemoryTransactRollback(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	other := common.HexToAddress("0x00000000000000000000000000000000000000BB")
	require.NoError(t, mem.DeployCode(ctx, other, []byte{0x0a}))

	boom := errors.New("boom")
	err := mem.Transact(ctx, func(tx Ledger) error {
		if err := tx.DeployCode(ctx, testAddr, []byte{0x01}); err != nil {
			return err
		}
		// Mutation is visible inside the unit before it fails.
		code, err := tx.CodeAt(ctx, testAddr)
		if err != nil {
			return err
		}
		if len(code) == 0 {
			return errors.New("deploy not visible inside transaction")
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	code, err := mem.CodeAt(ctx, testAddr)
	require.NoError(t, err)
	assert.Empty(t, code)

	// Pre-existing state survives the rollback.
	code, err = mem.CodeAt(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a}, code)
}

func TestRPCIsReadOnly(t *testing.T) {
	rpc := &RPC{}
	assert.ErrorIs(t, rpc.DeployCode(context.Background(), testAddr, nil), ErrReadOnly)
	assert.ErrorIs(t, rpc.Transact(context.Background(), nil), ErrReadOnly)
}

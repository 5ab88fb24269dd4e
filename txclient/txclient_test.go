package txclient

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountCreatedLog builds the log the on-chain registry emits: indexed
// implementation, tokenContract and tokenId in topics, the rest ABI-encoded
// in the data segment in declaration order.
func accountCreatedLog(acct, impl, tokenContract common.Address, chainID, tokenID *big.Int, salt common.Hash) *types.Log {
	sig := crypto.Keccak256Hash([]byte("AccountCreated(address,address,uint256,address,uint256,bytes32)"))

	data := make([]byte, 0, 3*common.HashLength)
	data = append(data, common.LeftPadBytes(acct.Bytes(), common.HashLength)...)
	data = append(data, common.BigToHash(chainID).Bytes()...)
	data = append(data, salt.Bytes()...)

	return &types.Log{
		Topics: []common.Hash{
			sig,
			common.BytesToHash(impl.Bytes()),
			common.BytesToHash(tokenContract.Bytes()),
			common.BigToHash(tokenID),
		},
		Data: data,
	}
}

func TestAccountFromReceipt(t *testing.T) {
	acct := common.HexToAddress("0x00000000000000000000000000000000000000E1")
	impl := common.HexToAddress("0x00000000000000000000000000000000000000A1")
	tokenContract := common.HexToAddress("0x00000000000000000000000000000000000000B2")
	salt := common.BigToHash(big.NewInt(7))

	receipt := &types.Receipt{
		Logs: []*types.Log{
			// Unrelated log first; the scan must skip it.
			{Topics: []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))}},
			accountCreatedLog(acct, impl, tokenContract, big.NewInt(1), big.NewInt(42), salt),
		},
	}

	got, err := AccountFromReceipt(receipt)
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

func TestAccountFromReceiptNoEvent(t *testing.T) {
	_, err := AccountFromReceipt(&types.Receipt{})
	assert.Error(t, err)

	receipt := &types.Receipt{
		Logs: []*types.Log{
			{Topics: []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))}},
		},
	}
	_, err = AccountFromReceipt(receipt)
	assert.Error(t, err)
}

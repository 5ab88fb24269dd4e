package skilltoken

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountImplementationEncoding(t *testing.T) {
	calldata, err := funcAccountImplementation.EncodeArgs()
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256([]byte("accountImplementation()"))[:4], calldata)
}

func TestOwnerOfEncoding(t *testing.T) {
	calldata, err := funcOwnerOf.EncodeArgs(big.NewInt(42))
	require.NoError(t, err)
	require.Len(t, calldata, 4+32)
	// Canonical ERC-721 ownerOf selector.
	assert.Equal(t, []byte{0x63, 0x52, 0x21, 0x1e}, calldata[:4])
}

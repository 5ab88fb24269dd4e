package skillaccount

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInitSelector(t *testing.T) {
	calldata, err := EncodeInit([]byte{0xaa, 0xbb})
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("initialize(bytes)"))[:4]
	require.GreaterOrEqual(t, len(calldata), 4)
	assert.Equal(t, selector, calldata[:4])
}

func TestEncodeInitEmpty(t *testing.T) {
	calldata, err := EncodeInit(nil)
	require.NoError(t, err)
	// selector + offset word + zero length word
	assert.Len(t, calldata, 4+32+32)
}

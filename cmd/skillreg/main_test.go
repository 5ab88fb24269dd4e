package main

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSaltDecimal(t *testing.T) {
	salt, err := parseSalt("7")
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(7)), salt)
}

func TestParseSaltHex(t *testing.T) {
	salt, err := parseSalt("0x0000000000000000000000000000000000000000000000000000000000000007")
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(7)), salt)

	// Shorter hex left-pads like a uint256.
	salt, err = parseSalt("0x07")
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(7)), salt)
}

func TestParseSaltRejectsMalformed(t *testing.T) {
	for _, value := range []string{
		"0xzz",    // not hex
		"0x123",   // odd length
		"0x" + "00" + "0000000000000000000000000000000000000000000000000000000000000007", // 33 bytes
		"not-a-number",
		"-7",
	} {
		_, err := parseSalt(value)
		assert.Error(t, err, "value %q", value)
	}
}

func TestBuildInitDataRaw(t *testing.T) {
	data, err := buildInitData(config{InitData: "0xdeadbeef"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)

	data, err = buildInitData(config{})
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestBuildInitDataWrapsInitArgs(t *testing.T) {
	data, err := buildInitData(config{InitArgs: "0xdeadbeef"})
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("initialize(bytes)"))[:4]
	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, selector, data[:4])
	assert.Contains(t, string(data), string([]byte{0xde, 0xad, 0xbe, 0xef}))
}

func TestBuildInitDataMutuallyExclusive(t *testing.T) {
	_, err := buildInitData(config{InitData: "0x01", InitArgs: "0x02"})
	assert.Error(t, err)
}

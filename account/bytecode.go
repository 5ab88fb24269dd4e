// Package account defines the binary layout of a token-bound account's
// deployed code: an ERC-1167 minimal delegating proxy followed by the
// token binding embedded as inert trailing data. The encoder and decoder
// share one offset schema so a round trip is bit-exact.
package account

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Offset schema, version 1. The deployed code is:
//
//	prologue(10) | implementation(20) | epilogue(15) |
//	chainId(32) | tokenContract(32, left-padded) | tokenId(32) | salt(32)
//
// The prologue and epilogue are the canonical minimal-proxy runtime; the
// trailing words are never executed and are only reachable by reading the
// code back.
const (
	prologueSize = 10
	implSize     = 20
	epilogueSize = 15
	wordSize     = 32

	implOffset          = prologueSize
	epilogueOffset      = implOffset + implSize
	chainIDOffset       = epilogueOffset + epilogueSize
	tokenContractOffset = chainIDOffset + wordSize
	tokenIDOffset       = tokenContractOffset + wordSize
	saltOffset          = tokenIDOffset + wordSize

	// CodeSize is the exact length of any account deployed by the registry.
	CodeSize = saltOffset + wordSize
)

var (
	proxyPrologue = common.FromHex("0x363d3d373d3d3d363d73")
	proxyEpilogue = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// ErrNotAccountCode is returned by Decode when the inspected code does not
// carry the registry's layout (wrong length or foreign proxy template).
var ErrNotAccountCode = errors.New("code does not match account layout")

// Metadata is the token binding recovered from an account's deployed code.
type Metadata struct {
	Implementation common.Address
	ChainID        *big.Int
	TokenContract  common.Address
	TokenID        *big.Int
	Salt           common.Hash
}

// BuildCode assembles the deployable byte sequence for an account bound to
// the given token. It is a pure function: the predict and create paths both
// call it and must agree byte for byte.
func BuildCode(implementation common.Address, chainID *big.Int, tokenContract common.Address, tokenID *big.Int, salt common.Hash) []byte {
	code := make([]byte, 0, CodeSize)
	code = append(code, proxyPrologue...)
	code = append(code, implementation.Bytes()...)
	code = append(code, proxyEpilogue...)
	code = append(code, common.BigToHash(chainID).Bytes()...)
	code = append(code, common.LeftPadBytes(tokenContract.Bytes(), wordSize)...)
	code = append(code, common.BigToHash(tokenID).Bytes()...)
	code = append(code, salt.Bytes()...)
	return code
}

// Decode recovers the token binding from deployed code. The layout is
// validated in full before any field is extracted, so foreign or truncated
// code yields ErrNotAccountCode rather than garbage metadata.
func Decode(code []byte) (Metadata, error) {
	if len(code) != CodeSize {
		return Metadata{}, fmt.Errorf("%w: length %d, want %d", ErrNotAccountCode, len(code), CodeSize)
	}
	if !bytes.Equal(code[:prologueSize], proxyPrologue) {
		return Metadata{}, fmt.Errorf("%w: prologue mismatch", ErrNotAccountCode)
	}
	if !bytes.Equal(code[epilogueOffset:chainIDOffset], proxyEpilogue) {
		return Metadata{}, fmt.Errorf("%w: epilogue mismatch", ErrNotAccountCode)
	}
	return Metadata{
		Implementation: common.BytesToAddress(code[implOffset:epilogueOffset]),
		ChainID:        new(big.Int).SetBytes(code[chainIDOffset:tokenContractOffset]),
		TokenContract:  common.BytesToAddress(code[tokenContractOffset:tokenIDOffset]),
		TokenID:        new(big.Int).SetBytes(code[tokenIDOffset:saltOffset]),
		Salt:           common.BytesToHash(code[saltOffset:]),
	}, nil
}

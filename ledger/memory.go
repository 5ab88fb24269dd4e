package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// CallHandler programs the behaviour of a contract hosted by the in-memory
// ledger. Returning an error makes the call revert.
type CallHandler func(data []byte) ([]byte, error)

// Memory is a deterministic in-memory Ledger. Transactions snapshot the
// code map and restore it when the unit fails, mirroring the rollback
// semantics the registry relies on.
type Memory struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	code     map[common.Address][]byte
	handlers map[common.Address]CallHandler
}

func NewMemory() *Memory {
	return &Memory{
		code:     make(map[common.Address][]byte),
		handlers: make(map[common.Address]CallHandler),
	}
}

// SetHandler installs the call behaviour for addr. Calls to an address
// without a handler succeed with empty output.
func (m *Memory) SetHandler(addr common.Address, h CallHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[addr] = h
}

func (m *Memory) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := m.code[addr]
	out := make([]byte, len(code))
	copy(out, code)
	return out, nil
}

func (m *Memory) DeployCode(_ context.Context, addr common.Address, code []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.code[addr]) > 0 {
		return fmt.Errorf("%w: %s", ErrCodeExists, addr.Hex())
	}
	stored := make([]byte, len(code))
	copy(stored, code)
	m.code[addr] = stored
	return nil
}

func (m *Memory) Call(_ context.Context, addr common.Address, data []byte) ([]byte, error) {
	m.mu.Lock()
	h := m.handlers[addr]
	m.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(data)
}

// Transact snapshots the code map, runs fn against the ledger itself and
// restores the snapshot when fn fails. Transactions are serialized; the
// execution model has no interleaving inside a unit.
func (m *Memory) Transact(_ context.Context, fn func(Ledger) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *Memory) snapshot() map[common.Address][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[common.Address][]byte, len(m.code))
	for addr, code := range m.code {
		snap[addr] = code
	}
	return snap
}

func (m *Memory) restore(snap map[common.Address][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = snap
}

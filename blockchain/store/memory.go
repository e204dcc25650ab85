package store

import (
	"errors"
	"sync"

	"verichain/blockchain"
)

type MemoryLedgerStore struct {
	chain            blockchain.Chain
	openTransactions []blockchain.Transaction
	balances         map[string]uint64
	mu               sync.RWMutex
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		chain:            make(blockchain.Chain, 0),
		openTransactions: make([]blockchain.Transaction, 0),
		balances:         make(map[string]uint64),
	}
}

func (m *MemoryLedgerStore) AddBlock(block *blockchain.Block) error {
	if block == nil {
		return errors.New("block is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Just append the block to the chain - verification should be done by caller
	m.chain = append(m.chain, block)
	return nil
}

func (m *MemoryLedgerStore) AddOpenTransaction(tx blockchain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openTransactions = append(m.openTransactions, tx)
}

func (m *MemoryLedgerStore) SetBalance(sender string, balance uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[sender] = balance
}

// Balance returns the snapshot balance of sender, zero if unknown.
// It satisfies blockchain.BalanceFunc.
func (m *MemoryLedgerStore) Balance(sender string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[sender]
}

// RecomputeBalances replaces the balance snapshot with balances derived from
// the stored chain and open transactions
func (m *MemoryLedgerStore) RecomputeBalances() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances = BalancesFromChain(m.chain, m.openTransactions)
}

func (m *MemoryLedgerStore) GetHeadBlock() (*blockchain.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Not returning an err as nil checks on this is valid
	if len(m.chain) < 1 {
		return nil, nil
	}

	return m.chain[len(m.chain)-1], nil
}

// GetChain returns a copy of the block list; blocks themselves are shared and must not be mutated
func (m *MemoryLedgerStore) GetChain() (blockchain.Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := make(blockchain.Chain, len(m.chain))
	copy(chain, m.chain)
	return chain, nil
}

func (m *MemoryLedgerStore) GetOpenTransactions() []blockchain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]blockchain.Transaction, len(m.openTransactions))
	copy(txs, m.openTransactions)
	return txs
}

func (m *MemoryLedgerStore) GetChainHeight() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.chain)), nil
}

var _ LedgerStore = (*MemoryLedgerStore)(nil)

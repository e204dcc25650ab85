package store

import (
	"verichain/blockchain"
)

// LedgerStore holds a chain and the balance snapshot used to verify transactions against it
type LedgerStore interface {

	// Update/Add/Put
	AddBlock(block *blockchain.Block) error
	SetBalance(sender string, balance uint64)
	AddOpenTransaction(tx blockchain.Transaction)

	// Getters
	GetHeadBlock() (*blockchain.Block, error)
	GetChain() (blockchain.Chain, error)
	GetChainHeight() (uint64, error)
	GetOpenTransactions() []blockchain.Transaction
	Balance(sender string) uint64
}

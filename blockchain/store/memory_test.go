package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verichain/blockchain"
)

func TestMemoryLedgerStore(t *testing.T) {
	store := NewMemoryLedgerStore()
	genesis := blockchain.NewGenesisBlock()

	// Test initial state
	t.Run("initial state", func(t *testing.T) {
		height, err := store.GetChainHeight()
		require.NoError(t, err)
		assert.Equal(t, uint64(0), height)

		head, err := store.GetHeadBlock()
		require.NoError(t, err)
		assert.Nil(t, head)
		assert.Zero(t, store.Balance("anyone"))
	})

	t.Run("add genesis block", func(t *testing.T) {
		require.NoError(t, store.AddBlock(genesis))

		height, err := store.GetChainHeight()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), height)

		head, err := store.GetHeadBlock()
		require.NoError(t, err)
		assert.Same(t, genesis, head)
	})

	t.Run("reject nil block", func(t *testing.T) {
		assert.Error(t, store.AddBlock(nil))
	})

	t.Run("chain is a copy", func(t *testing.T) {
		chain, err := store.GetChain()
		require.NoError(t, err)
		require.Len(t, chain, 1)

		chain[0] = nil
		again, err := store.GetChain()
		require.NoError(t, err)
		assert.Same(t, genesis, again[0])
	})

	t.Run("balances", func(t *testing.T) {
		store.SetBalance("alice", 30)
		assert.Equal(t, uint64(30), store.Balance("alice"))

		var lookup blockchain.BalanceFunc = store.Balance
		assert.Equal(t, uint64(30), lookup("alice"))
	})

	t.Run("open transactions", func(t *testing.T) {
		store.AddOpenTransaction(blockchain.Transaction{Sender: "alice", Recipient: "bob", Amount: 5})
		open := store.GetOpenTransactions()
		require.Len(t, open, 1)

		open[0].Amount = 99
		assert.Equal(t, uint64(5), store.GetOpenTransactions()[0].Amount)
	})
}

func TestRecomputeBalances(t *testing.T) {
	store := NewMemoryLedgerStore()
	require.NoError(t, store.AddBlock(&blockchain.Block{
		PreviousHash: blockchain.GenesisHash,
		Transactions: []blockchain.Transaction{
			{Sender: "MINING", Recipient: "alice", Amount: 10},
		},
	}))
	store.AddOpenTransaction(blockchain.Transaction{Sender: "alice", Recipient: "bob", Amount: 4})
	store.SetBalance("alice", 1000)

	store.RecomputeBalances()
	assert.Equal(t, uint64(6), store.Balance("alice"))
	assert.Zero(t, store.Balance("bob"), "open transactions are not received yet")
}

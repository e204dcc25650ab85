package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name      string
		sender    string
		recipient string
		wantErr   bool
	}{
		{name: "valid", sender: "alice", recipient: "bob"},
		{name: "missing sender", recipient: "bob", wantErr: true},
		{name: "missing recipient", sender: "alice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewTransaction(tt.sender, tt.recipient, 10)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransaction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(10), tx.Amount)
			assert.Nil(t, tx.Signature)
		})
	}
}

func TestCanonicalExcludesSignature(t *testing.T) {
	tx := Transaction{Sender: "alice", Recipient: "bob", Amount: 3, Signature: Signature{0x01}}
	assert.Equal(t, `{"sender":"alice","recipient":"bob","amount":3}`, string(tx.Canonical()))
	assert.Equal(t, OrderedTransaction{Sender: "alice", Recipient: "bob", Amount: 3}, tx.OrderedFields())
}

func TestNewBlock(t *testing.T) {
	txs := []Transaction{{Sender: "alice", Recipient: "bob", Amount: 1}}

	block, err := NewBlock(1, "abc", 5, txs, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Index)
	assert.Equal(t, uint64(42), block.Proof)

	// Caller's slice is not shared
	txs[0].Amount = 100
	assert.Equal(t, uint64(1), block.Transactions[0].Amount)

	_, err = NewBlock(1, "", 5, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidBlock)

	_, err = NewBlock(1, "abc", 5, []Transaction{{Recipient: "bob"}}, 0)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestProofTransactions(t *testing.T) {
	reward := Transaction{Sender: "MINING", Recipient: "alice", Amount: 10}
	payment := Transaction{Sender: "alice", Recipient: "bob", Amount: 1}

	tests := []struct {
		name string
		txs  []Transaction
		want []Transaction
	}{
		{name: "no transactions", txs: nil, want: []Transaction{}},
		{name: "reward only", txs: []Transaction{reward}, want: []Transaction{}},
		{name: "payment and reward", txs: []Transaction{payment, reward}, want: []Transaction{payment}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Block{Transactions: tt.txs}
			assert.Equal(t, tt.want, block.ProofTransactions())
		})
	}
}

func TestNewGenesisBlock(t *testing.T) {
	genesis := NewGenesisBlock()
	assert.Equal(t, GenesisHash, genesis.PreviousHash)
	assert.Empty(t, genesis.Transactions)
	assert.Equal(t, HashBlock(genesis), HashBlock(NewGenesisBlock()))
}

package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"verichain/blockchain"
)

func TestBalancesFromChain(t *testing.T) {
	chain := blockchain.Chain{
		blockchain.NewGenesisBlock(),
		{
			Index: 1,
			Transactions: []blockchain.Transaction{
				{Sender: "MINING", Recipient: "alice", Amount: 10},
			},
		},
		{
			Index: 2,
			Transactions: []blockchain.Transaction{
				{Sender: "alice", Recipient: "bob", Amount: 3},
				{Sender: "MINING", Recipient: "alice", Amount: 10},
			},
		},
	}

	tests := []struct {
		name string
		open []blockchain.Transaction
		want map[string]uint64
	}{
		{
			name: "confirmed only",
			want: map[string]uint64{"alice": 17, "bob": 3, "MINING": 0},
		},
		{
			name: "open transactions count as spent",
			open: []blockchain.Transaction{{Sender: "bob", Recipient: "carol", Amount: 2}},
			want: map[string]uint64{"alice": 17, "bob": 1, "MINING": 0},
		},
		{
			name: "overspent participant has zero",
			open: []blockchain.Transaction{{Sender: "bob", Recipient: "carol", Amount: 50}},
			want: map[string]uint64{"alice": 17, "bob": 0, "MINING": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalancesFromChain(chain, tt.open)
			assert.Equal(t, tt.want, got)

			lookup := BalanceLookup(got)
			assert.Equal(t, tt.want["alice"], lookup("alice"))
			assert.Zero(t, lookup("nobody"))
		})
	}
}

func TestBalancesFromEmptyChain(t *testing.T) {
	assert.Empty(t, BalancesFromChain(nil, nil))
}

func TestBalancesFromChainSaturates(t *testing.T) {
	chain := blockchain.Chain{
		{Transactions: []blockchain.Transaction{
			{Sender: "MINING", Recipient: "alice", Amount: math.MaxUint64},
			{Sender: "MINING", Recipient: "alice", Amount: 2},
			{Sender: "alice", Recipient: "bob", Amount: math.MaxUint64 - 1},
			{Sender: "alice", Recipient: "bob", Amount: math.MaxUint64 - 1},
		}},
	}

	tests := []struct {
		name string
		open []blockchain.Transaction
		want map[string]uint64
	}{
		{
			name: "received and sent both saturate",
			want: map[string]uint64{"alice": 0, "bob": math.MaxUint64, "MINING": 0},
		},
		{
			name: "open transactions cannot wrap a spent total",
			open: []blockchain.Transaction{{Sender: "bob", Recipient: "carol", Amount: 3}},
			want: map[string]uint64{"alice": 0, "bob": math.MaxUint64 - 3, "MINING": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BalancesFromChain(chain, tt.open))
		})
	}
}

func TestAddSaturating(t *testing.T) {
	assert.Equal(t, uint64(5), addSaturating(2, 3))
	assert.Equal(t, uint64(math.MaxUint64), addSaturating(math.MaxUint64, 1))
	assert.Equal(t, uint64(math.MaxUint64), addSaturating(math.MaxUint64-1, 1))
}

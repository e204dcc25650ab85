package store

import (
	"math"
	"math/bits"

	"verichain/blockchain"
)

// BalancesFromChain derives every participant's balance from confirmed blocks.
// Amounts already pledged in open transactions count as spent. A participant
// that sent more than it received has balance zero. Totals saturate at
// math.MaxUint64 instead of wrapping.
func BalancesFromChain(chain blockchain.Chain, openTransactions []blockchain.Transaction) map[string]uint64 {
	received := make(map[string]uint64)
	sent := make(map[string]uint64)

	for _, block := range chain {
		for _, tx := range block.Transactions {
			received[tx.Recipient] = addSaturating(received[tx.Recipient], tx.Amount)
			sent[tx.Sender] = addSaturating(sent[tx.Sender], tx.Amount)
		}
	}
	for _, tx := range openTransactions {
		sent[tx.Sender] = addSaturating(sent[tx.Sender], tx.Amount)
	}

	balances := make(map[string]uint64, len(received)+len(sent))
	for participant, in := range received {
		balances[participant] = 0
		if out := sent[participant]; in > out {
			balances[participant] = in - out
		}
	}
	for participant := range sent {
		if _, ok := balances[participant]; !ok {
			balances[participant] = 0
		}
	}
	return balances
}

func addSaturating(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// BalanceLookup returns a blockchain.BalanceFunc over a fixed balance snapshot
func BalanceLookup(balances map[string]uint64) blockchain.BalanceFunc {
	return func(sender string) uint64 {
		return balances[sender]
	}
}

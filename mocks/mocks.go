package mocks

import (
	"sync"

	"verichain/blockchain"
)

// FixedBalances returns a balance lookup over a fixed map
func FixedBalances(balances map[string]uint64) blockchain.BalanceFunc {
	return func(sender string) uint64 {
		return balances[sender]
	}
}

// PanicBalance fails the test process if a balance is looked up
func PanicBalance(sender string) uint64 {
	panic("balance lookup not expected for " + sender)
}

// AcceptAll accepts every signature
var AcceptAll = blockchain.SignatureVerifierFunc(func(*blockchain.Transaction) bool { return true })

// RejectAll rejects every signature
var RejectAll = blockchain.SignatureVerifierFunc(func(*blockchain.Transaction) bool { return false })

// SignatureSet accepts signatures only from the listed senders
type SignatureSet map[string]bool

func (s SignatureSet) VerifyTransaction(tx *blockchain.Transaction) bool {
	return s[tx.Sender]
}

// RecordingVerifier accepts every signature and records the senders it saw
type RecordingVerifier struct {
	mu      sync.Mutex
	Senders []string
}

func (r *RecordingVerifier) VerifyTransaction(tx *blockchain.Transaction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Senders = append(r.Senders, tx.Sender)
	return true
}

func (r *RecordingVerifier) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Senders)
}

// PanicAfterHasher hashes normally until it is asked for a block with index
// at or above limit, then panics
func PanicAfterHasher(limit uint64) blockchain.BlockHasher {
	return func(block *blockchain.Block) string {
		if block.Index >= limit {
			panic("block hash not expected")
		}
		return blockchain.HashBlock(block)
	}
}

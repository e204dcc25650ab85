package blockchain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"

	sha256 "github.com/minio/sha256-simd"
)

// hashableBlock is the block layout hashed for chain linkage
type hashableBlock struct {
	Index        uint64               `json:"index"`
	PreviousHash string               `json:"previous_hash"`
	Proof        uint64               `json:"proof"`
	Timestamp    int64                `json:"timestamp"`
	Transactions []OrderedTransaction `json:"transactions"`
}

func mustMarshal(v any) []byte {
	// Only called with structs of strings and integers, which always encode
	b, err := json.Marshal(v)
	if err != nil {
		panic("blockchain: canonical encoding failed: " + err.Error())
	}
	return b
}

func orderedTransactions(transactions []Transaction) []OrderedTransaction {
	ordered := make([]OrderedTransaction, len(transactions))
	for i := range transactions {
		ordered[i] = transactions[i].OrderedFields()
	}
	return ordered
}

// HashString256 returns the hex encoded SHA-256 digest of data
func HashString256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashBlock returns the identity hash of a block used for previous hash linkage.
// It is unrelated to the proof-of-work guess hash.
func HashBlock(block *Block) string {
	return HashString256(mustMarshal(hashableBlock{
		Index:        block.Index,
		PreviousHash: block.PreviousHash,
		Proof:        block.Proof,
		Timestamp:    block.Timestamp,
		Transactions: orderedTransactions(block.Transactions),
	}))
}

// GuessString builds the proof-of-work input: the ordered transactions,
// followed by the last hash and the decimal proof.
func GuessString(transactions []Transaction, lastHash string, proof uint64) []byte {
	var buf bytes.Buffer
	buf.Write(mustMarshal(orderedTransactions(transactions)))
	buf.WriteString(lastHash)
	buf.WriteString(strconv.FormatUint(proof, 10))
	return buf.Bytes()
}

// signingDigest is the message signed by wallets
func signingDigest(tx *Transaction) []byte {
	sum := sha256.Sum256(tx.Canonical())
	return sum[:]
}

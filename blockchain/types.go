package blockchain

import (
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// DefaultDifficultyPrefix is the hex prefix a proof-of-work guess hash must start with
	DefaultDifficultyPrefix = "1010"

	// GenesisHash is the previous hash stored in the genesis block
	GenesisHash = "genesis"
)

var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBlock       = errors.New("invalid block")
)

type Transaction struct {
	Sender    string    `json:"sender" mapstructure:"sender"`
	Recipient string    `json:"recipient" mapstructure:"recipient"`
	Amount    uint64    `json:"amount" mapstructure:"amount"`
	Signature Signature `json:"signature,omitempty" mapstructure:"signature"`
}

// Signature is an opaque signature, hex encoded in documents
type Signature []byte

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(s)), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	*s = b
	return nil
}

// OrderedTransaction is the canonical field ordering used for hashing and signing.
// Field declaration order is the serialization order.
type OrderedTransaction struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type Block struct {
	Index        uint64        `json:"index" mapstructure:"index"`
	PreviousHash string        `json:"previous_hash" mapstructure:"previous_hash"`
	Timestamp    int64         `json:"timestamp" mapstructure:"timestamp"`
	Transactions []Transaction `json:"transactions" mapstructure:"transactions"`
	Proof        uint64        `json:"proof" mapstructure:"proof"`
}

// Chain is an ordered sequence of blocks, index 0 is genesis
type Chain []*Block

// BalanceFunc returns the current balance of a sender
type BalanceFunc func(sender string) uint64

// BlockHasher computes the identity hash of a block
type BlockHasher func(block *Block) string

// SignatureVerifier reports whether a transaction carries a valid signature from its sender
type SignatureVerifier interface {
	VerifyTransaction(tx *Transaction) bool
}

// SignatureVerifierFunc adapts a plain function to SignatureVerifier
type SignatureVerifierFunc func(tx *Transaction) bool

func (f SignatureVerifierFunc) VerifyTransaction(tx *Transaction) bool {
	return f(tx)
}

// NewTransaction creates an unsigned transaction
func NewTransaction(sender, recipient string, amount uint64) (Transaction, error) {
	if sender == "" {
		return Transaction{}, fmt.Errorf("missing sender: %w", ErrInvalidTransaction)
	}
	if recipient == "" {
		return Transaction{}, fmt.Errorf("missing recipient: %w", ErrInvalidTransaction)
	}
	return Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}, nil
}

// OrderedFields returns the canonical representation of the transaction. The signature is excluded.
func (tx *Transaction) OrderedFields() OrderedTransaction {
	return OrderedTransaction{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
	}
}

// Canonical returns the serialized ordered fields
func (tx *Transaction) Canonical() []byte {
	return mustMarshal(tx.OrderedFields())
}

// NewBlock creates a block on top of the block with hash previousHash
func NewBlock(index uint64, previousHash string, timestamp int64, transactions []Transaction, proof uint64) (*Block, error) {
	if previousHash == "" {
		return nil, fmt.Errorf("missing previous hash: %w", ErrInvalidBlock)
	}
	for i := range transactions {
		if transactions[i].Sender == "" || transactions[i].Recipient == "" {
			return nil, fmt.Errorf("transaction %d: %w", i, ErrInvalidTransaction)
		}
	}

	txs := make([]Transaction, len(transactions))
	copy(txs, transactions)

	return &Block{
		Index:        index,
		PreviousHash: previousHash,
		Timestamp:    timestamp,
		Transactions: txs,
		Proof:        proof,
	}, nil
}

// NewGenesisBlock returns the first block of a chain. It carries no transactions.
func NewGenesisBlock() *Block {
	return &Block{
		Index:        0,
		PreviousHash: GenesisHash,
		Timestamp:    0,
		Transactions: []Transaction{},
		Proof:        100,
	}
}

// ProofTransactions returns the transactions covered by the proof of work,
// which excludes the trailing reward transaction.
func (b *Block) ProofTransactions() []Transaction {
	if len(b.Transactions) == 0 {
		return []Transaction{}
	}
	return b.Transactions[:len(b.Transactions)-1]
}

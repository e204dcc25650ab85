package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"

	"verichain/blockchain"
)

// Document is the on-disk exchange format for a chain, its open transactions
// and an optional balance snapshot
type Document struct {
	Chain            blockchain.Chain         `json:"chain" mapstructure:"chain"`
	OpenTransactions []blockchain.Transaction `json:"open_transactions" mapstructure:"open_transactions"`
	Balances         map[string]uint64        `json:"balances,omitempty" mapstructure:"balances"`
}

// ReadDocument decodes a JSON document. Numbers are kept exact and
// signatures are read from hex strings.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to parse document: unexpected data after the top-level object")
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	for i, block := range doc.Chain {
		if block == nil {
			return nil, fmt.Errorf("block %d is null: %w", i, blockchain.ErrInvalidBlock)
		}
		if block.PreviousHash == "" {
			return nil, fmt.Errorf("block %d has no previous hash: %w", i, blockchain.ErrInvalidBlock)
		}
		for j, tx := range block.Transactions {
			if tx.Sender == "" || tx.Recipient == "" {
				return nil, fmt.Errorf("block %d transaction %d: %w", i, j, blockchain.ErrInvalidTransaction)
			}
		}
	}
	for i, tx := range doc.OpenTransactions {
		if tx.Sender == "" || tx.Recipient == "" {
			return nil, fmt.Errorf("open transaction %d: %w", i, blockchain.ErrInvalidTransaction)
		}
	}

	return &doc, nil
}

// LoadDocument reads a document from path
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocument encodes doc as indented JSON
func WriteDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Store loads the document into a memory store. Without an explicit balance
// snapshot, balances are derived from the chain and open transactions.
func (d *Document) Store() (*MemoryLedgerStore, error) {
	s := NewMemoryLedgerStore()
	for _, block := range d.Chain {
		if err := s.AddBlock(block); err != nil {
			return nil, err
		}
	}
	for _, tx := range d.OpenTransactions {
		s.AddOpenTransaction(tx)
	}
	if d.Balances == nil {
		s.RecomputeBalances()
		return s, nil
	}
	for sender, balance := range d.Balances {
		s.SetBalance(sender, balance)
	}
	return s, nil
}

// PendingBalance returns the balances open transaction i is checked against.
// An explicit snapshot is used as is. Otherwise balances are derived from the
// chain with every other open transaction counted as spent, so the
// transaction under test is never deducted from its own sender.
func (d *Document) PendingBalance(i int) blockchain.BalanceFunc {
	if d.Balances != nil {
		return BalanceLookup(d.Balances)
	}

	others := make([]blockchain.Transaction, 0, len(d.OpenTransactions))
	for j, tx := range d.OpenTransactions {
		if j != i {
			others = append(others, tx)
		}
	}
	return BalanceLookup(BalancesFromChain(d.Chain, others))
}

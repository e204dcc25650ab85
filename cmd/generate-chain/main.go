package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"verichain/blockchain"
	"verichain/blockchain/store"
	fixtures "verichain/testing"
)

func main() {
	output := flag.String("o", "testdata/chain.json", "output document path")
	blocks := flag.Int("blocks", 4, "number of blocks including genesis")
	prefix := flag.String("prefix", blockchain.DefaultDifficultyPrefix, "difficulty prefix to mine against")
	flag.Parse()

	if *blocks < 1 {
		log.Fatal("Chain needs at least the genesis block")
	}

	verifier, err := blockchain.NewVerifier(blockchain.WithDifficultyPrefix(*prefix))
	if err != nil {
		log.Fatal("Invalid -prefix: ", err)
	}

	fmt.Println("Generating sample chain document with real proofs...")
	chain := fixtures.BuildChain(verifier, *blocks)

	// One affordable and one unaffordable open transaction from the first user
	firstUser := fixtures.GetFirstUserTestAccount()
	payee := fixtures.DeterministicAccount(2)
	doc := &store.Document{
		Chain: chain,
		OpenTransactions: []blockchain.Transaction{
			fixtures.GenerateValidTransaction(firstUser, payee.Address(), 5),
			fixtures.GenerateValidTransaction(firstUser, payee.Address(), 1_000_000),
		},
	}
	doc.Balances = store.BalancesFromChain(doc.Chain, nil)

	if err := writeDocument(*output, doc); err != nil {
		log.Fatal("Failed to write document:", err)
	}

	fmt.Printf("Generated: %s (%d blocks, tip %s)\n", *output, len(chain), blockchain.HashBlock(chain[len(chain)-1]))
	fmt.Println("Usage:")
	fmt.Printf("  go run ./cmd/verichain chain %s\n", *output)
	fmt.Printf("  go run ./cmd/verichain tx %s\n", *output)
}

func writeDocument(filename string, doc *store.Document) error {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := store.WriteDocument(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

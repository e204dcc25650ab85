package testing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"verichain/blockchain"
)

// RewardSender is the sender of mining reward transactions
const RewardSender = "MINING"

// TestAccount holds a complete key pair for testing
type TestAccount struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Address returns the sender identity of the account
func (a TestAccount) Address() string {
	return blockchain.Ed25519Address(a.PublicKey)
}

// GetFirstUserTestAccount creates the account used as the initial coin holder (testing only!)
func GetFirstUserTestAccount() TestAccount {
	seed := [32]byte{
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00, 0x11,
		0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99,
	}
	return accountFromSeed(seed[:])
}

// DeterministicAccount returns the same key pair for the same index
func DeterministicAccount(index uint64) TestAccount {
	seed := make([]byte, ed25519.SeedSize)
	copy(seed, "verichain-test-account")
	binary.BigEndian.PutUint64(seed[ed25519.SeedSize-8:], index)
	return accountFromSeed(seed)
}

func accountFromSeed(seed []byte) TestAccount {
	privateKey := ed25519.NewKeyFromSeed(seed)
	return TestAccount{
		PrivateKey: privateKey,
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
	}
}

// RandomAccounts returns count fresh ed25519 accounts with distinct addresses
func RandomAccounts(count int) ([]TestAccount, error) {
	accounts := make([]TestAccount, 0, count)
	for len(accounts) < count {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account %d: %w", len(accounts), err)
		}
		accounts = append(accounts, TestAccount{PrivateKey: priv, PublicKey: pub})
	}
	return accounts, nil
}

// MustVerifier builds a verifier from opts and panics on an invalid option (testing only!)
func MustVerifier(opts ...blockchain.Option) *blockchain.Verifier {
	v, err := blockchain.NewVerifier(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// GenerateValidTransaction creates a properly signed transaction
func GenerateValidTransaction(from TestAccount, to string, amount uint64) blockchain.Transaction {
	tx := blockchain.Transaction{
		Sender:    from.Address(),
		Recipient: to,
		Amount:    amount,
	}
	blockchain.SignEd25519(&tx, from.PrivateKey)
	return tx
}

// GenerateSecp256k1Transaction creates a transaction signed with a fresh secp256k1 key
func GenerateSecp256k1Transaction(to string, amount uint64) (blockchain.Transaction, *btcec.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return blockchain.Transaction{}, nil, fmt.Errorf("failed to generate key: %w", err)
	}
	tx := blockchain.Transaction{
		Sender:    blockchain.Secp256k1Address(priv.PubKey()),
		Recipient: to,
		Amount:    amount,
	}
	blockchain.SignSecp256k1(&tx, priv)
	return tx, priv, nil
}

// GenerateRewardTransaction creates an unsigned mining reward
func GenerateRewardTransaction(to string, amount uint64) blockchain.Transaction {
	return blockchain.Transaction{
		Sender:    RewardSender,
		Recipient: to,
		Amount:    amount,
	}
}

// MineProof searches for the smallest proof accepted by v
func MineProof(v *blockchain.Verifier, transactions []blockchain.Transaction, lastHash string) uint64 {
	var proof uint64
	for !v.ValidProof(transactions, lastHash, proof) {
		proof++
	}
	return proof
}

// FindInvalidProof returns the smallest proof rejected by v
func FindInvalidProof(v *blockchain.Verifier, transactions []blockchain.Transaction, lastHash string) uint64 {
	var proof uint64
	for v.ValidProof(transactions, lastHash, proof) {
		proof++
	}
	return proof
}

// MineBlock builds a block on top of prev. The reward goes to miner and is
// appended after the given transactions.
func MineBlock(v *blockchain.Verifier, prev *blockchain.Block, transactions []blockchain.Transaction, miner string) *blockchain.Block {
	lastHash := blockchain.HashBlock(prev)
	proof := MineProof(v, transactions, lastHash)

	txs := make([]blockchain.Transaction, 0, len(transactions)+1)
	txs = append(txs, transactions...)
	txs = append(txs, GenerateRewardTransaction(miner, 10))

	block, err := blockchain.NewBlock(prev.Index+1, lastHash, prev.Timestamp+1, txs, proof)
	if err != nil {
		panic("Failed to build block: " + err.Error())
	}
	return block
}

// BuildChain creates a valid chain of length blocks including genesis. The
// first user mines the first block and pays a second account afterwards.
func BuildChain(v *blockchain.Verifier, length int) blockchain.Chain {
	if length < 1 {
		return blockchain.Chain{}
	}

	miner := GetFirstUserTestAccount()
	payee := DeterministicAccount(1)

	chain := blockchain.Chain{blockchain.NewGenesisBlock()}
	for i := 1; i < length; i++ {
		var txs []blockchain.Transaction
		if i > 1 {
			txs = append(txs, GenerateValidTransaction(miner, payee.Address(), uint64(i)))
		}
		chain = append(chain, MineBlock(v, chain[i-1], txs, miner.Address()))
	}
	return chain
}

package blockchain_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verichain/blockchain"
	fixtures "verichain/testing"
)

func TestEd25519Verifier(t *testing.T) {
	account := fixtures.GetFirstUserTestAccount()
	other := fixtures.DeterministicAccount(3)
	tx := fixtures.GenerateValidTransaction(account, other.Address(), 42)

	wrongSender := tx
	wrongSender.Sender = other.Address()

	badSig := tx
	badSig.Signature = append(blockchain.Signature(nil), tx.Signature...)
	badSig.Signature[0] ^= 0xff

	tests := []struct {
		name string
		tx   blockchain.Transaction
		want bool
	}{
		{name: "valid signature", tx: tx, want: true},
		{name: "signed by someone else", tx: wrongSender, want: false},
		{name: "corrupted signature", tx: badSig, want: false},
		{name: "missing signature", tx: blockchain.Transaction{Sender: account.Address(), Recipient: "x", Amount: 1}, want: false},
		{name: "sender is not a key", tx: blockchain.Transaction{Sender: "alice", Recipient: "x", Amount: 1, Signature: tx.Signature}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blockchain.Ed25519Verifier{}.VerifyTransaction(&tt.tx))
		})
	}
}

func TestSecp256k1Verifier(t *testing.T) {
	tx, _, err := fixtures.GenerateSecp256k1Transaction("bob", 9)
	require.NoError(t, err)

	assert.True(t, blockchain.Secp256k1Verifier{}.VerifyTransaction(&tx))
	assert.False(t, blockchain.Ed25519Verifier{}.VerifyTransaction(&tx))

	tampered := tx
	tampered.Amount = 10
	assert.False(t, blockchain.Secp256k1Verifier{}.VerifyTransaction(&tampered))

	other, _, err := fixtures.GenerateSecp256k1Transaction("bob", 9)
	require.NoError(t, err)
	swapped := tx
	swapped.Signature = other.Signature
	assert.False(t, blockchain.Secp256k1Verifier{}.VerifyTransaction(&swapped))

	unsigned := blockchain.Transaction{Sender: tx.Sender, Recipient: "bob", Amount: 9}
	assert.False(t, blockchain.Secp256k1Verifier{}.VerifyTransaction(&unsigned))
}

func TestSchemeVerifier(t *testing.T) {
	sv, err := blockchain.SchemeVerifier(blockchain.SchemeEd25519)
	require.NoError(t, err)
	assert.IsType(t, blockchain.Ed25519Verifier{}, sv)

	sv, err = blockchain.SchemeVerifier(blockchain.SchemeSecp256k1)
	require.NoError(t, err)
	assert.IsType(t, blockchain.Secp256k1Verifier{}, sv)

	_, err = blockchain.SchemeVerifier("rsa")
	assert.ErrorIs(t, err, blockchain.ErrUnknownScheme)
}

func TestSignatureText(t *testing.T) {
	sig := blockchain.Signature{0xde, 0xad, 0xbe, 0xef}
	text, err := sig.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", string(text))

	var decoded blockchain.Signature
	require.NoError(t, decoded.UnmarshalText([]byte("deadbeef")))
	assert.Equal(t, sig, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("zz")))
	assert.Equal(t, hex.EncodeToString(sig), string(text))
}

package blockchain

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	SchemeEd25519   = "ed25519"
	SchemeSecp256k1 = "secp256k1"
)

var ErrUnknownScheme = errors.New("unknown signature scheme")

// Ed25519Verifier checks signatures where the sender is the hex encoded ed25519 public key
type Ed25519Verifier struct{}

func (Ed25519Verifier) VerifyTransaction(tx *Transaction) bool {
	if len(tx.Signature) != ed25519.SignatureSize {
		return false
	}
	publicKey, err := hex.DecodeString(tx.Sender)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(publicKey, signingDigest(tx), tx.Signature)
}

// SignEd25519 sets the transaction signature
func SignEd25519(tx *Transaction, privateKey ed25519.PrivateKey) []byte {
	sig := ed25519.Sign(privateKey, signingDigest(tx))
	tx.Signature = sig
	return sig
}

// Ed25519Address returns the sender identity for an ed25519 public key
func Ed25519Address(publicKey ed25519.PublicKey) string {
	return hex.EncodeToString(publicKey)
}

// Secp256k1Verifier checks DER encoded ECDSA signatures where the sender is a
// hex encoded compressed secp256k1 public key
type Secp256k1Verifier struct{}

func (Secp256k1Verifier) VerifyTransaction(tx *Transaction) bool {
	if len(tx.Signature) == 0 {
		return false
	}
	pubKeyBytes, err := hex.DecodeString(tx.Sender)
	if err != nil {
		return false
	}
	publicKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(tx.Signature)
	if err != nil {
		return false
	}
	return sig.Verify(signingDigest(tx), publicKey)
}

// SignSecp256k1 sets the transaction signature
func SignSecp256k1(tx *Transaction, privateKey *btcec.PrivateKey) []byte {
	sig := ecdsa.Sign(privateKey, signingDigest(tx)).Serialize()
	tx.Signature = sig
	return sig
}

// Secp256k1Address returns the sender identity for a secp256k1 public key
func Secp256k1Address(publicKey *btcec.PublicKey) string {
	return hex.EncodeToString(publicKey.SerializeCompressed())
}

// SchemeVerifier returns the signature verifier registered under name
func SchemeVerifier(name string) (SignatureVerifier, error) {
	switch name {
	case SchemeEd25519:
		return Ed25519Verifier{}, nil
	case SchemeSecp256k1:
		return Secp256k1Verifier{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScheme)
	}
}

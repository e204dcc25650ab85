package blockchain

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBrokenLink    = errors.New("previous hash does not match predecessor")
	ErrInvalidProof  = errors.New("proof of work is invalid")
	ErrInvalidPrefix = errors.New("invalid difficulty prefix")
)

// ChainError reports the first block that failed chain verification
type ChainError struct {
	Index  int
	Reason error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Index, e.Reason)
}

func (e *ChainError) Unwrap() error {
	return e.Reason
}

// Verifier holds the collaborators used by the verification operations.
// It carries no mutable state and is safe for concurrent use.
type Verifier struct {
	prefix      string
	hashBlock   BlockHasher
	signatures  SignatureVerifier
	logger      *zap.Logger
	concurrency int
}

type Option func(*Verifier)

// WithDifficultyPrefix sets the hex prefix a valid proof hash must start with.
// NewVerifier rejects it unless ValidateDifficultyPrefix accepts it.
func WithDifficultyPrefix(prefix string) Option {
	return func(v *Verifier) {
		v.prefix = prefix
	}
}

// WithBlockHasher replaces HashBlock. A nil hasher keeps the default.
func WithBlockHasher(hasher BlockHasher) Option {
	return func(v *Verifier) {
		if hasher != nil {
			v.hashBlock = hasher
		}
	}
}

// WithSignatureVerifier replaces the ed25519 verifier. A nil verifier keeps the default.
func WithSignatureVerifier(sv SignatureVerifier) Option {
	return func(v *Verifier) {
		if sv != nil {
			v.signatures = sv
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithConcurrency bounds the number of proof checks run at once by
// CheckChainParallel. Zero means GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(v *Verifier) {
		v.concurrency = n
	}
}

// ValidateDifficultyPrefix accepts non-empty lowercase hex no longer than a
// SHA-256 digest.
func ValidateDifficultyPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPrefix)
	}
	if len(prefix) > 64 {
		return fmt.Errorf("%w: %d characters is longer than a digest", ErrInvalidPrefix, len(prefix))
	}
	for _, c := range prefix {
		if !('0' <= c && c <= '9') && !('a' <= c && c <= 'f') {
			return fmt.Errorf("%w: %q is not lowercase hex", ErrInvalidPrefix, prefix)
		}
	}
	return nil
}

// NewVerifier applies opts over the defaults and rejects an invalid difficulty prefix
func NewVerifier(opts ...Option) (*Verifier, error) {
	v := newVerifier(opts...)
	if err := ValidateDifficultyPrefix(v.prefix); err != nil {
		return nil, err
	}
	return v, nil
}

func newVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		prefix:     DefaultDifficultyPrefix,
		hashBlock:  HashBlock,
		signatures: Ed25519Verifier{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.concurrency <= 0 {
		v.concurrency = runtime.GOMAXPROCS(0)
	}
	v.logger = v.logger.Named("validation")
	return v
}

// DifficultyPrefix returns the configured proof-of-work prefix
func (v *Verifier) DifficultyPrefix() string {
	return v.prefix
}

// ValidProof reports whether proof solves the puzzle for the given
// transactions (without the reward transaction) and predecessor hash.
func (v *Verifier) ValidProof(transactions []Transaction, lastHash string, proof uint64) bool {
	guessHash := HashString256(GuessString(transactions, lastHash, proof))
	return strings.HasPrefix(guessHash, v.prefix)
}

// CheckChain walks the chain in order and returns a *ChainError for the first
// block that is not linked to its predecessor or carries an invalid proof.
// The genesis block is not checked.
func (v *Verifier) CheckChain(blocks Chain) error {
	for i := 1; i < len(blocks); i++ {
		if err := v.checkLink(blocks, i); err != nil {
			return err
		}
		if err := v.checkProof(blocks[i], i); err != nil {
			return err
		}
	}
	return nil
}

// VerifyChain reports whether every non-genesis block is linked and proven
func (v *Verifier) VerifyChain(blocks Chain) bool {
	return v.CheckChain(blocks) == nil
}

// CheckChainParallel returns the same verdict as CheckChain. Linkage is
// scanned in order, proof checks up to the first broken link run concurrently,
// and the lowest failing index is reported.
func (v *Verifier) CheckChainParallel(ctx context.Context, blocks Chain) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	brokenAt := len(blocks)
	for i := 1; i < len(blocks); i++ {
		if blocks[i].PreviousHash != v.hashBlock(blocks[i-1]) {
			brokenAt = i
			break
		}
	}

	valid := make([]bool, brokenAt)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i := 1; i < brokenAt; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			block := blocks[i]
			valid[i] = v.ValidProof(block.ProofTransactions(), block.PreviousHash, block.Proof)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 1; i < brokenAt; i++ {
		if !valid[i] {
			v.logger.Warn("proof of work is invalid", zap.Int("index", i))
			return &ChainError{Index: i, Reason: ErrInvalidProof}
		}
	}
	if brokenAt < len(blocks) {
		v.logger.Debug("chain link broken", zap.Int("index", brokenAt))
		return &ChainError{Index: brokenAt, Reason: ErrBrokenLink}
	}
	return nil
}

func (v *Verifier) checkLink(blocks Chain, i int) error {
	if blocks[i].PreviousHash != v.hashBlock(blocks[i-1]) {
		v.logger.Debug("chain link broken",
			zap.Int("index", i),
			zap.String("previous_hash", blocks[i].PreviousHash))
		return &ChainError{Index: i, Reason: ErrBrokenLink}
	}
	return nil
}

func (v *Verifier) checkProof(block *Block, i int) error {
	if !v.ValidProof(block.ProofTransactions(), block.PreviousHash, block.Proof) {
		v.logger.Warn("proof of work is invalid", zap.Int("index", i), zap.Uint64("proof", block.Proof))
		return &ChainError{Index: i, Reason: ErrInvalidProof}
	}
	return nil
}

// VerifyTransaction checks the signature of tx and, when checkFunds is set,
// that the sender's balance covers the amount.
func (v *Verifier) VerifyTransaction(tx *Transaction, getBalance BalanceFunc, checkFunds bool) bool {
	if checkFunds {
		balance := getBalance(tx.Sender)
		if balance < tx.Amount {
			v.logger.Debug("transaction rejected: insufficient balance",
				zap.String("sender", tx.Sender),
				zap.Uint64("balance", balance),
				zap.Uint64("amount", tx.Amount))
			return false
		}
	}
	if !v.signatures.VerifyTransaction(tx) {
		v.logger.Debug("transaction rejected: invalid signature", zap.String("sender", tx.Sender))
		return false
	}
	return true
}

// VerifyTransactions checks the signature of every open transaction.
// Balances are not consulted; affordability across a pool is left to the pool owner.
func (v *Verifier) VerifyTransactions(openTransactions []Transaction, getBalance BalanceFunc) bool {
	for i := range openTransactions {
		if !v.VerifyTransaction(&openTransactions[i], getBalance, false) {
			return false
		}
	}
	return true
}

var defaultVerifier = newVerifier()

// ValidProof checks a proof against the default difficulty prefix
func ValidProof(transactions []Transaction, lastHash string, proof uint64) bool {
	return defaultVerifier.ValidProof(transactions, lastHash, proof)
}

// VerifyChain verifies blocks with HashBlock and the default difficulty prefix
func VerifyChain(blocks Chain) bool {
	return defaultVerifier.VerifyChain(blocks)
}

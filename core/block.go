package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// chainLogger is the package-level logger for block/chain/mining events. It
// mirrors the teacher's use of a swappable *logrus.Logger in ledger.go and
// mining_node.go rather than the global logrus instance directly.
var chainLogger = logrus.New()

// SetChainLogger overrides the logger used for chain and block events.
func SetChainLogger(l *logrus.Logger) {
	if l != nil {
		chainLogger = l
	}
}

// Block is an ordered batch of transactions, hash-linked to its predecessor
// and sealed by a proof-of-work nonce (§3).
type Block struct {
	Index        uint64         `json:"index"`
	Timestamp    time.Time      `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	PreviousHash string         `json:"previous_hash"`
	Nonce        uint64         `json:"nonce"`
	Difficulty   int            `json:"difficulty"`
	Hash         string         `json:"hash"`
}

// NewBlock stores the given fields, sets nonce to zero, and computes the
// initial (unmined) hash.
func NewBlock(index uint64, txs []*Transaction, previousHash string, difficulty int) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    time.Now().UTC(),
		Transactions: txs,
		PreviousHash: previousHash,
		Nonce:        0,
		Difficulty:   difficulty,
	}
	b.Hash = b.RecomputeHash()
	return b
}

// RecomputeHash is the pure function used both during mining and by
// validators: SHA-256 over index, timestamp, previous hash, nonce, and the
// concatenation of member transaction fingerprints (§3).
func (b *Block) RecomputeHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%d", b.Index, b.Timestamp.UnixNano(), b.PreviousHash, b.Nonce)
	for _, tx := range b.Transactions {
		h.Write([]byte(tx.Fingerprint()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// meetsDifficulty reports whether hash carries the required hex-zero prefix.
func meetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	return strings.HasPrefix(hash, strings.Repeat("0", difficulty))
}

// Mine runs the single-threaded, CPU-bound proof-of-work loop: increment
// Nonce and recompute the hash until it carries Difficulty leading hex
// zeros. Per §4.2 there is no cooperative suspension point inside the loop;
// callers needing cancellation must run Mine on an interruptible worker
// (see Chain.MinePending, which runs Mine outside the chain lock).
func (b *Block) Mine() {
	for !meetsDifficulty(b.Hash, b.Difficulty) {
		b.Nonce++
		b.Hash = b.RecomputeHash()
	}
	chainLogger.WithFields(logrus.Fields{
		"index":      b.Index,
		"nonce":      b.Nonce,
		"difficulty": b.Difficulty,
	}).Debug("block mined")
}

// IsValid reports whether the stored hash matches RecomputeHash and whether
// the difficulty prefix holds (§3).
func (b *Block) IsValid() bool {
	return b.Hash == b.RecomputeHash() && meetsDifficulty(b.Hash, b.Difficulty)
}

// BlockView is the stable dictionary form described in §6's "Block
// dictionary form".
type BlockView struct {
	Index        uint64            `json:"index"`
	Timestamp    int64             `json:"timestamp"`
	PreviousHash string            `json:"previous_hash"`
	Nonce        uint64            `json:"nonce"`
	Difficulty   int               `json:"difficulty"`
	Hash         string            `json:"hash"`
	Transactions []TransactionView `json:"transactions"`
}

// Serialize returns the block's stable dictionary form.
func (b *Block) Serialize() BlockView {
	txs := make([]TransactionView, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = tx.Serialize()
	}
	return BlockView{
		Index:        b.Index,
		Timestamp:    b.Timestamp.UnixNano(),
		PreviousHash: b.PreviousHash,
		Nonce:        b.Nonce,
		Difficulty:   b.Difficulty,
		Hash:         b.Hash,
		Transactions: txs,
	}
}

// genesisBlock builds the pre-mined index-0 block described in §3: its sole
// transaction is of kind genesis, sender "0", receiver "system", amount 0,
// previous hash "0". It is pre-mined (not run through Mine) because it
// carries no economic weight and its hash is never validated against a
// predecessor.
func genesisBlock() *Block {
	tx := NewTransaction(SystemIdentity, GenesisReceiver, 0, KindGenesis, nil)
	b := &Block{
		Index:        0,
		Timestamp:    time.Unix(0, 0).UTC(),
		Transactions: []*Transaction{tx},
		PreviousHash: "0",
		Nonce:        0,
		Difficulty:   0,
	}
	b.Hash = b.RecomputeHash()
	return b
}

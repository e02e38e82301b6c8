package core

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ChainConfig parameterizes a Chain's economics. Defaults match the §8
// end-to-end scenarios (base reward 50, difficulty 2).
type ChainConfig struct {
	BaseReward      float64
	HalvingInterval uint64
	Difficulty      int
}

// DefaultChainConfig returns the literal values used throughout spec §8's
// worked scenarios.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		BaseReward:      50,
		HalvingInterval: 1000,
		Difficulty:      2,
	}
}

// Chain is the process-wide append-only sequence of blocks plus a pending
// transaction pool (§3). A single mutex guards both the pool and the block
// sequence, per §5.
type Chain struct {
	mu         sync.Mutex
	blocks     []*Block
	pending    []*Transaction
	difficulty int
	baseReward float64
	halving    uint64
}

// NewChain constructs a chain seeded with the pre-mined genesis block.
func NewChain(cfg ChainConfig) *Chain {
	c := &Chain{
		blocks:     []*Block{genesisBlock()},
		difficulty: cfg.Difficulty,
		baseReward: cfg.BaseReward,
		halving:    cfg.HalvingInterval,
	}
	return c
}

// Length returns the number of blocks currently on the chain, including
// genesis.
func (c *Chain) Length() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// PendingCount returns the number of transactions awaiting confirmation.
func (c *Chain) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Difficulty returns the chain's current proof-of-work difficulty.
func (c *Chain) Difficulty() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.difficulty
}

func (c *Chain) tipHash() string {
	return c.blocks[len(c.blocks)-1].Hash
}

// balanceLocked replays confirmed blocks only, per the balance invariant in
// §3: balance(X) = receipts(X) - sends(X where sender != "0"). Caller must
// hold c.mu.
func (c *Chain) balanceLocked(identity string) float64 {
	var balance float64
	for _, b := range c.blocks {
		for _, tx := range b.Transactions {
			if tx.Receiver == identity {
				balance += tx.Amount
			}
			if tx.Sender == identity && tx.Sender != SystemIdentity {
				balance -= tx.Amount
			}
		}
	}
	return balance
}

// Balance replays the entire confirmed chain for identity. The pending pool
// does not count (§4.3).
func (c *Chain) Balance(identity string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceLocked(identity)
}

// AddTransaction admits tx to the pending pool. Transactions sent by "0" are
// admitted unconditionally (minting); all others require
// balance(sender) >= amount over confirmed blocks only. Failure is reported
// via the bool return, never an exception (§7).
func (c *Chain) AddTransaction(tx *Transaction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tx.Sender != SystemIdentity {
		if c.balanceLocked(tx.Sender) < tx.Amount {
			chainLogger.WithFields(logrus.Fields{
				"sender": tx.Sender,
				"amount": tx.Amount,
				"kind":   tx.Kind,
			}).Debug("transaction admission refused: insufficient balance")
			return false
		}
	}
	c.pending = append(c.pending, tx)
	return true
}

// CurrentReward returns base_reward / 2^(chain_length // halving_interval)
// (§4.3).
func (c *Chain) CurrentReward() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRewardLocked()
}

func (c *Chain) currentRewardLocked() float64 {
	halvings := uint64(len(c.blocks))
	if c.halving > 0 {
		halvings = uint64(len(c.blocks)) / c.halving
	} else {
		halvings = 0
	}
	reward := c.baseReward
	for i := uint64(0); i < halvings; i++ {
		reward /= 2
	}
	return reward
}

// snapshot captures the pool and tip hash under lock for the optimistic
// mining pattern described in §5.
type miningSnapshot struct {
	pending    []*Transaction
	tipHash    string
	nextIndex  uint64
	difficulty int
	reward     float64
}

func (c *Chain) snapshotForMining() (miningSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return miningSnapshot{}, false
	}
	pending := make([]*Transaction, len(c.pending))
	copy(pending, c.pending)
	return miningSnapshot{
		pending:    pending,
		tipHash:    c.tipHash(),
		nextIndex:  uint64(len(c.blocks)),
		difficulty: c.difficulty,
		reward:     c.currentRewardLocked(),
	}, true
}

// MinePending snapshots the pending pool, builds and mines a block
// containing it plus a trailing mining-reward transaction, and appends the
// block to the chain. Returns nil if the pool was empty (§4.3, §8 boundary
// behavior).
//
// Mining itself runs without the chain lock held (§5's optimistic-append
// pattern): the snapshot/commit phases are the only critical sections, so
// concurrent readers never observe a partially built block.
func (c *Chain) MinePending(minerIdentity string) *Block {
	for {
		snap, ok := c.snapshotForMining()
		if !ok {
			return nil
		}

		var fee float64
		for _, tx := range snap.pending {
			fee += tx.fee()
		}
		reward := NewTransaction(SystemIdentity, minerIdentity, snap.reward+fee, KindMiningReward, nil)

		txs := make([]*Transaction, 0, len(snap.pending)+1)
		txs = append(txs, snap.pending...)
		txs = append(txs, reward)

		block := NewBlock(snap.nextIndex, txs, snap.tipHash, snap.difficulty)
		block.Mine()

		c.mu.Lock()
		if c.tipHash() != snap.tipHash {
			// Tip advanced while we were mining unlocked: another miner won
			// the race. Discard this block and retry against the new tip.
			c.mu.Unlock()
			chainLogger.Debug("mining retry: chain tip advanced during proof-of-work")
			continue
		}
		c.blocks = append(c.blocks, block)
		minedCount := len(snap.pending)
		c.pending = c.pending[minedCount:]
		c.mu.Unlock()

		chainLogger.WithFields(logrus.Fields{
			"index": block.Index,
			"miner": minerIdentity,
			"txs":   len(block.Transactions),
		}).Info("block appended")
		return block
	}
}

// IsValid walks the chain verifying, for every block at index >= 1, that its
// hash matches RecomputeHash, its previous_hash equals the prior block's
// hash, and its difficulty prefix holds (§3, §4.3).
func (c *Chain) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 1; i < len(c.blocks); i++ {
		cur, prev := c.blocks[i], c.blocks[i-1]
		if !cur.IsValid() {
			return false
		}
		if cur.PreviousHash != prev.Hash {
			return false
		}
	}
	return true
}

// Info is the blockchain summary described in §6's
// get_blockchain_info contract.
type Info struct {
	ChainLength           int     `json:"chain_length"`
	PendingTransactions   int     `json:"pending_transactions"`
	CurrentDifficulty     int     `json:"current_difficulty"`
	CurrentMiningReward   float64 `json:"current_mining_reward"`
	IsValid               bool    `json:"is_valid"`
}

// GetInfo returns the blockchain summary consumed by the (out-of-scope)
// HTTP layer.
func (c *Chain) GetInfo() Info {
	c.mu.Lock()
	length := len(c.blocks)
	pending := len(c.pending)
	difficulty := c.difficulty
	reward := c.currentRewardLocked()
	c.mu.Unlock()
	return Info{
		ChainLength:         length,
		PendingTransactions: pending,
		CurrentDifficulty:   difficulty,
		CurrentMiningReward: reward,
		IsValid:             c.IsValid(),
	}
}

// Blocks returns a shallow copy of the confirmed block sequence, safe for
// read-only inspection by callers outside the lock.
func (c *Chain) Blocks() []*Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

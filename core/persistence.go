package core

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Persisted state is out of contract (§6): "None by contract. Implementers
// MAY add a serialization format but MUST preserve the hash-chain semantics
// on reload." SaveSnapshot/LoadSnapshot are that opt-in addition, adapted
// from the teacher's ledger.go WAL-replay pattern (one JSON block per line)
// but simplified to a single snapshot file since this chain has no other
// durable state to replay. Neither method is called by any core operation;
// a caller must invoke them explicitly.

// SaveSnapshot writes every confirmed block, one JSON object per line, to
// path. It does not include the pending pool — per §5/§9, pending state is
// never persisted.
func (c *Chain) SaveSnapshot(path string) error {
	c.mu.Lock()
	blocks := make([]*Block, len(c.blocks))
	copy(blocks, c.blocks)
	c.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("resourcechain: create snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, b := range blocks {
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("resourcechain: encode block %d: %w", b.Index, err)
		}
	}
	return w.Flush()
}

// LoadSnapshot replaces c's confirmed block sequence with the contents of
// path, verifying along the way that every block recomputes to its stored
// hash and that the hash-chain links hold (§6's reload contract). The
// pending pool is left untouched; difficulty/reward parameters are also
// left untouched, since a snapshot only ever carries block history.
func (c *Chain) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("resourcechain: open snapshot: %w", err)
	}
	defer f.Close()

	var blocks []*Block
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var b Block
		if err := json.Unmarshal(scanner.Bytes(), &b); err != nil {
			return fmt.Errorf("resourcechain: decode block: %w", err)
		}
		if b.Hash != b.RecomputeHash() {
			return fmt.Errorf("resourcechain: block %d hash mismatch on reload", b.Index)
		}
		if len(blocks) > 0 && b.PreviousHash != blocks[len(blocks)-1].Hash {
			return fmt.Errorf("resourcechain: block %d does not chain to predecessor", b.Index)
		}
		blocks = append(blocks, &b)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("resourcechain: scan snapshot: %w", err)
	}
	if len(blocks) == 0 {
		return fmt.Errorf("resourcechain: snapshot %s contained no blocks", path)
	}

	c.mu.Lock()
	c.blocks = blocks
	c.mu.Unlock()
	return nil
}

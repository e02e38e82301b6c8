package core

import "testing"

func TestBlockMineMeetsDifficulty(t *testing.T) {
	tx := NewTransaction(SystemIdentity, "abc123", 10, KindInitialCredit, nil)
	b := NewBlock(1, []*Transaction{tx}, "deadbeef", 2)
	b.Mine()
	if !meetsDifficulty(b.Hash, 2) {
		t.Fatalf("mined hash %q does not satisfy difficulty 2", b.Hash)
	}
	if !b.IsValid() {
		t.Fatalf("mined block should validate")
	}
}

func TestBlockRecomputeHashStable(t *testing.T) {
	tx := NewTransaction(SystemIdentity, "abc123", 10, KindInitialCredit, nil)
	b := NewBlock(1, []*Transaction{tx}, "deadbeef", 0)
	h1 := b.RecomputeHash()
	h2 := b.RecomputeHash()
	if h1 != h2 {
		t.Fatalf("recompute hash is not pure: %q != %q", h1, h2)
	}
}

func TestBlockInvalidAfterTamper(t *testing.T) {
	tx := NewTransaction(SystemIdentity, "abc123", 10, KindInitialCredit, nil)
	b := NewBlock(1, []*Transaction{tx}, "deadbeef", 2)
	b.Mine()
	b.Nonce++ // tamper without remining
	if b.IsValid() {
		t.Fatalf("tampered block should not validate")
	}
}

func TestGenesisBlockShape(t *testing.T) {
	g := genesisBlock()
	if g.Index != 0 {
		t.Fatalf("genesis index = %d, want 0", g.Index)
	}
	if g.PreviousHash != "0" {
		t.Fatalf("genesis previous hash = %q, want %q", g.PreviousHash, "0")
	}
	if len(g.Transactions) != 1 {
		t.Fatalf("genesis should carry exactly one transaction")
	}
	tx := g.Transactions[0]
	if tx.Kind != KindGenesis || tx.Sender != SystemIdentity || tx.Receiver != GenesisReceiver || tx.Amount != 0 {
		t.Fatalf("genesis transaction shape mismatch: %+v", tx)
	}
}

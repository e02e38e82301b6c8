package core

import "testing"

func scenarioConfig() (ChainConfig, Economics) {
	return ChainConfig{BaseReward: 50, HalvingInterval: 1000, Difficulty: 2}, Economics{Endowment: 10000, RatePerGB: 1000}
}

func TestMinePendingOnEmptyPoolReturnsNil(t *testing.T) {
	cfg, _ := scenarioConfig()
	c := NewChain(cfg)
	if c.PendingCount() != 0 {
		t.Fatalf("fresh chain should have an empty pool")
	}
	before := c.Length()
	if blk := c.MinePending("miner"); blk != nil {
		t.Fatalf("expected nil block for empty pool, got %+v", blk)
	}
	if c.Length() != before {
		t.Fatalf("chain length changed on empty-pool mine: %d -> %d", before, c.Length())
	}
}

func TestCurrentRewardHalving(t *testing.T) {
	cfg, _ := scenarioConfig()
	c := NewChain(cfg)
	// Force the block count to exactly one halving interval.
	for i := uint64(0); i < cfg.HalvingInterval-1; i++ {
		c.blocks = append(c.blocks, genesisBlock())
	}
	if got := c.CurrentReward(); got != cfg.BaseReward/2 {
		t.Fatalf("reward at one halving interval = %v, want %v", got, cfg.BaseReward/2)
	}
}

func TestAddTransactionRefusesOverdraft(t *testing.T) {
	cfg, _ := scenarioConfig()
	c := NewChain(cfg)
	tx := NewTransaction("alice", "bob", 100, KindTransfer, nil)
	before := c.PendingCount()
	if c.AddTransaction(tx) {
		t.Fatalf("overdrawn transfer should be refused")
	}
	if c.PendingCount() != before {
		t.Fatalf("refused transaction must not enter the pool")
	}
}

func TestSystemEndowmentThenMine_S1(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)

	if _, err := sys.RegisterUser("alice"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := sys.Mine("alice"); err != nil {
		t.Fatalf("mine: %v", err)
	}

	if got := sys.Chain().Length(); got != 2 {
		t.Fatalf("chain length = %d, want 2", got)
	}
	bal, _ := sys.Balance("alice")
	if bal != 10050 {
		t.Fatalf("alice balance = %v, want 10050", bal)
	}
}

func TestSystemPublishReward_S2(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)

	sys.RegisterUser("alice")
	sys.Mine("alice")

	rec, err := sys.Publish("alice", ResourceFields{Name: "movie.mkv", SizeGB: 0.025})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if rec.SizeGB != 0.025 {
		t.Fatalf("resource size mismatch: %v", rec.SizeGB)
	}
	if sys.Chain().PendingCount() != 1 {
		t.Fatalf("expected exactly one pending resource_declaration transaction")
	}

	if _, err := sys.Mine("alice"); err != nil {
		t.Fatalf("mine: %v", err)
	}

	bal, _ := sys.Balance("alice")
	if bal != 10125 {
		t.Fatalf("alice balance after publish+mine = %v, want 10125", bal)
	}
}

func TestSystemDownloadPayment_S3(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)

	sys.RegisterUser("alice")
	sys.Mine("alice")
	rec, _ := sys.Publish("alice", ResourceFields{Name: "movie.mkv", SizeGB: 0.025})
	sys.Mine("alice")

	sys.RegisterUser("bob")
	sys.Mine("bob")
	bobBefore, _ := sys.Balance("bob")
	if bobBefore != 10050 {
		t.Fatalf("bob balance before download = %v, want 10050", bobBefore)
	}

	sys.RegisterUser("carol")
	sys.Mine("carol") // seed Carol's own endowment so she isn't the one in question

	if err := sys.Download("bob", "alice", rec.ID); err != nil {
		t.Fatalf("download: %v", err)
	}

	aliceBefore, _ := sys.Balance("alice")
	block, err := sys.Mine("carol")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}

	// Reward tx is last in the block and carries base reward + aggregated fee.
	rewardTx := block.Transactions[len(block.Transactions)-1]
	if rewardTx.Kind != KindMiningReward {
		t.Fatalf("last transaction in block must be mining_reward, got %s", rewardTx.Kind)
	}
	wantReward := 50 + 0.025
	if rewardTx.Amount != wantReward {
		t.Fatalf("carol's mining reward = %v, want %v", rewardTx.Amount, wantReward)
	}

	bobAfter, _ := sys.Balance("bob")
	if bobAfter != bobBefore-25 {
		t.Fatalf("bob balance = %v, want %v (decreased by cost only, not cost+fee)", bobAfter, bobBefore-25)
	}

	aliceAfter, _ := sys.Balance("alice")
	if aliceAfter != aliceBefore+25 {
		t.Fatalf("alice balance = %v, want %v", aliceAfter, aliceBefore+25)
	}
}

func TestSystemInsufficientFunds_S4(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)

	sys.RegisterUser("alice")
	sys.Mine("alice")
	rec, _ := sys.Publish("alice", ResourceFields{Name: "movie.mkv", SizeGB: 0.025})
	sys.Mine("alice")

	sys.RegisterUser("dan") // not mined: Dan's endowment is not yet confirmed
	pending := sys.Chain().PendingCount()
	length := sys.Chain().Length()

	if err := sys.Download("dan", "alice", rec.ID); err == nil {
		t.Fatalf("expected refusal for unfunded downloader")
	}

	if sys.Chain().PendingCount() != pending {
		t.Fatalf("pool must be unchanged after a refused download")
	}
	if sys.Chain().Length() != length {
		t.Fatalf("chain length must be unchanged after a refused download")
	}
}

func TestRegistryOwnershipEnforcement_S5(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)

	sys.RegisterUser("alice")
	sys.RegisterUser("bob")

	bobRec, err := sys.Publish("bob", ResourceFields{Name: "bob-file", SizeGB: 1})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	aliceIdentity, _ := sys.identityFor("alice")
	bobRegistry, _ := sys.registryFor("bob")

	if bobRegistry.Remove(bobRec.ID, aliceIdentity) {
		t.Fatalf("alice must not be able to remove bob's resource")
	}
	if bobRegistry.Get(bobRec.ID) == nil {
		t.Fatalf("bob's resource must still exist after the refused removal")
	}
}

func TestChainTamperDetection_S6(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)
	sys.RegisterUser("alice")
	sys.Mine("alice")
	sys.RegisterUser("bob")
	sys.Mine("bob")

	c := sys.Chain()
	if !c.IsValid() {
		t.Fatalf("chain should be valid before tampering")
	}

	c.mu.Lock()
	c.blocks[1].Nonce += 1 // mutate a non-tip block without remining
	c.mu.Unlock()

	if c.IsValid() {
		t.Fatalf("tampered chain should be invalid")
	}
}

func TestSearchBoundary_MinMaxSizeInclusive(t *testing.T) {
	cfg, econ := scenarioConfig()
	sys := NewSystem(cfg, econ)
	sys.RegisterUser("alice")
	sys.Mine("alice")
	sys.Publish("alice", ResourceFields{Name: "a", SizeGB: 1, Category: "video"})
	sys.Publish("alice", ResourceFields{Name: "b", SizeGB: 2, Category: "video"})

	reg, _ := sys.registryFor("alice")
	min, max := 1.0, 1.0
	results := reg.Search(SearchParams{MinSize: &min, MaxSize: &max})
	if len(results) != 1 || results[0].Name != "a" {
		t.Fatalf("inclusive size bounds should return exactly resource a, got %+v", results)
	}
}

package core

import (
	"testing"
	"time"
)

func TestFingerprintDeterministic(t *testing.T) {
	now := time.Now().UTC()
	a := &Transaction{Sender: "0", Receiver: "abc", Amount: 25, Kind: KindTransfer, Timestamp: now, Resource: ResourcePayload{"b": 2, "a": 1}}
	b := &Transaction{Sender: "0", Receiver: "abc", Amount: 25, Kind: KindTransfer, Timestamp: now, Resource: ResourcePayload{"a": 1, "b": 2}}
	if a.computeFingerprint() != b.computeFingerprint() {
		t.Fatalf("key order must not affect fingerprint")
	}
}

func TestFingerprintSensitiveToAmount(t *testing.T) {
	now := time.Now().UTC()
	a := &Transaction{Sender: "0", Receiver: "abc", Amount: 25, Kind: KindTransfer, Timestamp: now}
	b := &Transaction{Sender: "0", Receiver: "abc", Amount: 26, Kind: KindTransfer, Timestamp: now}
	if a.computeFingerprint() == b.computeFingerprint() {
		t.Fatalf("differing amounts must not collide")
	}
}

func TestFeeOnlyAppliesToEconomicKinds(t *testing.T) {
	cases := []struct {
		kind     TxKind
		wantFee  float64
	}{
		{KindGenesis, 0},
		{KindInitialCredit, 0},
		{KindResourceDeclaration, 0},
		{KindMiningReward, 0},
		{KindResourceDownload, 0.025},
		{KindTransfer, 0.025},
	}
	for _, c := range cases {
		tx := NewTransaction("x", "y", 25, c.kind, nil)
		if got := tx.fee(); got != c.wantFee {
			t.Errorf("kind %s: fee=%v want %v", c.kind, got, c.wantFee)
		}
	}
}

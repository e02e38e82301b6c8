package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TxKind discriminates the credit-movement kinds a Transaction can carry.
// A single Transaction type is used for all of them — per §9 the kind tag
// already discriminates, so resource payloads are not modelled as separate
// variants the way the teacher's tx_types.go carves out TxPayment /
// TxContractCall / TxReversal as distinct types.
type TxKind string

const (
	KindGenesis             TxKind = "genesis"
	KindInitialCredit       TxKind = "initial_credit"
	KindResourceDeclaration TxKind = "resource_declaration"
	KindResourceDownload    TxKind = "resource_download"
	KindMiningReward        TxKind = "mining_reward"
	KindTransfer            TxKind = "transfer"
)

// amountPrecision is the number of decimal places amounts are rounded to
// before they enter the fingerprint or any balance arithmetic. Documented
// per §3: the stringification used for canonicalization uses this same
// precision, so two transactions with logically identical amounts always
// fingerprint identically.
const amountPrecision = 6

// feeRate is the per-transaction overhead applied to "economic" kinds
// (resource_download, transfer) and aggregated into the miner's reward.
// See §4.3 "Fee rule rationale": the fee is credited to the miner only, it
// is never separately debited from the sender.
const feeRate = 0.001

// ResourcePayload is the opaque, heterogeneous key-value structure attached
// to resource-bearing transactions (declaration, download). Per §9 it is
// represented as a generic map rather than a typed variant.
type ResourcePayload map[string]any

// canonicalString renders the payload with lexicographically sorted keys so
// that semantically identical payloads always produce identical bytes.
func (p ResourcePayload) canonicalString() string {
	if len(p) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%v", k, p[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Transaction is an immutable record of a credit movement, optionally
// carrying a resource payload. Constructed once via NewTransaction; it has
// no mutators (§4.1).
type Transaction struct {
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      float64         `json:"amount"`
	Kind        TxKind          `json:"kind"`
	Resource    ResourcePayload `json:"resource,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	txFingerprint string        `json:"-"`
}

// roundAmount applies the documented fixed precision.
func roundAmount(v float64) float64 {
	scale := mathPow10(amountPrecision)
	return float64(int64(v*scale+0.5)) / scale
}

func mathPow10(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// NewTransaction constructs an immutable Transaction, stamping it with the
// current wall-clock time and precomputing its fingerprint. Per §9,
// monotonicity of the timestamp across transactions is not required — the
// fingerprint covers content, not arrival order.
func NewTransaction(sender, receiver string, amount float64, kind TxKind, resource ResourcePayload) *Transaction {
	tx := &Transaction{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    roundAmount(amount),
		Kind:      kind,
		Resource:  resource,
		Timestamp: time.Now().UTC(),
	}
	tx.txFingerprint = tx.computeFingerprint()
	return tx
}

// computeFingerprint is SHA-256 over the canonical serialization of
// (sender, receiver, amount, kind, timestamp, sorted-key resource payload).
func (tx *Transaction) computeFingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%s",
		tx.Sender,
		tx.Receiver,
		strconv.FormatFloat(tx.Amount, 'f', amountPrecision, 64),
		tx.Kind,
		tx.Timestamp.UnixNano(),
		tx.Resource.canonicalString(),
	)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the transaction's precomputed content hash.
func (tx *Transaction) Fingerprint() string {
	if tx.txFingerprint == "" {
		tx.txFingerprint = tx.computeFingerprint()
	}
	return tx.txFingerprint
}

// TransactionView is the stable dictionary form used for hashing and for
// handoff to the (out-of-scope) HTTP layer — §6 "Block dictionary form".
type TransactionView struct {
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      float64         `json:"amount"`
	Kind        string          `json:"kind"`
	Resource    ResourcePayload `json:"resource_data,omitempty"`
	Timestamp   int64           `json:"timestamp"`
	Fingerprint string          `json:"fingerprint"`
}

// Serialize returns the transaction's stable dictionary form.
func (tx *Transaction) Serialize() TransactionView {
	return TransactionView{
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Amount:      tx.Amount,
		Kind:        string(tx.Kind),
		Resource:    tx.Resource,
		Timestamp:   tx.Timestamp.UnixNano(),
		Fingerprint: tx.Fingerprint(),
	}
}

// isEconomic reports whether tx is a fee-bearing kind per §4.3.
func (tx *Transaction) isEconomic() bool {
	return tx.Kind == KindResourceDownload || tx.Kind == KindTransfer
}

// fee returns the per-transaction overhead for economic transaction kinds.
func (tx *Transaction) fee() float64 {
	if !tx.isEconomic() {
		return 0
	}
	return roundAmount(tx.Amount * feeRate)
}

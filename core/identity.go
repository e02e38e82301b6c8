package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SystemIdentity is the sender of all minting transactions (endowment,
// mining reward). It never holds a balance debit.
const SystemIdentity = "0"

// GenesisReceiver is the reserved receiver of the genesis transaction.
const GenesisReceiver = "system"

// identityLength is the number of hex characters in a minted identity.
const identityLength = 16

// MintIdentity derives a stable pseudonym for handle from a hash of the
// handle and the instant of minting. Mirrors the derivation style of the
// teacher's idwallet_registration.go, minus the keypair material: §1 treats
// sender identity as asserted, not cryptographically proven, so no public
// key is derived here.
func MintIdentity(handle string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", handle, at.UnixNano())))
	return hex.EncodeToString(sum[:])[:identityLength]
}

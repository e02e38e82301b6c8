package core

import (
	"sync"
	"time"
)

// Economics bundles the credit-economy constants layered on top of the
// ledger (§1b, §8's literal worked values).
type Economics struct {
	Endowment    float64 // initial_credit amount minted to a new user
	RatePerGB    float64 // credits per declared/downloaded gigabyte
}

// DefaultEconomics returns the literal values used in spec §8's scenarios.
func DefaultEconomics() Economics {
	return Economics{Endowment: 10000, RatePerGB: 1000}
}

// UserDescriptor is the public view of a registered user returned by
// RegisterUser and GetUser (§6).
type UserDescriptor struct {
	Handle    string    `json:"handle"`
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
}

// System is the facade owning the single Chain, the handle-to-identity
// mapping, each user's Registry, and the composite operations that translate
// user intents into transactions and registry mutations (§2). Users hold a
// non-owning reference to the chain through this facade; the chain never
// references users back (§9 "cyclic references").
type System struct {
	chain     *Chain
	economics Economics

	mu        sync.RWMutex
	users     map[string]*UserDescriptor
	registries map[string]*Registry // keyed by handle

	community *Registry
}

// NewSystem constructs a System with a fresh Chain and a community registry
// seeded with a handful of demo resources owned by CommunityOwner (§3, §9
// "Community registry seeding").
func NewSystem(chainCfg ChainConfig, economics Economics) *System {
	s := &System{
		chain:      NewChain(chainCfg),
		economics:  economics,
		users:      make(map[string]*UserDescriptor),
		registries: make(map[string]*Registry),
		community:  NewRegistry(),
	}
	s.seedCommunity()
	return s
}

func (s *System) seedCommunity() {
	demo := []ResourceFields{
		{Name: "welcome-pack.iso", SizeGB: 0.5, Uploader: "community", Description: "starter pack of sample files", Category: "general"},
		{Name: "sample-dataset.csv", SizeGB: 0.02, Uploader: "community", Description: "small demo dataset", Category: "data"},
	}
	for _, f := range demo {
		s.community.Add(f, CommunityOwner)
	}
}

// Chain exposes the underlying chain for read-only inspection (status,
// length, pending pool, blocks).
func (s *System) Chain() *Chain { return s.chain }

// Community exposes the community registry for read-only inspection.
func (s *System) Community() *Registry { return s.community }

func (s *System) identityFor(handle string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[handle]
	if !ok {
		return "", false
	}
	return u.Identity, true
}

func (s *System) registryFor(handle string) (*Registry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registries[handle]
	return r, ok
}

// GetUser returns the descriptor for handle, or nil if unregistered (§6).
func (s *System) GetUser(handle string) *UserDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[handle]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// RegisterUser mints a new identity for handle, creates its empty registry,
// and enqueues the initial_credit transaction. Fails loudly (returns an
// error) if handle is already registered — the one in-band loud failure
// per §7. The endowment is only spendable after the next successful mine,
// since balance replay only counts confirmed blocks.
func (s *System) RegisterUser(handle string) (*UserDescriptor, error) {
	s.mu.Lock()
	if _, exists := s.users[handle]; exists {
		s.mu.Unlock()
		return nil, ErrUserExists
	}
	now := time.Now().UTC()
	identity := MintIdentity(handle, now)
	user := &UserDescriptor{Handle: handle, Identity: identity, CreatedAt: now}
	s.users[handle] = user
	s.registries[handle] = NewRegistry()
	s.mu.Unlock()

	tx := NewTransaction(SystemIdentity, identity, s.economics.Endowment, KindInitialCredit, nil)
	s.chain.AddTransaction(tx) // sender "0" admits unconditionally (§4.3)

	cp := *user
	return &cp, nil
}

// Publish invokes the owner's registry Add with fields and enqueues a
// resource_declaration transaction crediting size_gb * rate to the owner. If
// the transaction fails to enqueue, the registry insertion is rolled back
// (§4.5).
func (s *System) Publish(handle string, fields ResourceFields) (*SharedFile, error) {
	identity, ok := s.identityFor(handle)
	if !ok {
		return nil, ErrUnknownUser
	}
	reg, _ := s.registryFor(handle)

	fields.Uploader = handle
	rec := reg.Add(fields, identity)

	reward := rec.SizeGB * s.economics.RatePerGB
	tx := NewTransaction(SystemIdentity, identity, reward, KindResourceDeclaration, ResourcePayload{
		"resource_id": rec.ID,
		"name":        rec.Name,
	})
	if !s.chain.AddTransaction(tx) {
		reg.Remove(rec.ID, identity)
		return nil, ErrInsufficientBalance
	}
	return rec, nil
}

// Download validates that both users exist, the owner's registry has an
// active resource of that id, and downloader != owner, then checks the
// downloader can cover cost + fee before enqueuing a resource_download
// transaction for the cost alone (the fee is implicit, see §4.3's rationale
// and §9's double-charge note). On success the resource's seed count is
// incremented.
func (s *System) Download(downloaderHandle, ownerHandle string, resourceID uint64) error {
	if downloaderHandle == ownerHandle {
		return ErrSelfDownload
	}
	downloaderIdentity, ok := s.identityFor(downloaderHandle)
	if !ok {
		return ErrUnknownUser
	}
	ownerIdentity, ok := s.identityFor(ownerHandle)
	if !ok {
		return ErrUnknownUser
	}
	ownerReg, _ := s.registryFor(ownerHandle)
	rec := ownerReg.Get(resourceID)
	if rec == nil {
		return ErrResourceNotFound
	}
	if !rec.Active {
		return ErrResourceInactive
	}
	if downloaderIdentity == ownerIdentity {
		return ErrSelfDownload
	}

	cost := rec.SizeGB * s.economics.RatePerGB
	fee := roundAmount(cost * feeRate)
	if s.chain.Balance(downloaderIdentity) < cost+fee {
		return ErrInsufficientBalance
	}

	tx := NewTransaction(downloaderIdentity, ownerIdentity, cost, KindResourceDownload, ResourcePayload{
		"resource_id": rec.ID,
		"name":        rec.Name,
	})
	if !s.chain.AddTransaction(tx) {
		return ErrInsufficientBalance
	}
	ownerReg.AdjustCounts(resourceID, 1, 0)
	return nil
}

// Mine delegates to the chain, requiring handle to be a registered user.
func (s *System) Mine(handle string) (*Block, error) {
	identity, ok := s.identityFor(handle)
	if !ok {
		return nil, ErrUnknownUser
	}
	block := s.chain.MinePending(identity)
	if block == nil {
		return nil, ErrEmptyPool
	}
	return block, nil
}

// Balance delegates to the chain, requiring handle to be a registered user.
func (s *System) Balance(handle string) (float64, error) {
	identity, ok := s.identityFor(handle)
	if !ok {
		return 0, ErrUnknownUser
	}
	return s.chain.Balance(identity), nil
}

// SearchResources searches a given handle's registry, or the community
// registry when handle is empty.
func (s *System) SearchResources(handle string, p SearchParams) ([]*SharedFile, error) {
	if handle == "" {
		return s.community.Search(p), nil
	}
	reg, ok := s.registryFor(handle)
	if !ok {
		return nil, ErrUnknownUser
	}
	return reg.Search(p), nil
}

// AllResources returns every active resource across every registered user's
// registry plus the community registry — backs §6's get_all_resources.
func (s *System) AllResources() []*SharedFile {
	s.mu.RLock()
	regs := make([]*Registry, 0, len(s.registries)+1)
	for _, r := range s.registries {
		regs = append(regs, r)
	}
	s.mu.RUnlock()
	regs = append(regs, s.community)

	var out []*SharedFile
	for _, r := range regs {
		out = append(out, r.Active()...)
	}
	return out
}

// Info returns the blockchain summary described in §6.
func (s *System) Info() Info {
	return s.chain.GetInfo()
}

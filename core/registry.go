package core

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// registryLogger is the package-level logger for resource lifecycle events,
// matching the teacher's zap.L().Sugar() usage in resource_marketplace.go.
var registryLogger = zap.NewNop().Sugar()

// SetRegistryLogger overrides the logger used for registry events.
func SetRegistryLogger(l *zap.SugaredLogger) {
	if l != nil {
		registryLogger = l
	}
}

// CommunityOwner is the owner identity of the shared community bucket
// seeded at System construction (§3).
const CommunityOwner = ""

// SharedFile is a resource descriptor — a file available for trade in the
// exchange (§3). Owner identity is set at insertion and immutable
// thereafter; only the owner may mutate or delete it.
type SharedFile struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	SizeGB       float64   `json:"size_gb"`
	Uploader     string    `json:"uploader"`
	Seeds        int       `json:"seeds"`
	Peers        int       `json:"peers"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ContentHash  string    `json:"file_hash"`
	Owner        string    `json:"owner_address"`
	UploadTime   time.Time `json:"upload_time"`
	Active       bool      `json:"is_active"`
	StoragePath  string    `json:"storage_path,omitempty"`
}

// ResourceFields carries the caller-supplied attributes of a new resource;
// ID, Owner, UploadTime, and Active are assigned by Registry.Add.
type ResourceFields struct {
	Name        string
	SizeGB      float64
	Uploader    string
	Description string
	Category    string
	ContentHash string
	StoragePath string
}

// ResourcePatch carries the mutable subset of SharedFile fields accepted by
// Registry.Update. A nil pointer field means "leave unchanged". ID and Owner
// are not patchable via this path (§4.4).
type ResourcePatch struct {
	Name        *string
	SizeGB      *float64
	Description *string
	Category    *string
	ContentHash *string
	StoragePath *string
	Active      *bool
	Seeds       *int
	Peers       *int
}

// SearchParams are the optional filters accepted by Registry.Search (§4.4).
type SearchParams struct {
	Keyword  string
	Category string
	MinSize  *float64
	MaxSize  *float64
	MinSeeds *int
}

// Registry is a keyed collection of resource descriptors owning its own id
// counter (§3, §4.4). Mutations are guarded by a dedicated mutex, per §5's
// "one lock per registry" model.
type Registry struct {
	mu      sync.RWMutex
	nextID  uint64
	records map[uint64]*SharedFile
	order   []uint64 // insertion order, for Search's stable ordering
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[uint64]*SharedFile)}
}

// Add assigns the next id, sets owner to callerIdentity and upload_time to
// now, and inserts the record. Not authenticated by the registry itself —
// trust is delegated to the System facade (§4.4).
func (r *Registry) Add(fields ResourceFields, callerIdentity string) *SharedFile {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec := &SharedFile{
		ID:          r.nextID,
		Name:        fields.Name,
		SizeGB:      fields.SizeGB,
		Uploader:    fields.Uploader,
		Description: fields.Description,
		Category:    fields.Category,
		ContentHash: fields.ContentHash,
		StoragePath: fields.StoragePath,
		Owner:       callerIdentity,
		UploadTime:  time.Now().UTC(),
		Active:      true,
	}
	r.records[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	registryLogger.Infof("resource added: id=%d owner=%s name=%s", rec.ID, rec.Owner, rec.Name)
	return rec
}

// Get returns the record for id, or nil if absent.
func (r *Registry) Get(id uint64) *SharedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[id]; ok {
		cp := *rec
		return &cp
	}
	return nil
}

// Remove physically deletes the record for id, succeeding only if it exists
// and requesterIdentity is its owner (§4.4).
func (r *Registry) Remove(id uint64, requesterIdentity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Owner != requesterIdentity {
		return false
	}
	delete(r.records, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	registryLogger.Infof("resource removed: id=%d owner=%s", id, requesterIdentity)
	return true
}

// Update applies patch to the record for id, succeeding only if it exists
// and requesterIdentity is its owner. Id and owner are never mutated by this
// path; all other fields, including Active, are (§4.4, §9 permissive rule).
func (r *Registry) Update(id uint64, patch ResourcePatch, requesterIdentity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Owner != requesterIdentity {
		return false
	}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.SizeGB != nil {
		rec.SizeGB = *patch.SizeGB
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Category != nil {
		rec.Category = *patch.Category
	}
	if patch.ContentHash != nil {
		rec.ContentHash = *patch.ContentHash
	}
	if patch.StoragePath != nil {
		rec.StoragePath = *patch.StoragePath
	}
	if patch.Active != nil {
		rec.Active = *patch.Active
	}
	if patch.Seeds != nil {
		rec.Seeds = clampNonNegative(*patch.Seeds)
	}
	if patch.Peers != nil {
		rec.Peers = clampNonNegative(*patch.Peers)
	}
	return true
}

// AdjustCounts adds the (possibly negative) seeds/peers deltas and clamps
// the resulting counts to >= 0. It does not check
// ownership: downloads mutate seed counts on the owner's registry on behalf
// of a different actor (§4.4).
func (r *Registry) AdjustCounts(id uint64, seedsDelta, peersDelta int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false
	}
	rec.Seeds = clampNonNegative(rec.Seeds + seedsDelta)
	rec.Peers = clampNonNegative(rec.Peers + peersDelta)
	return true
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ByOwner returns records filtered by owner, in insertion order.
func (r *Registry) ByOwner(identity string) []*SharedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*SharedFile
	for _, id := range r.order {
		rec := r.records[id]
		if rec.Owner == identity {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out
}

// Active returns records with active = true, in insertion order.
func (r *Registry) Active() []*SharedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*SharedFile
	for _, id := range r.order {
		rec := r.records[id]
		if rec.Active {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out
}

// Search returns active records matching every supplied filter: a
// case-insensitive substring match against name or description for
// Keyword, exact match for Category, inclusive numeric bounds for size and
// seeds. Result order is insertion order (§4.4).
func (r *Registry) Search(p SearchParams) []*SharedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keyword := strings.ToLower(p.Keyword)
	var out []*SharedFile
	for _, id := range r.order {
		rec := r.records[id]
		if !rec.Active {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(rec.Name), keyword) &&
			!strings.Contains(strings.ToLower(rec.Description), keyword) {
			continue
		}
		if p.Category != "" && rec.Category != p.Category {
			continue
		}
		if p.MinSize != nil && rec.SizeGB < *p.MinSize {
			continue
		}
		if p.MaxSize != nil && rec.SizeGB > *p.MaxSize {
			continue
		}
		if p.MinSeeds != nil && rec.Seeds < *p.MinSeeds {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

// All returns every record regardless of activation state, in insertion
// order — backs §6's get_all_resources.
func (r *Registry) All() []*SharedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SharedFile, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.records[id]
		out = append(out, &cp)
	}
	return out
}

package asset

import (
	"sync"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
)

// MemRegistry is an in-memory, concurrency-safe Registry implementation.
// Safe for concurrent snapshot reads per spec §5 ("the asset registry is
// shared read-only; it must be safe for concurrent snapshot reads").
type MemRegistry struct {
	mu    sync.RWMutex
	descs map[ID]Description
}

// NewMemRegistry creates an empty registry. The native asset is always
// resolvable (decimals fixed at NativeDecimals) without registration.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{descs: make(map[ID]Description)}
}

// Register adds or replaces metadata for an issued asset.
func (r *MemRegistry) Register(id ID, desc Description) error {
	if desc.Decimals > MaxDecimals {
		return errs.Newf(errs.DomainError, "decimals %d exceeds max %d", desc.Decimals, MaxDecimals)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.descs[id] = desc
	return nil
}

// Decimals resolves an asset's decimal precision.
func (r *MemRegistry) Decimals(a Asset) (uint8, error) {
	if a.Native {
		return NativeDecimals, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descs[a.ID]
	if !ok {
		return 0, errs.Newf(errs.NotFound, "asset %s not registered", a)
	}
	return desc.Decimals, nil
}

// Describe resolves full asset metadata.
func (r *MemRegistry) Describe(a Asset) (Description, error) {
	if a.Native {
		return Description{Decimals: NativeDecimals, Name: "native"}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descs[a.ID]
	if !ok {
		return Description{}, errs.Newf(errs.NotFound, "asset %s not registered", a)
	}
	return desc, nil
}

var _ Registry = (*MemRegistry)(nil)

package isis

import (
	"sync"

	radix "github.com/armon/go-radix"

	"github.com/zebra-rs/zebra-go/isispkt"
)

// HostnameMap resolves a system ID to the Dynamic Hostname TLV (type
// 137) value it last advertised, for CLI/log display ("router1" instead
// of "0000.0000.0001"). Backed by armon/go-radix rather than a plain map
// so a prefix walk (WalkPrefix) is a tree walk instead of a full scan.
// The tree is keyed by the dotted system-ID string, not by hostname.
type HostnameMap struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

func NewHostnameMap() *HostnameMap {
	return &HostnameMap{tree: radix.New()}
}

// Set records the hostname a system ID advertised in its LSP.
func (h *HostnameMap) Set(id isispkt.SystemID, hostname string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree.Insert(id.String(), hostname)
}

// Delete removes a system ID's hostname, e.g. once its LSP is purged.
func (h *HostnameMap) Delete(id isispkt.SystemID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree.Delete(id.String())
}

// Lookup returns the hostname for id, falling back to its dotted system
// ID string if none was ever advertised.
func (h *HostnameMap) Lookup(id isispkt.SystemID) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if v, ok := h.tree.Get(id.String()); ok {
		return v.(string)
	}
	return id.String()
}

// WalkPrefix calls fn for every system ID whose string form starts with
// prefix, the primitive the CLI's command-path completion uses.
func (h *HostnameMap) WalkPrefix(prefix string, fn func(systemID, hostname string) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.tree.WalkPrefix(prefix, func(k string, v interface{}) bool {
		return !fn(k, v.(string))
	})
}

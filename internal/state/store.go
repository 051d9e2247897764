package state

import "sync"

// Store keeps the latest snapshot per owner.
//
// Versions increase monotonically per owner across publishes. Published
// snapshots are immutable; Publish deep-copies the data map so later edits
// by the producer cannot reach readers.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	mu     sync.Mutex
	latest map[string]*Snapshot
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{latest: make(map[string]*Snapshot)}
}

// Publish records a new snapshot version for owner and returns it.
func (st *Store) Publish(owner string, status Status, data map[string]any) *Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	var version int64 = 1
	if prev, ok := st.latest[owner]; ok {
		version = prev.Version + 1
	}
	snap := &Snapshot{
		Owner:   owner,
		Version: version,
		Status:  status,
		Data:    deepCopyMap(data),
	}
	st.latest[owner] = snap
	return snap
}

// Get returns the latest snapshot for owner, or nil when the owner has
// never published.
func (st *Store) Get(owner string) *Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.latest[owner]
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

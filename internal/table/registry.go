package table

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry is a read-only-after-build, concurrency-safe lookup from table
// name to Table. Evaluations across a batch share one Registry and read
// from it concurrently, so it is backed by xsync's lock-free map rather
// than a mutex-guarded one.
type Registry struct {
	tables *xsync.MapOf[string, Table]
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tables: xsync.NewMapOf[string, Table]()}
}

// Register adds a table under name. Registering the same name twice is an
// error: table registries are assembled once at graph-build time.
func (r *Registry) Register(name string, t Table) error {
	if _, loaded := r.tables.LoadOrStore(name, t); loaded {
		return fmt.Errorf("table: %q already registered", name)
	}
	return nil
}

// Get returns the table registered under name.
func (r *Registry) Get(name string) (Table, bool) {
	return r.tables.Load(name)
}

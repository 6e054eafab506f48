// Package metrics is a tiny counter seam so pipeline code never depends on
// a specific metrics vendor. The default backend is a nop; cmd/augment
// installs a real one (see internal/metrics/datadog) when asked.
package metrics

import "sync"

// Backend receives counter increments and controls delivery.
type Backend interface {
	// IncCounter adds value to the named counter. Tags are "key:value"
	// strings.
	IncCounter(name string, value float64, tags ...string)

	// Flush submits buffered metrics now.
	Flush() error

	// Close flushes one final time and releases resources.
	Close() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// IncCounter adds value to the named counter on the installed backend.
func IncCounter(name string, value float64, tags ...string) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, value, tags...)
}

// Flush submits buffered metrics on the installed backend.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	return b.Flush()
}

// Close closes the installed backend and reinstalls the nop.
func Close() error {
	mu.Lock()
	b := backend
	backend = nopBackend{}
	mu.Unlock()
	return b.Close()
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, ...string) {}
func (nopBackend) Flush() error                          { return nil }
func (nopBackend) Close() error                          { return nil }

package db

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryProvider implements DatabaseProvider with an in-process map. Used by
// tests and for throwaway nodes; nothing survives a restart.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryProvider creates a new in-memory provider
func NewMemoryProvider() DatabaseProvider {
	return &MemoryProvider{data: make(map[string][]byte)}
}

// Get retrieves a value by key
func (p *MemoryProvider) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.data[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// GetBatch retrieves multiple values by keys
func (p *MemoryProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := p.data[string(key)]; ok {
			result[string(key)] = append([]byte(nil), value...)
		}
	}
	return result, nil
}

// Put stores a key-value pair
func (p *MemoryProvider) Put(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data[string(key)] = append([]byte(nil), value...)
	return nil
}

// Delete removes a key-value pair
func (p *MemoryProvider) Delete(key []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.data, string(key))
	return nil
}

// Has checks if a key exists
func (p *MemoryProvider) Has(key []byte) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.data[string(key)]
	return ok, nil
}

// Close closes the provider
func (p *MemoryProvider) Close() error {
	return nil
}

// Batch returns a new batch for atomic operations
func (p *MemoryProvider) Batch() DatabaseBatch {
	return &MemoryBatch{provider: p}
}

// IteratePrefix iterates over all key-value pairs with the given prefix in
// key order, matching the on-disk backends.
func (p *MemoryProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	p.mu.RLock()
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = append([]byte(nil), p.data[k]...)
	}
	p.mu.RUnlock()

	for i, k := range keys {
		if !callback([]byte(k), values[i]) {
			break
		}
	}
	return nil
}

type memoryBatchOp struct {
	key    string
	value  []byte
	delete bool
}

// MemoryBatch implements DatabaseBatch for the in-memory provider
type MemoryBatch struct {
	provider *MemoryProvider
	ops      []memoryBatchOp
}

// Put adds a key-value pair to the batch
func (b *MemoryBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memoryBatchOp{
		key:   string(key),
		value: append([]byte(nil), value...),
	})
}

// Delete adds a deletion to the batch
func (b *MemoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, memoryBatchOp{key: string(key), delete: true})
}

// Write commits all operations in the batch
func (b *MemoryBatch) Write() error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()

	for _, op := range b.ops {
		if op.delete {
			delete(b.provider.data, op.key)
			continue
		}
		b.provider.data[op.key] = op.value
	}
	return nil
}

// Reset clears the batch
func (b *MemoryBatch) Reset() {
	b.ops = b.ops[:0]
}

// Close releases batch resources
func (b *MemoryBatch) Close() {
	b.ops = nil
}

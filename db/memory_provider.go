package db

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryProvider keeps everything in a map. Used by tests and by
// throwaway nodes started with store type "memory".
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string][]byte)}
}

func (p *MemoryProvider) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[string(key)]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (p *MemoryProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := p.data[string(k)]; ok {
			result[string(k)] = bytes.Clone(v)
		}
	}
	return result, nil
}

func (p *MemoryProvider) Put(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[string(key)] = append([]byte{}, value...)
	return nil
}

func (p *MemoryProvider) Delete(key []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, string(key))
	return nil
}

func (p *MemoryProvider) Has(key []byte) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.data[string(key)]
	return ok, nil
}

func (p *MemoryProvider) Close() error {
	return nil
}

func (p *MemoryProvider) Batch() DatabaseBatch {
	return &MemoryBatch{provider: p}
}

// IteratePrefix visits keys in byte order, like the on-disk backends.
func (p *MemoryProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	p.mu.RLock()
	keys := make([]string, 0)
	for k := range p.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = bytes.Clone(p.data[k])
	}
	p.mu.RUnlock()

	for i, k := range keys {
		if !callback([]byte(k), values[i]) {
			break
		}
	}
	return nil
}

type memoryOp struct {
	key    string
	value  []byte
	delete bool
}

// MemoryBatch applies its ops under one lock acquisition.
type MemoryBatch struct {
	provider *MemoryProvider
	ops      []memoryOp
}

func (b *MemoryBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memoryOp{key: string(key), value: append([]byte{}, value...)})
}

func (b *MemoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, memoryOp{key: string(key), delete: true})
}

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
	b.ops = nil
	return nil
}

func (b *MemoryBatch) Reset() {
	b.ops = nil
}

func (b *MemoryBatch) Close() {}

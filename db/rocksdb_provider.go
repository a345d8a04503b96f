//go:build rocksdb
// +build rocksdb

package db

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/linxGnu/grocksdb"

	"github.com/mezonai/multisig/logx"
)

// RocksDBProvider implements IterableProvider for RocksDB
type RocksDBProvider struct {
	once sync.Once
	db   *grocksdb.DB
	ro   *grocksdb.ReadOptions
	wo   *grocksdb.WriteOptions
}

// NewRocksDBProvider opens (or creates) a RocksDB database in directory.
// Writes are synced so a committed batch survives a crash.
func NewRocksDBProvider(directory string) (DatabaseProvider, error) {
	opts := grocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)

	db, err := grocksdb.OpenDb(opts, directory)
	if err != nil {
		return nil, fmt.Errorf("failed to open RocksDB: %w", err)
	}
	logx.Info("ROCKSDB", "opened database at", directory)

	wo := grocksdb.NewDefaultWriteOptions()
	wo.SetSync(true)
	return &RocksDBProvider{
		db: db,
		ro: grocksdb.NewDefaultReadOptions(),
		wo: wo,
	}, nil
}

func (p *RocksDBProvider) Get(key []byte) ([]byte, error) {
	value, err := p.db.Get(p.ro, key)
	if err != nil {
		return nil, err
	}
	defer value.Free()

	if !value.Exists() {
		return nil, nil
	}
	return append([]byte{}, value.Data()...), nil
}

func (p *RocksDBProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	values, err := p.db.MultiGet(p.ro, keys...)
	if err != nil {
		return nil, err
	}
	defer values.Destroy()
	for i, v := range values {
		if v.Exists() {
			result[string(keys[i])] = append([]byte{}, v.Data()...)
		}
	}
	return result, nil
}

func (p *RocksDBProvider) Put(key, value []byte) error {
	return p.db.Put(p.wo, key, value)
}

func (p *RocksDBProvider) Delete(key []byte) error {
	return p.db.Delete(p.wo, key)
}

func (p *RocksDBProvider) Has(key []byte) (bool, error) {
	value, err := p.db.Get(p.ro, key)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}
	defer value.Free()
	return value.Exists(), nil
}

// Close is safe to call from every store sharing the provider.
func (p *RocksDBProvider) Close() error {
	p.once.Do(func() {
		p.ro.Destroy()
		p.wo.Destroy()
		p.db.Close()
	})
	return nil
}

func (p *RocksDBProvider) Batch() DatabaseBatch {
	return &RocksDBBatch{
		batch:    grocksdb.NewWriteBatch(),
		provider: p,
	}
}

func (p *RocksDBProvider) IteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	it := p.db.NewIterator(p.ro)
	defer it.Close()

	for it.Seek(prefix); it.Valid(); it.Next() {
		k := it.Key()
		v := it.Value()
		if !bytes.HasPrefix(k.Data(), prefix) {
			k.Free()
			v.Free()
			break
		}
		kdata := append([]byte(nil), k.Data()...)
		vdata := append([]byte(nil), v.Data()...)
		k.Free()
		v.Free()
		if !fn(kdata, vdata) {
			break
		}
	}
	return it.Err()
}

// RocksDBBatch implements DatabaseBatch for RocksDB
type RocksDBBatch struct {
	batch    *grocksdb.WriteBatch
	provider *RocksDBProvider
}

func (b *RocksDBBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *RocksDBBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *RocksDBBatch) Write() error {
	return b.provider.db.Write(b.provider.wo, b.batch)
}

func (b *RocksDBBatch) Reset() {
	b.batch.Clear()
}

func (b *RocksDBBatch) Close() {
	b.batch.Destroy()
}

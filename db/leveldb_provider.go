package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/mezonai/multisig/logx"
)

// LevelDBProvider implements DatabaseProvider for LevelDB
type LevelDBProvider struct {
	once sync.Once
	db   *leveldb.DB
	wo   *opt.WriteOptions
}

// NewLevelDBProvider opens (or creates) a LevelDB database in directory.
// Batches are written with fsync so a committed call survives a crash.
func NewLevelDBProvider(directory string) (DatabaseProvider, error) {
	db, err := leveldb.OpenFile(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB: %w", err)
	}
	logx.Info("LEVELDB", "opened database at", directory)

	return &LevelDBProvider{db: db, wo: &opt.WriteOptions{Sync: true}}, nil
}

func (p *LevelDBProvider) Get(key []byte) ([]byte, error) {
	value, err := p.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// GetBatch reads each key on one snapshot so the result is consistent.
func (p *LevelDBProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	snap, err := p.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("leveldb snapshot: %w", err)
	}
	defer snap.Release()

	for _, key := range keys {
		value, err := snap.Get(key, nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result[string(key)] = value
	}
	return result, nil
}

func (p *LevelDBProvider) Put(key, value []byte) error {
	return p.db.Put(key, value, p.wo)
}

func (p *LevelDBProvider) Delete(key []byte) error {
	return p.db.Delete(key, p.wo)
}

func (p *LevelDBProvider) Has(key []byte) (bool, error) {
	return p.db.Has(key, nil)
}

// Close is safe to call from every store sharing the provider.
func (p *LevelDBProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *LevelDBProvider) Batch() DatabaseBatch {
	return &LevelDBBatch{
		batch: new(leveldb.Batch),
		db:    p.db,
		wo:    p.wo,
	}
}

func (p *LevelDBProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	iter := p.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if !callback(key, value) {
			break
		}
	}
	return iter.Error()
}

// LevelDBBatch implements DatabaseBatch for LevelDB
type LevelDBBatch struct {
	batch *leveldb.Batch
	db    *leveldb.DB
	wo    *opt.WriteOptions
}

func (b *LevelDBBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *LevelDBBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *LevelDBBatch) Write() error {
	return b.db.Write(b.batch, b.wo)
}

func (b *LevelDBBatch) Reset() {
	b.batch.Reset()
}

// Close is a no-op: LevelDB batches hold no native resources.
func (b *LevelDBBatch) Close() {}

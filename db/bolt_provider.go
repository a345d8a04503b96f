package db

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mezonai/multisig/logx"
)

var boltBucket = []byte("multisig")

// BoltProvider implements IterableProvider on a single bbolt bucket.
type BoltProvider struct {
	once sync.Once
	db   *bolt.DB
}

// NewBoltProvider opens path as a bbolt file, creating it when missing.
func NewBoltProvider(path string) (*BoltProvider, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	logx.Info("BOLT", "opened database at", path)
	return &BoltProvider{db: db}, nil
}

func (p *BoltProvider) Get(key []byte) ([]byte, error) {
	var out []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get(key); v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, err
}

func (p *BoltProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	err := p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for _, k := range keys {
			if v := b.Get(k); v != nil {
				result[string(k)] = append([]byte{}, v...)
			}
		}
		return nil
	})
	return result, err
}

func (p *BoltProvider) Put(key, value []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

func (p *BoltProvider) Delete(key []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
}

func (p *BoltProvider) Has(key []byte) (bool, error) {
	var found bool
	err := p.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(boltBucket).Get(key) != nil
		return nil
	})
	return found, err
}

func (p *BoltProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *BoltProvider) Batch() DatabaseBatch {
	return &BoltBatch{db: p.db}
}

func (p *BoltProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return p.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !callback(append([]byte{}, k...), append([]byte{}, v...)) {
				break
			}
		}
		return nil
	})
}

type boltOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BoltBatch replays its ops inside one read-write transaction on Write.
type BoltBatch struct {
	db  *bolt.DB
	ops []boltOp
}

func (b *BoltBatch) Put(key, value []byte) {
	b.ops = append(b.ops, boltOp{key: append([]byte{}, key...), value: append([]byte{}, value...)})
}

func (b *BoltBatch) Delete(key []byte) {
	b.ops = append(b.ops, boltOp{key: append([]byte{}, key...), delete: true})
}

func (b *BoltBatch) Write() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for _, op := range b.ops {
			if op.delete {
				if err := bucket.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.ops = nil
	}
	return err
}

func (b *BoltBatch) Reset() {
	b.ops = nil
}

func (b *BoltBatch) Close() {}

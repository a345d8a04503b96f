package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/logx"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// MemoryStoreType keeps state in process memory only
	MemoryStoreType StoreType = "memory"

	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType uses a single bbolt file inside Directory
	BoltStoreType StoreType = "bolt"

	// RocksDBStoreType uses the RocksDB implementation
	RocksDBStoreType StoreType = "rocksdb"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"
)

const boltFileName = "multisig.db"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`

	// Redis connection, used only by RedisStoreType
	RedisAddress   string `json:"redis_address,omitempty" yaml:"redis_address,omitempty"`
	RedisDB        int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	RedisNamespace string `json:"redis_namespace,omitempty" yaml:"redis_namespace,omitempty"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case MemoryStoreType:
		return nil
	case LevelDBStoreType, BoltStoreType, RocksDBStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
		return nil
	case RedisStoreType:
		if sc.RedisAddress == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	case "":
		return fmt.Errorf("store type cannot be empty")
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// Stores bundles every store sharing one provider.
type Stores struct {
	Provider  db.DatabaseProvider
	Accounts  AccountStore
	Txs       TxStore
	TxMetas   TxMetaStore
	StateMeta StateMetaStore
}

// Close closes the shared provider once.
func (s *Stores) Close() {
	s.Accounts.MustClose()
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider creates store instances using the provider pattern
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (*Stores, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return NewStores(provider)
}

// NewStores builds every store on top of an already opened provider.
func NewStores(provider db.DatabaseProvider) (*Stores, error) {
	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}

	txStore, err := NewGenericTxStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction store: %w", err)
	}

	txMetaStore, err := NewGenericTxMetaStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction meta store: %w", err)
	}

	return &Stores{
		Provider:  provider,
		Accounts:  accStore,
		Txs:       txStore,
		TxMetas:   txMetaStore,
		StateMeta: NewGenericStateMetaStore(provider),
	}, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logx.Info("STORE", "opening", string(config.Type), "store", config.Directory)

	switch config.Type {
	case MemoryStoreType:
		return db.NewMemoryProvider(), nil

	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return db.NewBoltProvider(filepath.Join(config.Directory, boltFileName))

	case RocksDBStoreType:
		return db.NewRocksDBProvider(config.Directory)

	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddress, config.RedisDB, config.RedisNamespace)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates new store instances using the global factory
func CreateStore(config *StoreConfig) (*Stores, error) {
	return globalFactory.CreateStoreWithProvider(config)
}

package store

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/types"
)

type AccountStore interface {
	Store(account *types.Account) error
	StoreBatch(batch db.DatabaseBatch, accounts []*types.Account) error
	GetByAddr(addr solana.PublicKey) (*types.Account, error)
	GetBatch(addrs []solana.PublicKey) (map[solana.PublicKey]*types.Account, error)
	ExistsByAddr(addr solana.PublicKey) (bool, error)
	ListByOwner(owner solana.PublicKey) ([]*types.Account, error)
	ListAll() ([]*types.Account, error)
	MustClose()
}

// accountEnvelope is the persisted form of an account.
type accountEnvelope struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
	Data    string `json:"data,omitempty"`
}

func encodeAccount(acc *types.Account) ([]byte, error) {
	balance := "0"
	if acc.Balance != nil {
		balance = acc.Balance.Dec()
	}
	env := accountEnvelope{
		Address: acc.Address.String(),
		Owner:   acc.Owner.String(),
		Balance: balance,
		Data:    base64.StdEncoding.EncodeToString(acc.Data),
	}
	data, err := jsonx.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}
	return data, nil
}

func decodeAccount(raw []byte) (*types.Account, error) {
	var env accountEnvelope
	if err := jsonx.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	addr, err := solana.PublicKeyFromBase58(env.Address)
	if err != nil {
		return nil, fmt.Errorf("bad account address %q: %w", env.Address, err)
	}
	owner, err := solana.PublicKeyFromBase58(env.Owner)
	if err != nil {
		return nil, fmt.Errorf("bad account owner %q: %w", env.Owner, err)
	}
	balance, err := uint256.FromDecimal(env.Balance)
	if err != nil {
		return nil, fmt.Errorf("bad account balance %q: %w", env.Balance, err)
	}
	data, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("bad account data: %w", err)
	}
	return &types.Account{Address: addr, Owner: owner, Balance: balance, Data: data}, nil
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	if err := as.dbProvider.Put(as.getDbKey(account.Address), data); err != nil {
		return fmt.Errorf("failed to write account to db: %w", err)
	}
	return nil
}

// StoreBatch stages accounts into batch. The caller commits it.
func (as *GenericAccountStore) StoreBatch(batch db.DatabaseBatch, accounts []*types.Account) error {
	for _, account := range accounts {
		data, err := encodeAccount(account)
		if err != nil {
			return err
		}
		batch.Put(as.getDbKey(account.Address), data)
	}
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr solana.PublicKey) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}
	return decodeAccount(data)
}

// GetBatch retrieves multiple accounts. Missing accounts are absent from the map.
func (as *GenericAccountStore) GetBatch(addrs []solana.PublicKey) (map[solana.PublicKey]*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	keys := make([][]byte, len(addrs))
	for i, addr := range addrs {
		keys[i] = as.getDbKey(addr)
	}
	dataMap, err := as.dbProvider.GetBatch(keys)
	if err != nil {
		return nil, fmt.Errorf("failed to batch get accounts: %w", err)
	}

	result := make(map[solana.PublicKey]*types.Account, len(dataMap))
	for i, addr := range addrs {
		data, ok := dataMap[string(keys[i])]
		if !ok {
			continue
		}
		acc, err := decodeAccount(data)
		if err != nil {
			return nil, err
		}
		result[addr] = acc
	}
	return result, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr solana.PublicKey) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

// ListByOwner scans every account. It needs an iterable provider.
func (as *GenericAccountStore) ListByOwner(owner solana.PublicKey) ([]*types.Account, error) {
	return as.scan(func(acc *types.Account) bool { return acc.Owner.Equals(owner) })
}

// ListAll returns every stored account in key order.
func (as *GenericAccountStore) ListAll() ([]*types.Account, error) {
	return as.scan(func(*types.Account) bool { return true })
}

func (as *GenericAccountStore) scan(keep func(*types.Account) bool) ([]*types.Account, error) {
	it, ok := as.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("provider %T cannot iterate", as.dbProvider)
	}

	as.mu.RLock()
	defer as.mu.RUnlock()

	var out []*types.Account
	var decodeErr error
	err := it.IteratePrefix([]byte(PrefixAccount), func(_, value []byte) bool {
		acc, err := decodeAccount(value)
		if err != nil {
			decodeErr = err
			return false
		}
		if keep(acc) {
			out = append(out, acc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, decodeErr
}

func (as *GenericAccountStore) MustClose() {
	err := as.dbProvider.Close()
	if err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr solana.PublicKey) []byte {
	return []byte(PrefixAccount + addr.String())
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func memoryStores(t *testing.T) *Stores {
	t.Helper()
	s, err := CreateStore(&StoreConfig{Type: MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestAccountStoreRoundTrip(t *testing.T) {
	s := memoryStores(t)
	owner := newKey(t).PublicKey()
	acc := &types.Account{
		Address: newKey(t).PublicKey(),
		Owner:   owner,
		Balance: uint256.NewInt(12345),
		Data:    []byte{1, 2, 3, 255},
	}

	require.NoError(t, s.Accounts.Store(acc))

	got, err := s.Accounts.GetByAddr(acc.Address)
	require.NoError(t, err)
	assert.Equal(t, acc, got)

	exists, err := s.Accounts.ExistsByAddr(acc.Address)
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := s.Accounts.GetByAddr(newKey(t).PublicKey())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountStoreBatchAndList(t *testing.T) {
	s := memoryStores(t)
	program := newKey(t).PublicKey()
	a := types.NewSystemAccount(newKey(t).PublicKey())
	b := &types.Account{Address: newKey(t).PublicKey(), Owner: program, Balance: uint256.NewInt(1), Data: []byte{9}}

	tm := db.NewDBTxManager(s.Provider)
	require.NoError(t, tm.WithBatch(func(batch db.DatabaseBatch) error {
		return s.Accounts.StoreBatch(batch, []*types.Account{a, b})
	}))

	got, err := s.Accounts.GetBatch([]solana.PublicKey{a.Address, b.Address, newKey(t).PublicKey()})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, b.Data, got[b.Address].Data)

	owned, err := s.Accounts.ListByOwner(program)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, b.Address, owned[0].Address)
}

func TestTxStoreDedup(t *testing.T) {
	s := memoryStores(t)
	key := newKey(t)
	tx := transaction.NewTransaction(3, transaction.Instruction{
		ProgramID: newKey(t).PublicKey(),
		Accounts:  []*transaction.AccountMeta{transaction.Meta(key.PublicKey(), true, true)},
		Data:      []byte{0},
	})
	require.NoError(t, tx.Sign(key))

	seen, err := s.Txs.HasDedupHash(tx.DedupHash())
	require.NoError(t, err)
	assert.False(t, seen)

	tm := db.NewDBTxManager(s.Provider)
	require.NoError(t, tm.WithBatch(func(batch db.DatabaseBatch) error {
		return s.Txs.StoreBatch(batch, []*transaction.Transaction{tx})
	}))

	seen, err = s.Txs.HasDedupHash(tx.DedupHash())
	require.NoError(t, err)
	assert.True(t, seen)

	got, err := s.Txs.GetByID(tx.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.Signatures, got.Signatures)
	assert.Equal(t, tx.Instructions[0].Data, got.Instructions[0].Data)
}

func TestTxMetaStore(t *testing.T) {
	s := memoryStores(t)
	meta := &types.TransactionMeta{TxID: "abc", Sequence: 4, Status: types.TxStatusFailed, ErrorCode: "too_early"}
	require.NoError(t, s.TxMetas.Store(meta))

	got, err := s.TxMetas.GetByID("abc")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	batch, err := s.TxMetas.GetBatch([]string{"abc", "nope"})
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	none, err := s.TxMetas.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStateMetaStore(t *testing.T) {
	s := memoryStores(t)
	_, ok, err := s.StateMeta.LatestSequence()
	require.NoError(t, err)
	assert.False(t, ok)

	hash := [32]byte{1, 2, 3}
	tm := db.NewDBTxManager(s.Provider)
	require.NoError(t, tm.WithBatch(func(batch db.DatabaseBatch) error {
		s.StateMeta.SetBankHash(batch, 7, hash)
		return nil
	}))

	seq, ok, err := s.StateMeta.LatestSequence()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), seq)

	got, ok, err := s.StateMeta.GetBankHash(7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hash, got)
}

func TestStoreConfigValidate(t *testing.T) {
	assert.Error(t, (&StoreConfig{}).Validate())
	assert.Error(t, (&StoreConfig{Type: LevelDBStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: RedisStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: "mongo", Directory: "x"}).Validate())
	assert.NoError(t, (&StoreConfig{Type: MemoryStoreType}).Validate())
}

func TestBoltStorePersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	cfg := &StoreConfig{Type: BoltStoreType, Directory: dir}
	acc := types.NewSystemAccount(newKey(t).PublicKey())
	acc.Balance = uint256.NewInt(50)

	s, err := CreateStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Accounts.Store(acc))
	s.Close()

	s, err = CreateStore(cfg)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Accounts.GetByAddr(acc.Address)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(50), got.Balance.Uint64())
}

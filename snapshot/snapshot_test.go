package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/multisig/store"
	"github.com/mezonai/multisig/types"
)

func memoryStores(t *testing.T) *store.Stores {
	t.Helper()
	s, err := store.CreateStore(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func seedAccounts(t *testing.T, s *store.Stores, n int) []*types.Account {
	t.Helper()
	owner := solana.NewWallet().PublicKey()
	var out []*types.Account
	for i := 0; i < n; i++ {
		acc := &types.Account{
			Address: solana.NewWallet().PublicKey(),
			Owner:   owner,
			Balance: uint256.NewInt(uint64(1000 + i)),
			Data:    []byte{byte(i), 7, 7},
		}
		require.NoError(t, s.Accounts.Store(acc))
		out = append(out, acc)
	}
	return out
}

func TestWriteAndRestore(t *testing.T) {
	src := memoryStores(t)
	seeded := seedAccounts(t, src, 3)
	dir := t.TempDir()
	bankHash := [32]byte{9, 9, 9}

	path, err := WriteSnapshot(dir, src.Accounts, 42, bankHash)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	file, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), file.Meta.Sequence)
	assert.Len(t, file.Accounts, 3)

	dst := memoryStores(t)
	require.NoError(t, Restore(dst, file))

	for _, want := range seeded {
		got, err := dst.Accounts.GetByAddr(want.Address)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.Owner, got.Owner)
		assert.Equal(t, want.Balance.Uint64(), got.Balance.Uint64())
		assert.Equal(t, want.Data, got.Data)
	}
	seq, ok, err := dst.StateMeta.LatestSequence()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), seq)
	restored, ok, err := dst.StateMeta.GetBankHash(42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bankHash, restored)
}

func TestRestoreRejectsTamperedFile(t *testing.T) {
	src := memoryStores(t)
	seedAccounts(t, src, 2)
	path, err := WriteSnapshot(t.TempDir(), src.Accounts, 1, [32]byte{1})
	require.NoError(t, err)
	file, err := ReadSnapshot(path)
	require.NoError(t, err)

	file.Accounts[0].Balance = "999999"
	dst := memoryStores(t)
	err = Restore(dst, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state hash mismatch")

	all, err := dst.Accounts.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRestoreRefusesCommittedStore(t *testing.T) {
	src := memoryStores(t)
	seedAccounts(t, src, 1)
	path, err := WriteSnapshot(t.TempDir(), src.Accounts, 5, [32]byte{5})
	require.NoError(t, err)
	file, err := ReadSnapshot(path)
	require.NoError(t, err)

	dst := memoryStores(t)
	require.NoError(t, Restore(dst, file))
	err = Restore(dst, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already holds committed state")
}

func TestWriteSnapshotRemovesOlderFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "snapshot-old.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	keep := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	src := memoryStores(t)
	_, err := WriteSnapshot(dir, src.Accounts, 0, [32]byte{})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/multisig/store"
)

func TestNodeConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, NodeConfigFile)

	cfg := DefaultNodeConfig(dir)
	member := solana.NewWallet().PublicKey()
	cfg.Genesis = []GenesisAccount{{Address: member.String(), Amount: 500}}
	require.NoError(t, WriteNodeConfig(path, cfg))

	loaded, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, store.LevelDBStoreType, loaded.Store.Type)
	assert.Equal(t, filepath.Join(dir, DataDirName), loaded.Store.Directory)
	assert.Equal(t, DefaultProgramID, loaded.Program().String())

	genesis, err := loaded.GenesisAccounts()
	require.NoError(t, err)
	require.Len(t, genesis, 1)
	assert.Equal(t, member, genesis[0].Address)
	assert.Equal(t, uint64(500), genesis[0].Amount.Uint64())
}

func TestLoadNodeConfigDefaultsProgramID(t *testing.T) {
	path := filepath.Join(t.TempDir(), NodeConfigFile)
	yml := "config:\n  store:\n    type: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultProgramID, cfg.ProgramID)
	assert.Equal(t, DefaultRPCAddr, cfg.RPCAddr)
	assert.Equal(t, store.MemoryStoreType, cfg.Store.Type)
}

func TestLoadNodeConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad program":   "config:\n  program_id: nope\n  store:\n    type: memory\n",
		"bad store":     "config:\n  store:\n    type: cassandra\n",
		"missing dir":   "config:\n  store:\n    type: leveldb\n",
		"bad genesis":   "config:\n  store:\n    type: memory\n  genesis:\n    - address: xyz\n      amount: 1\n",
		"not yaml list": "config: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadNodeConfig(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadNodeConfig(filepath.Join(dir, "absent.yml"))
	assert.Error(t, err)
}

func TestRentConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RuntimeConfigFile)

	missing, err := LoadRentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRentConfig(), missing)

	require.NoError(t, WriteRentConfig(path, &RentConfig{
		LamportsPerByteYear:    10,
		ExemptionThreshold:     1,
		AccountStorageOverhead: 0,
	}))
	loaded, err := LoadRentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), loaded.LamportsPerByteYear)

	rent := loaded.Rent()
	assert.Equal(t, uint64(100), rent.MinimumBalance(10).Uint64())
}

func TestRentConfigPartialSectionKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), RuntimeConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("[rent]\nexemption_threshold = 5\n"), 0o644))

	loaded, err := LoadRentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.ExemptionThreshold)
	assert.Equal(t, uint64(DefaultLamportsPerByteYear), loaded.LamportsPerByteYear)
	assert.Equal(t, uint64(DefaultAccountStorageOverhead), loaded.AccountStorageOverhead)
}

func TestKeypairRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	require.NoError(t, WriteKeypair(path, key))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())

	_, err = LoadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

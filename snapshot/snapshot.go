package snapshot

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/ledger"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/store"
	"github.com/mezonai/multisig/types"
)

const FileName = "snapshot-latest.json"

// Meta identifies the committed state a snapshot was taken at. StateHash
// covers every account in the file.
type Meta struct {
	Sequence  uint64 `json:"sequence"`
	BankHash  string `json:"bank_hash"`
	StateHash string `json:"state_hash"`
}

type AccountEntry struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
	Data    string `json:"data,omitempty"`
}

type File struct {
	Meta     Meta           `json:"meta"`
	Accounts []AccountEntry `json:"accounts"`
}

// ComputeStateHash hashes the full account set.
func ComputeStateHash(accounts []*types.Account) [32]byte {
	return ledger.ComputeAccountsDeltaHash(accounts)
}

func toEntry(acc *types.Account) AccountEntry {
	return AccountEntry{
		Address: acc.Address.String(),
		Owner:   acc.Owner.String(),
		Balance: acc.Balance.Dec(),
		Data:    base64.StdEncoding.EncodeToString(acc.Data),
	}
}

func (e AccountEntry) toAccount() (*types.Account, error) {
	addr, err := solana.PublicKeyFromBase58(e.Address)
	if err != nil {
		return nil, fmt.Errorf("address %q: %w", e.Address, err)
	}
	owner, err := solana.PublicKeyFromBase58(e.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner %q: %w", e.Owner, err)
	}
	balance, err := uint256.FromDecimal(e.Balance)
	if err != nil {
		return nil, fmt.Errorf("balance %q: %w", e.Balance, err)
	}
	data, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("data of %s: %w", e.Address, err)
	}
	return &types.Account{Address: addr, Owner: owner, Balance: balance, Data: data}, nil
}

// WriteSnapshot writes every account with the given sequence and bank hash to
// dir/snapshot-latest.json and removes older snapshot files.
func WriteSnapshot(dir string, accounts store.AccountStore, seq uint64, bankHash [32]byte) (string, error) {
	all, err := accounts.ListAll()
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	stateHash := ComputeStateHash(all)

	file := File{
		Meta: Meta{
			Sequence:  seq,
			BankHash:  hex.EncodeToString(bankHash[:]),
			StateHash: hex.EncodeToString(stateHash[:]),
		},
		Accounts: make([]AccountEntry, len(all)),
	}
	for i, acc := range all {
		file.Accounts[i] = toEntry(acc)
	}

	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir snapshot dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	if err := cleanupOldSnapshots(dir, path); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Wrote %d accounts at sequence %d to %s", len(all), seq, path))
	return path, nil
}

// ReadSnapshot loads a snapshot file from disk
func ReadSnapshot(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s File
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &s, nil
}

// Restore loads a snapshot into stores that have never committed a
// transaction. The state hash is checked before anything is written.
func Restore(stores *store.Stores, file *File) error {
	if _, ok, err := stores.StateMeta.LatestSequence(); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("target store already holds committed state")
	}

	accounts := make([]*types.Account, len(file.Accounts))
	for i, e := range file.Accounts {
		acc, err := e.toAccount()
		if err != nil {
			return fmt.Errorf("snapshot account %d: %w", i, err)
		}
		accounts[i] = acc
	}
	stateHash := ComputeStateHash(accounts)
	if got := hex.EncodeToString(stateHash[:]); got != file.Meta.StateHash {
		return fmt.Errorf("state hash mismatch: file %s, computed %s", file.Meta.StateHash, got)
	}
	rawBankHash, err := hex.DecodeString(file.Meta.BankHash)
	if err != nil || len(rawBankHash) != 32 {
		return fmt.Errorf("invalid bank hash %q", file.Meta.BankHash)
	}
	var bankHash [32]byte
	copy(bankHash[:], rawBankHash)

	err = db.NewDBTxManager(stores.Provider).WithBatch(func(batch db.DatabaseBatch) error {
		if err := stores.Accounts.StoreBatch(batch, accounts); err != nil {
			return err
		}
		if file.Meta.Sequence > 0 {
			stores.StateMeta.SetBankHash(batch, file.Meta.Sequence, bankHash)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Restored %d accounts at sequence %d", len(accounts), file.Meta.Sequence))
	return nil
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, file.Name())
		if path == latestPath {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

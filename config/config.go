package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/multisig/common"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/ledger"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/store"
)

// DefaultNodeConfig places a LevelDB store under home.
func DefaultNodeConfig(home string) *NodeConfig {
	return &NodeConfig{
		ProgramID: DefaultProgramID,
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: filepath.Join(home, DataDirName),
		},
		MetricsAddr: DefaultMetricsAddr,
		RPCAddr:     DefaultRPCAddr,
	}
}

func DefaultRentConfig() *RentConfig {
	return &RentConfig{
		LamportsPerByteYear:    DefaultLamportsPerByteYear,
		ExemptionThreshold:     DefaultExemptionThreshold,
		AccountStorageOverhead: DefaultAccountStorageOverhead,
	}
}

// LoadNodeConfig reads and parses node.yml
func LoadNodeConfig(path string) (*NodeConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open node config: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	if err := yaml.NewDecoder(file).Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode node config %s: %w", path, err)
	}
	cfg := &cfgFile.Config
	if cfg.ProgramID == "" {
		cfg.ProgramID = DefaultProgramID
	}
	if cfg.RPCAddr == "" {
		cfg.RPCAddr = DefaultRPCAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", "loaded node config", path, "store", string(cfg.Store.Type), "genesis accounts", len(cfg.Genesis))
	return cfg, nil
}

// Validate checks addresses and the store section.
func (c *NodeConfig) Validate() error {
	if _, err := common.ParseAddress(c.ProgramID); err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store: %w", err)
	}
	for i, g := range c.Genesis {
		if _, err := common.ParseAddress(g.Address); err != nil {
			return fmt.Errorf("invalid genesis[%d] address: %w", i, err)
		}
	}
	return nil
}

func (c *NodeConfig) Program() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

// GenesisAccounts converts the genesis section into ledger accounts.
func (c *NodeConfig) GenesisAccounts() ([]ledger.GenesisAccount, error) {
	out := make([]ledger.GenesisAccount, 0, len(c.Genesis))
	for i, g := range c.Genesis {
		addr, err := common.ParseAddress(g.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis[%d] address: %w", i, err)
		}
		out = append(out, ledger.GenesisAccount{Address: addr, Amount: uint256.NewInt(g.Amount)})
	}
	return out, nil
}

func WriteNodeConfig(path string, cfg *NodeConfig) error {
	data, err := yaml.Marshal(&ConfigFile{Config: *cfg})
	if err != nil {
		return fmt.Errorf("encode node config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write node config: %w", err)
	}
	return nil
}

// LoadRentConfig reads the [rent] section. A missing file or key keeps
// the default value.
func LoadRentConfig(path string) (*RentConfig, error) {
	rentCfg := DefaultRentConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logx.Warn("CONFIG", "runtime config", path, "not found, using default rent")
		return rentCfg, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load runtime config: %w", err)
	}
	if err := cfg.Section("rent").MapTo(rentCfg); err != nil {
		return nil, fmt.Errorf("map rent section: %w", err)
	}
	return rentCfg, nil
}

func WriteRentConfig(path string, rentCfg *RentConfig) error {
	cfg := ini.Empty()
	if err := cfg.Section("rent").ReflectFrom(rentCfg); err != nil {
		return fmt.Errorf("encode rent section: %w", err)
	}
	return cfg.SaveTo(path)
}

// Rent converts the ini values into the ledger's rent schedule.
func (r *RentConfig) Rent() ledger.Rent {
	return ledger.Rent{
		LamportsPerByteYear: r.LamportsPerByteYear,
		ExemptionThreshold:  r.ExemptionThreshold,
		StorageOverhead:     r.AccountStorageOverhead,
	}
}

// LoadKeypair reads a keypair in the solana-keygen JSON format.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return key, nil
}

// WriteKeypair stores key as a JSON byte array, readable by LoadKeypair.
func WriteKeypair(path string, key solana.PrivateKey) error {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := jsonx.Marshal(ints)
	if err != nil {
		return fmt.Errorf("encode keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}
	return nil
}

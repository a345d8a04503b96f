package config

import (
	"github.com/mezonai/multisig/store"
)

// GenesisAccount is funded once when the node is initialised.
type GenesisAccount struct {
	Address string `yaml:"address"`
	Amount  uint64 `yaml:"amount"`
}

// NodeConfig holds the configuration from node.yml
type NodeConfig struct {
	ProgramID   string            `yaml:"program_id"`
	Store       store.StoreConfig `yaml:"store"`
	MetricsAddr string            `yaml:"metrics_addr"`
	RPCAddr     string            `yaml:"rpc_addr"`
	Genesis     []GenesisAccount  `yaml:"genesis"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Config NodeConfig `yaml:"config"`
}

// RentConfig is the [rent] section of runtime.ini
type RentConfig struct {
	LamportsPerByteYear    uint64 `ini:"lamports_per_byte_year"`
	ExemptionThreshold     uint64 `ini:"exemption_threshold"`
	AccountStorageOverhead uint64 `ini:"account_storage_overhead"`
}

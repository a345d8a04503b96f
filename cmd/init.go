package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mezonai/multisig/config"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/store"
)

var initFlags struct {
	StoreType string
	Force     bool
}

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage the local ledger",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default node.yml and runtime.ini, then fund the genesis accounts",
	Long: `Initialize a ledger home directory by:
- Writing node.yml with the default program id and store settings (kept if present)
- Writing runtime.ini with the default rent schedule (kept if present)
- Creating the data directory
- Funding every genesis account listed in node.yml that does not exist yet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeNode()
	},
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initFlags.StoreType, "database", string(store.LevelDBStoreType), "Database backend (memory, leveldb, bolt, rocksdb or redis)")
	initCmd.Flags().BoolVar(&initFlags.Force, "force", false, "Overwrite existing configuration files")
}

// initializeNode is idempotent unless --force is given.
func initializeNode() error {
	if err := os.MkdirAll(rootFlags.Home, 0o755); err != nil {
		return fmt.Errorf("create home directory: %w", err)
	}

	nodePath := filepath.Join(rootFlags.Home, config.NodeConfigFile)
	if initFlags.Force || !exists(nodePath) {
		cfg := config.DefaultNodeConfig(rootFlags.Home)
		cfg.Store.Type = store.StoreType(initFlags.StoreType)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.WriteNodeConfig(nodePath, cfg); err != nil {
			return err
		}
		logx.Info("INIT", "Wrote", nodePath)
	} else {
		logx.Info("INIT", "Keeping existing", nodePath)
	}

	rentPath := filepath.Join(rootFlags.Home, config.RuntimeConfigFile)
	if initFlags.Force || !exists(rentPath) {
		if err := config.WriteRentConfig(rentPath, config.DefaultRentConfig()); err != nil {
			return err
		}
		logx.Info("INIT", "Wrote", rentPath)
	}

	cfg, err := config.LoadNodeConfig(nodePath)
	if err != nil {
		return err
	}
	if cfg.Store.Directory != "" {
		if err := os.MkdirAll(cfg.Store.Directory, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	return withNode(func(n *node) error {
		genesis, err := n.cfg.GenesisAccounts()
		if err != nil {
			return err
		}
		if err := n.ledger.CreateAccountsFromGenesis(genesis); err != nil {
			return err
		}
		fmt.Printf("initialized %s (program %s, %d genesis accounts)\n", rootFlags.Home, n.programID, len(genesis))
		return nil
	})
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

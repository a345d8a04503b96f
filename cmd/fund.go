package cmd

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/mezonai/multisig/common"
	"github.com/mezonai/multisig/config"
	"github.com/mezonai/multisig/logx"
)

var keygenFlags struct {
	OutFile string
	Force   bool
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a keypair file in the solana-keygen JSON format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exists(keygenFlags.OutFile) && !keygenFlags.Force {
			return fmt.Errorf("%s already exists, use --force to overwrite", keygenFlags.OutFile)
		}
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		if err := config.WriteKeypair(keygenFlags.OutFile, key); err != nil {
			return err
		}
		logx.Info("KEYGEN", "Wrote keypair for", key.PublicKey().String(), "to", keygenFlags.OutFile)
		fmt.Println(key.PublicKey())
		return nil
	},
}

// fundCmd credits an address directly on the local ledger
var fundCmd = &cobra.Command{
	Use:   "fund <address> <amount>",
	Short: "Credit an address on the local ledger",
	Long: `Credit lamports to an address outside of any program call.

Examples:
  # Fund a member with one billion lamports
  multisig fund 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY 1_000_000_000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := common.ParseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := uint256.FromDecimal(strings.ReplaceAll(args[1], "_", ""))
		if err != nil {
			return fmt.Errorf("could not parse amount: %w", err)
		}
		return withNode(func(n *node) error {
			if err := n.ledger.Fund(addr, amount); err != nil {
				return err
			}
			acc, err := n.ledger.GetAccount(addr)
			if err != nil {
				return err
			}
			fmt.Printf("%s balance %s\n", addr, acc.Balance.Dec())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(fundCmd)

	keygenCmd.Flags().StringVarP(&keygenFlags.OutFile, "outfile", "o", "id.json", "Path of the keypair file to write")
	keygenCmd.Flags().BoolVar(&keygenFlags.Force, "force", false, "Overwrite an existing keypair file")
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/mezonai/multisig/common"
	"github.com/mezonai/multisig/config"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/multisig"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

type MultisigFlags struct {
	KeypairFile string
	Creator     string
	Members     string
	Threshold   uint64
	Expiry      uint64
	ProposalID  uint64
	Vote        string
	Voter       string
}

var multisigFlags MultisigFlags

var createMultisigCmd = &cobra.Command{
	Use:   "create-multisig",
	Short: "Create a multisig group paid for and owned by the keypair",
	Long: `Create a multisig group. The keypair becomes the creator and pays for the config
and treasury accounts. Members are given as a comma separated list of addresses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		members, err := parseMembers(multisigFlags.Members)
		if err != nil {
			return err
		}
		if multisigFlags.Threshold > 255 {
			return fmt.Errorf("threshold %d does not fit in one byte", multisigFlags.Threshold)
		}
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			return multisig.NewCreateMultisigInstruction(n.programID, signer.PublicKey(), members,
				uint8(multisigFlags.Threshold), multisigFlags.Expiry)
		})
	},
}

var updateMultisigCmd = &cobra.Command{
	Use:   "update-multisig",
	Short: "Change the threshold and proposal expiry of the keypair's group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			return multisig.NewUpdateMultisigInstruction(n.programID, signer.PublicKey(),
				multisigFlags.Threshold, multisigFlags.Expiry)
		})
	},
}

var createProposalCmd = &cobra.Command{
	Use:   "create-proposal",
	Short: "Open the next proposal of a group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			group, cfg, err := groupOf(n)
			if err != nil {
				return transaction.Instruction{}, err
			}
			logx.Info("MULTISIG CLI", "Creating proposal", cfg.TotalProposals, "on", group.String())
			return multisig.NewCreateProposalInstruction(n.programID, signer.PublicKey(), group, cfg.TotalProposals)
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote yes or no on a proposal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var v uint8
		switch strings.ToLower(multisigFlags.Vote) {
		case "yes", "1":
			v = types.VoteYes
		case "no", "0":
			v = types.VoteNo
		default:
			return fmt.Errorf("vote must be yes or no, got %q", multisigFlags.Vote)
		}
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			group, _, err := groupOf(n)
			if err != nil {
				return transaction.Instruction{}, err
			}
			return multisig.NewVoteInstruction(n.programID, signer.PublicKey(), group, multisigFlags.ProposalID, v)
		})
	},
}

var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Settle a proposal that has expired or received every vote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			group, _, err := groupOf(n)
			if err != nil {
				return transaction.Instruction{}, err
			}
			return multisig.NewTallyInstruction(n.programID, signer.PublicKey(), group, multisigFlags.ProposalID)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel an active proposal created by the keypair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(n *node, signer solana.PrivateKey) (transaction.Instruction, error) {
			group, _, err := groupOf(n)
			if err != nil {
				return transaction.Instruction{}, err
			}
			return multisig.NewCancelInstruction(n.programID, signer.PublicKey(), group, multisigFlags.ProposalID)
		})
	},
}

var showMultisigCmd = &cobra.Command{
	Use:   "show-multisig",
	Short: "Print a group's config record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			addr, cfg, err := groupOf(n)
			if err != nil {
				return err
			}
			return printJSON(multisig.NewConfigView(addr, cfg))
		})
	},
}

var showProposalCmd = &cobra.Command{
	Use:   "show-proposal",
	Short: "Print a proposal record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			group, _, err := groupOf(n)
			if err != nil {
				return err
			}
			addr, p, err := n.client.Proposal(group, multisigFlags.ProposalID)
			if err != nil {
				return err
			}
			return printJSON(multisig.NewProposalView(addr, p))
		})
	},
}

var showReceiptCmd = &cobra.Command{
	Use:   "show-receipt",
	Short: "Print a voter's receipt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		voter, err := common.ParseAddress(multisigFlags.Voter)
		if err != nil {
			return err
		}
		return withNode(func(n *node) error {
			addr, r, err := n.client.Receipt(voter)
			if err != nil {
				return err
			}
			return printJSON(multisig.NewReceiptView(addr, voter, r))
		})
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the derived addresses of a group, one of its proposals and a voter receipt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creator, err := common.ParseAddress(multisigFlags.Creator)
		if err != nil {
			return err
		}
		cfg, err := config.LoadNodeConfig(nodeConfigPath())
		if err != nil {
			return err
		}
		d := pda.NewDeriver(cfg.Program())
		out := make(map[string]string)
		configAddr, _, err := d.ConfigAddress(creator)
		if err != nil {
			return err
		}
		out["config"] = configAddr.String()
		treasury, _, err := d.TreasuryAddress(configAddr)
		if err != nil {
			return err
		}
		out["treasury"] = treasury.String()
		proposal, _, err := d.ProposalAddress(configAddr, multisigFlags.ProposalID)
		if err != nil {
			return err
		}
		out[fmt.Sprintf("proposal_%d", multisigFlags.ProposalID)] = proposal.String()
		if multisigFlags.Voter != "" {
			voter, err := common.ParseAddress(multisigFlags.Voter)
			if err != nil {
				return err
			}
			receipt, _, err := d.ReceiptAddress(voter)
			if err != nil {
				return err
			}
			out["receipt"] = receipt.String()
		}
		return printJSON(out)
	},
}

func init() {
	signed := []*cobra.Command{createMultisigCmd, updateMultisigCmd, createProposalCmd, voteCmd, tallyCmd, cancelCmd}
	for _, c := range signed {
		c.Flags().StringVarP(&multisigFlags.KeypairFile, "keypair", "k", "id.json", "Keypair file of the signer and payer")
	}
	grouped := []*cobra.Command{createProposalCmd, voteCmd, tallyCmd, cancelCmd, showMultisigCmd, showProposalCmd, addressCmd}
	for _, c := range grouped {
		c.Flags().StringVar(&multisigFlags.Creator, "creator", "", "Address of the group's creator")
		_ = c.MarkFlagRequired("creator")
	}
	for _, c := range []*cobra.Command{voteCmd, tallyCmd, cancelCmd, showProposalCmd, addressCmd} {
		c.Flags().Uint64Var(&multisigFlags.ProposalID, "proposal", 0, "Proposal id")
	}

	createMultisigCmd.Flags().StringVar(&multisigFlags.Members, "members", "", "Comma separated member addresses")
	for _, c := range []*cobra.Command{createMultisigCmd, updateMultisigCmd} {
		c.Flags().Uint64Var(&multisigFlags.Threshold, "threshold", 1, "Yes votes needed for a proposal to succeed")
		c.Flags().Uint64Var(&multisigFlags.Expiry, "expiry", 3600, "Proposal voting period in seconds")
	}
	voteCmd.Flags().StringVar(&multisigFlags.Vote, "vote", "", "yes or no")
	_ = voteCmd.MarkFlagRequired("vote")
	showReceiptCmd.Flags().StringVar(&multisigFlags.Voter, "voter", "", "Voter address")
	_ = showReceiptCmd.MarkFlagRequired("voter")
	addressCmd.Flags().StringVar(&multisigFlags.Voter, "voter", "", "Voter address (optional)")

	for _, c := range append(signed, showMultisigCmd, showProposalCmd, showReceiptCmd, addressCmd) {
		rootCmd.AddCommand(c)
	}
}

// runSigned loads the keypair, builds one instruction and executes it.
func runSigned(build func(n *node, signer solana.PrivateKey) (transaction.Instruction, error)) error {
	signer, err := config.LoadKeypair(multisigFlags.KeypairFile)
	if err != nil {
		return err
	}
	return withNode(func(n *node) error {
		ix, err := build(n, signer)
		if err != nil {
			return err
		}
		txID, err := n.submit(ix, signer)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", txID, err)
		}
		fmt.Printf("%s %s\n", multisig.OpName(ix.Data[0]), txID)
		return nil
	})
}

func groupOf(n *node) (solana.PublicKey, *types.MultisigConfig, error) {
	creator, err := common.ParseAddress(multisigFlags.Creator)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("invalid creator: %w", err)
	}
	return n.client.ConfigOf(creator)
}

func parseMembers(raw string) ([]solana.PublicKey, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]solana.PublicKey, 0, len(parts))
	for _, p := range parts {
		k, err := common.ParseAddress(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid member %q: %w", p, err)
		}
		out = append(out, k)
	}
	return out, nil
}

func nodeConfigPath() string {
	return filepath.Join(rootFlags.Home, config.NodeConfigFile)
}

func printJSON(v interface{}) error {
	out, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

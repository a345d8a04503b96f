package multisig

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/codec"
	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/types"
)

// createMultisig allocates the config record and its treasury.
//
// Accounts: [creator (signer, writable), config (writable), treasury (writable), system program].
func (p *Program) createMultisig(rt interfaces.Runtime, accounts []*types.AccountInfo, payload []byte) error {
	if err := requireAccounts(accounts, 4); err != nil {
		return err
	}
	creator, config, treasury, system := accounts[0], accounts[1], accounts[2], accounts[3]

	args, err := parseCreateMultisig(payload)
	if err != nil {
		return err
	}

	configAddr, configBump, err := p.deriver.ConfigAddress(creator.Key)
	if err != nil {
		return err
	}
	if err := requireAddress(config, configAddr, "config"); err != nil {
		return err
	}
	treasuryAddr, treasuryBump, err := p.deriver.TreasuryAddress(config.Key)
	if err != nil {
		return err
	}
	if err := requireAddress(treasury, treasuryAddr, "treasury"); err != nil {
		return err
	}
	if err := requireSystemProgram(system); err != nil {
		return err
	}

	if config.IsOwnedBy(p.ID()) || !config.IsUnallocated() {
		return alreadyInitialized(config.Key)
	}
	if !treasury.IsUnallocated() {
		return alreadyInitialized(treasury.Key)
	}

	members, err := types.NewMemberSet(args.Members)
	if err != nil {
		return invalidValue("members: %v", err)
	}
	threshold := uint64(args.Threshold)
	if members.Len() == 0 {
		if threshold != 0 {
			return invalidValue("threshold %d with no members", threshold)
		}
	} else if threshold < 1 || threshold > uint64(members.Len()) {
		return invalidValue("threshold %d outside 1..%d", threshold, members.Len())
	}

	if err := rt.CreateAccount(creator, config, codec.ConfigLen, p.ID(), withBump(pda.ConfigSeeds(creator.Key), configBump)); err != nil {
		return fmt.Errorf("allocate config: %w", err)
	}
	cfg := &types.MultisigConfig{
		Creator:         creator.Key,
		Members:         members,
		Threshold:       threshold,
		ProposalExpiry:  args.ProposalExpiry,
		TotalProposals:  0,
		TreasuryAddress: treasury.Key,
		TreasuryBump:    treasuryBump,
		ConfigBump:      configBump,
	}
	if err := codec.WriteConfig(config.Data, cfg); err != nil {
		return err
	}

	if err := rt.CreateAccount(creator, treasury, 0, solana.SystemProgramID, withBump(pda.TreasurySeeds(config.Key), treasuryBump)); err != nil {
		return fmt.Errorf("allocate treasury: %w", err)
	}
	return nil
}

// updateMultisig lets the creator replace the threshold and proposal expiry.
//
// Accounts: [creator (signer), config (writable)].
func (p *Program) updateMultisig(_ interfaces.Runtime, accounts []*types.AccountInfo, payload []byte) error {
	if err := requireAccounts(accounts, 2); err != nil {
		return err
	}
	creator, config := accounts[0], accounts[1]

	if err := requireSigner(creator); err != nil {
		return err
	}
	cfg, err := p.loadConfig(config)
	if err != nil {
		return err
	}
	if !cfg.Creator.Equals(creator.Key) {
		return merrors.NewError(merrors.ErrCodeUnauthorized,
			fmt.Sprintf("%s is not the creator of %s", creator.Key, config.Key))
	}

	args, err := parseUpdateMultisig(payload)
	if err != nil {
		return err
	}
	if !cfg.IsValidThreshold(args.Threshold) {
		return invalidValue("threshold %d outside 1..%d", args.Threshold, cfg.Members.Len())
	}

	cfg.Threshold = args.Threshold
	cfg.ProposalExpiry = args.ProposalExpiry
	return codec.WriteConfig(config.Data, cfg)
}

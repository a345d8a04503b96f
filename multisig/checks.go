package multisig

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/codec"
	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/types"
)

func missingSignature(key solana.PublicKey) error {
	return merrors.NewError(merrors.ErrCodeMissingSignature, fmt.Sprintf("%s did not sign", key))
}

func identityMismatch(format string, args ...interface{}) error {
	return merrors.NewError(merrors.ErrCodeIdentityMismatch, fmt.Sprintf(format, args...))
}

func alreadyInitialized(key solana.PublicKey) error {
	return merrors.NewError(merrors.ErrCodeAlreadyInitialized, fmt.Sprintf("%s already initialized", key))
}

func invalidState(p *types.Proposal, want types.ProposalStatus) error {
	return merrors.NewError(merrors.ErrCodeInvalidState,
		fmt.Sprintf("proposal %d is %s, want %s", p.ID, p.Status, want))
}

func requireAccounts(accounts []*types.AccountInfo, n int) error {
	if len(accounts) < n {
		return malformed("expected %d accounts, got %d", n, len(accounts))
	}
	return nil
}

func requireSigner(ai *types.AccountInfo) error {
	if !ai.IsSigner {
		return missingSignature(ai.Key)
	}
	return nil
}

func requireSystemProgram(ai *types.AccountInfo) error {
	if !ai.Key.Equals(solana.SystemProgramID) {
		return identityMismatch("expected system program, got %s", ai.Key)
	}
	return nil
}

func requireAddress(ai *types.AccountInfo, want solana.PublicKey, kind string) error {
	if !ai.Key.Equals(want) {
		return identityMismatch("%s account %s is not at derived address %s", kind, ai.Key, want)
	}
	return nil
}

// loadConfig decodes a config record owned by the program and checks it sits
// at derive("multisig", creator) with its stored bump.
func (p *Program) loadConfig(ai *types.AccountInfo) (*types.MultisigConfig, error) {
	if !ai.IsOwnedBy(p.ID()) {
		return nil, identityMismatch("config %s is not owned by the program", ai.Key)
	}
	cfg, err := codec.DecodeConfig(ai.Data)
	if err != nil {
		return nil, identityMismatch("config %s: %v", ai.Key, err)
	}
	if err := p.deriver.Verify(ai.Key, cfg.ConfigBump, pda.ConfigSeeds(cfg.Creator)...); err != nil {
		return nil, identityMismatch("config %s: %v", ai.Key, err)
	}
	return cfg, nil
}

// loadProposal decodes a proposal owned by the program and checks it sits at
// derive("proposal", config, id).
func (p *Program) loadProposal(ai *types.AccountInfo, config solana.PublicKey) (*types.Proposal, error) {
	if !ai.IsOwnedBy(p.ID()) {
		return nil, identityMismatch("proposal %s is not owned by the program", ai.Key)
	}
	proposal, err := codec.DecodeProposal(ai.Data)
	if err != nil {
		return nil, identityMismatch("proposal %s: %v", ai.Key, err)
	}
	want, _, err := p.deriver.ProposalAddress(config, proposal.ID)
	if err != nil {
		return nil, identityMismatch("proposal %s: %v", ai.Key, err)
	}
	if err := requireAddress(ai, want, "proposal"); err != nil {
		return nil, err
	}
	return proposal, nil
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

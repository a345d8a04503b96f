package multisig

import (
	"fmt"

	"github.com/mezonai/multisig/codec"
	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/types"
)

// createProposal opens proposal number config.totalProposals with the current
// members as its voter roll.
//
// Accounts: [creator (signer, writable), config (writable), proposal (writable), system program].
func (p *Program) createProposal(rt interfaces.Runtime, accounts []*types.AccountInfo, _ []byte) error {
	if err := requireAccounts(accounts, 4); err != nil {
		return err
	}
	creator, config, proposal, system := accounts[0], accounts[1], accounts[2], accounts[3]

	if err := requireSigner(creator); err != nil {
		return err
	}
	cfg, err := p.loadConfig(config)
	if err != nil {
		return err
	}
	if !cfg.IsMember(creator.Key) {
		return merrors.NewError(merrors.ErrCodeUnauthorized,
			fmt.Sprintf("%s is not a member of %s", creator.Key, config.Key))
	}
	if proposal.IsOwnedBy(p.ID()) {
		return alreadyInitialized(proposal.Key)
	}
	id := cfg.TotalProposals
	addr, bump, err := p.deriver.ProposalAddress(config.Key, id)
	if err != nil {
		return err
	}
	if err := requireAddress(proposal, addr, "proposal"); err != nil {
		return err
	}
	if err := requireSystemProgram(system); err != nil {
		return err
	}
	if !proposal.IsUnallocated() {
		return alreadyInitialized(proposal.Key)
	}
	now := rt.Now()
	if _, ok := types.ExpirationFor(now, cfg.ProposalExpiry); !ok {
		return invalidValue("proposal expiry %d overflows from %d", cfg.ProposalExpiry, now)
	}

	if err := rt.CreateAccount(creator, proposal, codec.ProposalLen, p.ID(), withBump(pda.ProposalSeeds(config.Key, id), bump)); err != nil {
		return fmt.Errorf("allocate proposal: %w", err)
	}
	if err := codec.WriteProposal(proposal.Data, types.NewActiveProposal(creator.Key, cfg, now)); err != nil {
		return err
	}

	cfg.TotalProposals++
	return codec.WriteConfig(config.Data, cfg)
}

// vote records the caller's ballot and bumps their receipt.
//
// Accounts: [voter (signer, writable), proposal (writable), receipt (writable), system program, config].
func (p *Program) vote(rt interfaces.Runtime, accounts []*types.AccountInfo, payload []byte) error {
	if err := requireAccounts(accounts, 5); err != nil {
		return err
	}
	voter, proposalAcc, receipt, system, config := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	if err := requireSigner(voter); err != nil {
		return err
	}
	if len(payload) < 1 {
		return malformed("vote payload is empty")
	}
	if _, err := p.loadConfig(config); err != nil {
		return err
	}
	proposal, err := p.loadProposal(proposalAcc, config.Key)
	if err != nil {
		return err
	}
	if proposal.Status != types.ProposalActive {
		return invalidState(proposal, types.ProposalActive)
	}
	now := rt.Now()
	if proposal.IsExpired(now) {
		return merrors.NewError(merrors.ErrCodeExpired,
			fmt.Sprintf("proposal %d expired at %d, now %d", proposal.ID, proposal.ExpirationTime, now))
	}
	idx, ok := proposal.VoterIndex(voter.Key)
	if !ok {
		return merrors.NewError(merrors.ErrCodeNotEligible,
			fmt.Sprintf("%s is not on the voter roll of proposal %d", voter.Key, proposal.ID))
	}
	if proposal.Votes[idx] != types.BallotUnset {
		return merrors.NewError(merrors.ErrCodeAlreadyVoted,
			fmt.Sprintf("%s already voted %s on proposal %d", voter.Key, proposal.Votes[idx], proposal.ID))
	}
	ballot, ok := types.BallotFromVote(payload[0])
	if !ok {
		return invalidValue("vote must be 0 or 1, got %d", payload[0])
	}
	if err := requireSystemProgram(system); err != nil {
		return err
	}

	tracker, err := p.receiptFor(voter, receipt)
	if err != nil {
		return err
	}

	proposal.Votes[idx] = ballot
	if err := codec.WriteProposal(proposalAcc.Data, proposal); err != nil {
		return err
	}
	return tracker.record(rt)
}

// finalize tallies or cancels an active proposal.
//
// Accounts: [caller (signer), proposal (writable), config].
func (p *Program) finalize(rt interfaces.Runtime, accounts []*types.AccountInfo, payload []byte) error {
	if err := requireAccounts(accounts, 3); err != nil {
		return err
	}
	if len(payload) < 1 {
		return malformed("finalize payload is empty")
	}
	caller, proposalAcc, config := accounts[0], accounts[1], accounts[2]

	if err := requireSigner(caller); err != nil {
		return err
	}
	cfg, err := p.loadConfig(config)
	if err != nil {
		return err
	}
	proposal, err := p.loadProposal(proposalAcc, config.Key)
	if err != nil {
		return err
	}

	switch payload[0] {
	case ActionTally:
		if err := tally(proposal, cfg, rt.Now()); err != nil {
			return err
		}
	case ActionCancel:
		if proposal.Status != types.ProposalActive {
			return invalidState(proposal, types.ProposalActive)
		}
		if !proposal.Creator.Equals(caller.Key) {
			return merrors.NewError(merrors.ErrCodeUnauthorized,
				fmt.Sprintf("%s did not create proposal %d", caller.Key, proposal.ID))
		}
		proposal.Status = types.ProposalCancelled
	default:
		return malformed("unknown finalize action %d", payload[0])
	}
	return codec.WriteProposal(proposalAcc.Data, proposal)
}

// tally settles an active proposal once it has expired or every eligible
// voter has cast a ballot. Eligibility is counted from the current config.
func tally(proposal *types.Proposal, cfg *types.MultisigConfig, now uint64) error {
	if proposal.Status != types.ProposalActive {
		return invalidState(proposal, types.ProposalActive)
	}
	eligible := cfg.Members.Len()
	allVoted := proposal.CastCount(eligible) == eligible
	if !proposal.IsExpired(now) && !allVoted {
		return merrors.NewError(merrors.ErrCodeTooEarly,
			fmt.Sprintf("proposal %d: %d of %d voted, expires at %d, now %d",
				proposal.ID, proposal.CastCount(eligible), eligible, proposal.ExpirationTime, now))
	}
	if proposal.YesCount(eligible) >= cfg.Threshold {
		proposal.Status = types.ProposalSucceeded
	} else {
		proposal.Status = types.ProposalFailed
	}
	return nil
}

package multisig

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/codec"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/types"
)

// ErrNotFound is returned when no record owned by the program lives at the
// derived address.
var ErrNotFound = errors.New("record not found")

// Client reads program records from a ledger.
type Client struct {
	program *Program
	ledger  interfaces.Ledger
}

func NewClient(programID solana.PublicKey, ledger interfaces.Ledger) *Client {
	return &Client{program: NewProgram(programID), ledger: ledger}
}

func (c *Client) owned(addr solana.PublicKey, kind string) (*types.Account, error) {
	acc, err := c.ledger.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.Owner.Equals(c.program.ID()) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, addr)
	}
	return acc, nil
}

// ConfigOf returns the config address and record of the group created by creator.
func (c *Client) ConfigOf(creator solana.PublicKey) (solana.PublicKey, *types.MultisigConfig, error) {
	addr, _, err := c.program.deriver.ConfigAddress(creator)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	acc, err := c.owned(addr, "config")
	if err != nil {
		return addr, nil, err
	}
	cfg, err := codec.DecodeConfig(acc.Data)
	return addr, cfg, err
}

func (c *Client) Proposal(config solana.PublicKey, id uint64) (solana.PublicKey, *types.Proposal, error) {
	addr, _, err := c.program.deriver.ProposalAddress(config, id)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	acc, err := c.owned(addr, "proposal")
	if err != nil {
		return addr, nil, err
	}
	p, err := codec.DecodeProposal(acc.Data)
	return addr, p, err
}

func (c *Client) Receipt(voter solana.PublicKey) (solana.PublicKey, *types.VoteReceipt, error) {
	addr, _, err := c.program.deriver.ReceiptAddress(voter)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	acc, err := c.owned(addr, "receipt")
	if err != nil {
		return addr, nil, err
	}
	r, err := codec.DecodeReceipt(acc.Data)
	return addr, r, err
}

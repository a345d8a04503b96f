package multisig

import (
	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/types"
)

// ConfigView is the JSON rendering of a group config used by the CLI and the API.
type ConfigView struct {
	Address        string   `json:"address"`
	Creator        string   `json:"creator"`
	Members        []string `json:"members"`
	Threshold      uint64   `json:"threshold"`
	ProposalExpiry uint64   `json:"proposal_expiry"`
	TotalProposals uint64   `json:"total_proposals"`
	Treasury       string   `json:"treasury"`
}

type ProposalView struct {
	Address        string            `json:"address"`
	ID             uint64            `json:"id"`
	Creator        string            `json:"creator"`
	Status         string            `json:"status"`
	CreatedAt      uint64            `json:"created_at"`
	ExpirationTime uint64            `json:"expiration_time"`
	Votes          map[string]string `json:"votes"`
}

type ReceiptView struct {
	Address      string `json:"address"`
	Voter        string `json:"voter"`
	IsAuthorized bool   `json:"is_authorized"`
	TotalVotes   uint64 `json:"total_votes"`
}

func NewConfigView(addr solana.PublicKey, cfg *types.MultisigConfig) *ConfigView {
	members := make([]string, 0, cfg.Members.Len())
	for _, m := range cfg.Members.Keys() {
		members = append(members, m.String())
	}
	return &ConfigView{
		Address:        addr.String(),
		Creator:        cfg.Creator.String(),
		Members:        members,
		Threshold:      cfg.Threshold,
		ProposalExpiry: cfg.ProposalExpiry,
		TotalProposals: cfg.TotalProposals,
		Treasury:       cfg.TreasuryAddress.String(),
	}
}

// NewProposalView keys votes by voter address and skips empty roll slots.
func NewProposalView(addr solana.PublicKey, p *types.Proposal) *ProposalView {
	votes := make(map[string]string)
	for i, k := range p.VoterKeys {
		if !k.IsZero() {
			votes[k.String()] = p.Votes[i].String()
		}
	}
	return &ProposalView{
		Address:        addr.String(),
		ID:             p.ID,
		Creator:        p.Creator.String(),
		Status:         p.Status.String(),
		CreatedAt:      p.CreatedAt,
		ExpirationTime: p.ExpirationTime,
		Votes:          votes,
	}
}

func NewReceiptView(addr, voter solana.PublicKey, r *types.VoteReceipt) *ReceiptView {
	return &ReceiptView{
		Address:      addr.String(),
		Voter:        voter.String(),
		IsAuthorized: r.IsAuthorized,
		TotalVotes:   r.TotalVotes,
	}
}

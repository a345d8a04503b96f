package types

import (
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

type ProposalStatus uint8

const (
	ProposalDraft     ProposalStatus = 0 // reserved, never entered by create
	ProposalActive    ProposalStatus = 1
	ProposalFailed    ProposalStatus = 2
	ProposalSucceeded ProposalStatus = 3
	ProposalCancelled ProposalStatus = 4
)

func (s ProposalStatus) IsValid() bool {
	return s <= ProposalCancelled
}

func (s ProposalStatus) String() string {
	switch s {
	case ProposalDraft:
		return "DRAFT"
	case ProposalActive:
		return "ACTIVE"
	case ProposalFailed:
		return "FAILED"
	case ProposalSucceeded:
		return "SUCCEEDED"
	case ProposalCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

// Ballot is a voter slot: unset until the voter casts Yes or No.
type Ballot uint8

const (
	BallotUnset Ballot = iota
	BallotNo
	BallotYes
)

// Storage bytes for a ballot slot.
const (
	VoteNo       byte = 0
	VoteYes      byte = 1
	VoteNotVoted byte = 255
)

// BallotFromVote maps a caller-supplied vote byte; only 0 and 1 are accepted.
func BallotFromVote(v byte) (Ballot, bool) {
	switch v {
	case VoteNo:
		return BallotNo, true
	case VoteYes:
		return BallotYes, true
	default:
		return BallotUnset, false
	}
}

// BallotFromByte maps a stored slot byte, including the not-voted sentinel.
func BallotFromByte(v byte) (Ballot, bool) {
	if v == VoteNotVoted {
		return BallotUnset, true
	}
	return BallotFromVote(v)
}

func (b Ballot) Byte() byte {
	switch b {
	case BallotNo:
		return VoteNo
	case BallotYes:
		return VoteYes
	default:
		return VoteNotVoted
	}
}

func (b Ballot) String() string {
	switch b {
	case BallotNo:
		return "no"
	case BallotYes:
		return "yes"
	default:
		return "not-voted"
	}
}

type Proposal struct {
	Creator        solana.PublicKey
	ID             uint64
	Status         ProposalStatus
	CreatedAt      uint64
	ExpirationTime uint64
	VoterKeys      [MaxVoters]solana.PublicKey
	Votes          [MaxVoters]Ballot
}

// ExpirationFor returns now+expiry, or false when the sum does not fit in a u64.
func ExpirationFor(now, expiry uint64) (uint64, bool) {
	sum, carry := bits.Add64(now, expiry, 0)
	return sum, carry == 0
}

// NewActiveProposal snapshots the group's members as the voter roll. The
// caller checks ExpirationFor first.
func NewActiveProposal(creator solana.PublicKey, cfg *MultisigConfig, now uint64) *Proposal {
	expiresAt, _ := ExpirationFor(now, cfg.ProposalExpiry)
	p := &Proposal{
		Creator:        creator,
		ID:             cfg.TotalProposals,
		Status:         ProposalActive,
		CreatedAt:      now,
		ExpirationTime: expiresAt,
	}
	for i := 0; i < cfg.Members.Len(); i++ {
		p.VoterKeys[i] = cfg.Members.At(i)
	}
	for i := range p.Votes {
		p.Votes[i] = BallotUnset
	}
	return p
}

// VoterIndex finds key in the roll. Zero slots never match.
func (p *Proposal) VoterIndex(key solana.PublicKey) (int, bool) {
	if key.IsZero() {
		return -1, false
	}
	for i, k := range p.VoterKeys {
		if k.Equals(key) {
			return i, true
		}
	}
	return -1, false
}

func (p *Proposal) IsExpired(now uint64) bool {
	return now > p.ExpirationTime
}

// CastCount counts non-unset ballots in the first n slots.
func (p *Proposal) CastCount(n int) int {
	cast := 0
	for _, b := range p.Votes[:clampVoters(n)] {
		if b != BallotUnset {
			cast++
		}
	}
	return cast
}

// YesCount counts Yes ballots in the first n slots.
func (p *Proposal) YesCount(n int) uint64 {
	var yes uint64
	for _, b := range p.Votes[:clampVoters(n)] {
		if b == BallotYes {
			yes++
		}
	}
	return yes
}

func clampVoters(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxVoters {
		return MaxVoters
	}
	return n
}

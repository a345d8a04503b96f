package types

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	MaxMembers = 10
	MaxVoters  = 20
)

var (
	ErrTooManyMembers  = errors.New("too many members")
	ErrZeroMember      = errors.New("member key is zero")
	ErrDuplicateMember = errors.New("duplicate member key")
)

// MemberSet is a fixed-capacity member list with an explicit occupied count.
// Slots at or beyond the count are always zero.
type MemberSet struct {
	keys  [MaxMembers]solana.PublicKey
	count uint8
}

// NewMemberSet validates keys: at most MaxMembers, non-zero, pairwise distinct.
func NewMemberSet(keys []solana.PublicKey) (MemberSet, error) {
	var m MemberSet
	if len(keys) > MaxMembers {
		return m, fmt.Errorf("%w: %d > %d", ErrTooManyMembers, len(keys), MaxMembers)
	}
	for i, k := range keys {
		if k.IsZero() {
			return MemberSet{}, fmt.Errorf("%w at slot %d", ErrZeroMember, i)
		}
		if m.Contains(k) {
			return MemberSet{}, fmt.Errorf("%w: %s", ErrDuplicateMember, k)
		}
		m.keys[i] = k
		m.count++
	}
	return m, nil
}

// MemberSetFromRaw rebuilds a set from its storage form. Slots past count are
// ignored and reported back as zero.
func MemberSetFromRaw(raw [MaxMembers]solana.PublicKey, count uint8) (MemberSet, error) {
	if int(count) > MaxMembers {
		return MemberSet{}, fmt.Errorf("%w: %d > %d", ErrTooManyMembers, count, MaxMembers)
	}
	var m MemberSet
	copy(m.keys[:count], raw[:count])
	m.count = count
	return m, nil
}

func (m MemberSet) Len() int {
	return int(m.count)
}

func (m MemberSet) At(i int) solana.PublicKey {
	return m.keys[i]
}

func (m MemberSet) Contains(key solana.PublicKey) bool {
	for i := 0; i < int(m.count); i++ {
		if m.keys[i].Equals(key) {
			return true
		}
	}
	return false
}

// Keys returns a copy of the occupied slots.
func (m MemberSet) Keys() []solana.PublicKey {
	out := make([]solana.PublicKey, m.count)
	copy(out, m.keys[:m.count])
	return out
}

// Raw returns the full storage array, zero-filled past the count.
func (m MemberSet) Raw() [MaxMembers]solana.PublicKey {
	return m.keys
}

// MultisigConfig is the group configuration record.
type MultisigConfig struct {
	Creator         solana.PublicKey
	Members         MemberSet
	Threshold       uint64
	ProposalExpiry  uint64
	TotalProposals  uint64
	TreasuryAddress solana.PublicKey
	TreasuryBump    uint8
	ConfigBump      uint8
}

func (c *MultisigConfig) IsMember(key solana.PublicKey) bool {
	return c.Members.Contains(key)
}

// IsValidThreshold reports whether t satisfies 1 <= t <= member count.
func (c *MultisigConfig) IsValidThreshold(t uint64) bool {
	return t >= 1 && t <= uint64(c.Members.Len())
}

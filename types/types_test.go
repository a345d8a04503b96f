package types

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKeys(t *testing.T, n int) []solana.PublicKey {
	t.Helper()
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		priv, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		keys[i] = priv.PublicKey()
	}
	return keys
}

func TestNewMemberSet(t *testing.T) {
	keys := randomKeys(t, 3)

	set, err := NewMemberSet(keys)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(keys[1]))
	assert.Equal(t, keys, set.Keys())

	raw := set.Raw()
	for i := 3; i < MaxMembers; i++ {
		assert.True(t, raw[i].IsZero(), "slot %d should be zero", i)
	}
}

func TestNewMemberSetRejects(t *testing.T) {
	keys := randomKeys(t, MaxMembers+1)

	_, err := NewMemberSet(keys)
	assert.ErrorIs(t, err, ErrTooManyMembers)

	_, err = NewMemberSet([]solana.PublicKey{keys[0], keys[0]})
	assert.ErrorIs(t, err, ErrDuplicateMember)

	_, err = NewMemberSet([]solana.PublicKey{keys[0], {}})
	assert.ErrorIs(t, err, ErrZeroMember)
}

func TestMemberSetFromRawIgnoresTail(t *testing.T) {
	keys := randomKeys(t, 4)
	var raw [MaxMembers]solana.PublicKey
	copy(raw[:], keys)

	set, err := MemberSetFromRaw(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.False(t, set.Contains(keys[3]))

	_, err = MemberSetFromRaw(raw, MaxMembers+1)
	assert.ErrorIs(t, err, ErrTooManyMembers)
}

func TestThresholdBounds(t *testing.T) {
	members, err := NewMemberSet(randomKeys(t, 3))
	require.NoError(t, err)
	cfg := &MultisigConfig{Members: members}

	assert.False(t, cfg.IsValidThreshold(0))
	assert.True(t, cfg.IsValidThreshold(1))
	assert.True(t, cfg.IsValidThreshold(3))
	assert.False(t, cfg.IsValidThreshold(4))
}

func TestExpirationFor(t *testing.T) {
	at, ok := ExpirationFor(100, 3600)
	assert.True(t, ok)
	assert.Equal(t, uint64(3700), at)

	at, ok = ExpirationFor(100, math.MaxUint64-100)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), at)

	_, ok = ExpirationFor(100, math.MaxUint64-99)
	assert.False(t, ok)
}

func TestNewActiveProposalSnapshotsMembers(t *testing.T) {
	keys := randomKeys(t, 3)
	members, err := NewMemberSet(keys)
	require.NoError(t, err)
	cfg := &MultisigConfig{Members: members, ProposalExpiry: 3600, TotalProposals: 7}

	p := NewActiveProposal(keys[0], cfg, 100)
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, ProposalActive, p.Status)
	assert.Equal(t, uint64(3700), p.ExpirationTime)
	for i := 0; i < MaxVoters; i++ {
		assert.Equal(t, BallotUnset, p.Votes[i])
		if i < 3 {
			assert.Equal(t, keys[i], p.VoterKeys[i])
		} else {
			assert.True(t, p.VoterKeys[i].IsZero())
		}
	}

	idx, ok := p.VoterIndex(keys[2])
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = p.VoterIndex(solana.PublicKey{})
	assert.False(t, ok, "zero key must never match an empty slot")
}

func TestProposalCounts(t *testing.T) {
	p := &Proposal{}
	p.Votes[0] = BallotYes
	p.Votes[1] = BallotNo
	p.Votes[2] = BallotYes
	p.Votes[5] = BallotYes

	assert.Equal(t, 3, p.CastCount(3))
	assert.Equal(t, uint64(2), p.YesCount(3))
	assert.Equal(t, uint64(3), p.YesCount(MaxVoters+5))
	assert.Equal(t, 0, p.CastCount(-1))
}

func TestBallotBytes(t *testing.T) {
	b, ok := BallotFromVote(1)
	assert.True(t, ok)
	assert.Equal(t, BallotYes, b)

	_, ok = BallotFromVote(255)
	assert.False(t, ok, "sentinel is not a valid vote")

	b, ok = BallotFromByte(255)
	assert.True(t, ok)
	assert.Equal(t, BallotUnset, b)
	assert.Equal(t, VoteNotVoted, BallotUnset.Byte())

	_, ok = BallotFromByte(7)
	assert.False(t, ok)
}

package codec

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/multisig/types"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestRecordLengths(t *testing.T) {
	assert.Equal(t, 411, ConfigLen)
	assert.Equal(t, 717, ProposalLen)
	assert.Equal(t, 10, ReceiptLen)
}

func TestConfigLayout(t *testing.T) {
	creator, m1, m2 := newKey(t), newKey(t), newKey(t)
	members, err := types.NewMemberSet([]solana.PublicKey{m1, m2})
	require.NoError(t, err)
	cfg := &types.MultisigConfig{
		Creator:         creator,
		Members:         members,
		Threshold:       2,
		ProposalExpiry:  3600,
		TotalProposals:  5,
		TreasuryAddress: newKey(t),
		TreasuryBump:    254,
		ConfigBump:      253,
	}

	data, err := EncodeConfig(cfg)
	require.NoError(t, err)
	require.Len(t, data, ConfigLen)

	assert.Equal(t, creator.Bytes(), data[0:32])
	assert.Equal(t, byte(2), data[32])
	assert.Equal(t, m2.Bytes(), data[65:97])
	assert.Equal(t, make([]byte, 32), data[97:129], "unused member slots are zero")
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(data[353:361]))
	assert.Equal(t, uint64(3600), binary.LittleEndian.Uint64(data[361:369]))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[369:377]))
	assert.Equal(t, byte(254), data[409])
	assert.Equal(t, byte(253), data[410])

	got, err := DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDecodeConfigRejects(t *testing.T) {
	_, err := DecodeConfig(make([]byte, ConfigLen-1))
	assert.ErrorIs(t, err, ErrShortBuffer)

	data := make([]byte, ConfigLen)
	data[32] = 11
	_, err = DecodeConfig(data)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestProposalLayout(t *testing.T) {
	voter := newKey(t)
	p := &types.Proposal{
		Creator:        newKey(t),
		ID:             9,
		Status:         types.ProposalActive,
		CreatedAt:      100,
		ExpirationTime: 3700,
	}
	p.VoterKeys[0] = voter
	p.Votes[0] = types.BallotYes
	p.Votes[1] = types.BallotNo
	for i := 2; i < types.MaxVoters; i++ {
		p.Votes[i] = types.BallotUnset
	}

	data, err := EncodeProposal(p)
	require.NoError(t, err)
	require.Len(t, data, ProposalLen)

	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(data[32:40]))
	assert.Equal(t, byte(1), data[40])
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[41:49]))
	assert.Equal(t, uint64(3700), binary.LittleEndian.Uint64(data[49:57]))
	assert.Equal(t, voter.Bytes(), data[57:89])
	votes := data[697:717]
	assert.Equal(t, byte(1), votes[0])
	assert.Equal(t, byte(0), votes[1])
	assert.Equal(t, byte(255), votes[2])

	got, err := DecodeProposal(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeProposalRejects(t *testing.T) {
	_, err := DecodeProposal(make([]byte, 100))
	assert.ErrorIs(t, err, ErrShortBuffer)

	data := make([]byte, ProposalLen)
	data[40] = 9
	_, err = DecodeProposal(data)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	data[40] = 1
	data[700] = 7
	_, err = DecodeProposal(data)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestReceiptLayout(t *testing.T) {
	r := &types.VoteReceipt{IsAuthorized: true, TotalVotes: 3, Bump: 251}
	data, err := EncodeReceipt(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 3, 0, 0, 0, 0, 0, 0, 0, 251}, data)

	got, err := DecodeReceipt(data)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = DecodeReceipt(data[:9])
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestWriteLeavesTrailingBytes(t *testing.T) {
	dst := make([]byte, ReceiptLen+2)
	dst[ReceiptLen] = 0xAA
	require.NoError(t, WriteReceipt(dst, &types.VoteReceipt{TotalVotes: 1}))
	assert.Equal(t, byte(0xAA), dst[ReceiptLen])

	assert.ErrorIs(t, WriteReceipt(make([]byte, 4), &types.VoteReceipt{}), ErrShortBuffer)
}

package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("H8bpqAoUgRfHh9ViPqH3wjkAVrgGBeg3sA7q5tECz9HC")

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := NewDeriver(testProgramID)
	creator := newKey(t)

	a1, b1, err := d.ConfigAddress(creator)
	require.NoError(t, err)
	a2, b2, err := d.ConfigAddress(creator)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.False(t, a1.IsOnCurve(), "derived address must be off curve")
}

func TestDeriveSeparatesNamespaces(t *testing.T) {
	d := NewDeriver(testProgramID)
	key := newKey(t)

	cfg, _, err := d.ConfigAddress(key)
	require.NoError(t, err)
	treasury, _, err := d.TreasuryAddress(key)
	require.NoError(t, err)
	receipt, _, err := d.ReceiptAddress(key)
	require.NoError(t, err)

	assert.NotEqual(t, cfg, treasury)
	assert.NotEqual(t, cfg, receipt)
	assert.NotEqual(t, treasury, receipt)
}

func TestProposalAddressDependsOnID(t *testing.T) {
	d := NewDeriver(testProgramID)
	cfg := newKey(t)

	p0, _, err := d.ProposalAddress(cfg, 0)
	require.NoError(t, err)
	p1, _, err := d.ProposalAddress(cfg, 1)
	require.NoError(t, err)
	assert.NotEqual(t, p0, p1)

	direct, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("proposal"), cfg.Bytes(), {1, 0, 0, 0, 0, 0, 0, 0}}, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, direct, p1)
}

func TestVerifyBump(t *testing.T) {
	d := NewDeriver(testProgramID)
	creator := newKey(t)

	addr, bump, err := d.ConfigAddress(creator)
	require.NoError(t, err)

	require.NoError(t, d.Verify(addr, bump, ConfigSeeds(creator)...))
	assert.ErrorIs(t, d.Verify(newKey(t), bump, ConfigSeeds(creator)...), ErrBumpMismatch)
}

func TestProgramIDChangesAddresses(t *testing.T) {
	creator := newKey(t)
	a, _, err := NewDeriver(testProgramID).ConfigAddress(creator)
	require.NoError(t, err)
	b, _, err := NewDeriver(newKey(t)).ConfigAddress(creator)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

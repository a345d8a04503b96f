package transaction

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPriv(t *testing.T) solana.PrivateKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func sampleTx(signer, other solana.PublicKey) *Transaction {
	program := solana.MustPublicKeyFromBase58("H8bpqAoUgRfHh9ViPqH3wjkAVrgGBeg3sA7q5tECz9HC")
	return NewTransaction(1, Instruction{
		ProgramID: program,
		Accounts: []*AccountMeta{
			Meta(signer, true, true),
			Meta(other, false, true),
		},
		Data: []byte{3, 1},
	})
}

func TestSignAndVerify(t *testing.T) {
	key := newPriv(t)
	tx := sampleTx(key.PublicKey(), newPriv(t).PublicKey())

	require.NoError(t, tx.Sign(key))
	signed, err := tx.Verify()
	require.NoError(t, err)
	assert.True(t, signed[key.PublicKey()])
	assert.Equal(t, tx.Signatures[0].Signature.String(), tx.ID())
}

func TestVerifyRequiresEverySigner(t *testing.T) {
	key := newPriv(t)
	tx := sampleTx(key.PublicKey(), newPriv(t).PublicKey())

	_, err := tx.Verify()
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifyDetectsTampering(t *testing.T) {
	key := newPriv(t)
	tx := sampleTx(key.PublicKey(), newPriv(t).PublicKey())
	require.NoError(t, tx.Sign(key))

	tx.Instructions[0].Data[1] = 0
	_, err := tx.Verify()
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestSignReplacesExisting(t *testing.T) {
	key := newPriv(t)
	tx := sampleTx(key.PublicKey(), newPriv(t).PublicKey())
	require.NoError(t, tx.Sign(key))
	tx.Nonce = 2
	require.NoError(t, tx.Sign(key))

	assert.Len(t, tx.Signatures, 1)
	_, err := tx.Verify()
	assert.NoError(t, err)
}

func TestSerializeLimits(t *testing.T) {
	_, err := (&Transaction{}).Serialize()
	assert.ErrorIs(t, err, ErrEmptyTransaction)

	tx := sampleTx(newPriv(t).PublicKey(), newPriv(t).PublicKey())
	tx.Instructions[0].Data = make([]byte, maxInstructionDataSize+1)
	_, err = tx.Serialize()
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRequiredSignersDeduplicates(t *testing.T) {
	a, b := newPriv(t).PublicKey(), newPriv(t).PublicKey()
	tx := sampleTx(a, b)
	tx.Instructions = append(tx.Instructions, Instruction{
		ProgramID: tx.Instructions[0].ProgramID,
		Accounts:  []*AccountMeta{Meta(a, true, false), Meta(b, true, false)},
	})
	assert.Equal(t, []solana.PublicKey{a, b}, tx.RequiredSigners())
}

func TestNonceChangesDedupHash(t *testing.T) {
	a, b := newPriv(t).PublicKey(), newPriv(t).PublicKey()
	tx1 := sampleTx(a, b)
	tx2 := sampleTx(a, b)
	assert.Equal(t, tx1.DedupHash(), tx2.DedupHash())
	tx2.Nonce = 7
	assert.NotEqual(t, tx1.DedupHash(), tx2.DedupHash())
}

package pda

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	SeedMultisig  = []byte("multisig")
	SeedTreasury  = []byte("treasury")
	SeedProposal  = []byte("proposal")
	SeedVoteState = []byte("vote_state")
)

var ErrBumpMismatch = errors.New("stored bump does not derive the address")

// Deriver computes the canonical record addresses owned by one program.
type Deriver struct {
	programID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Derive runs the off-curve search from bump 255 down.
func (d *Deriver) Derive(seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive address: %w", err)
	}
	return addr, bump, nil
}

func (d *Deriver) ConfigAddress(creator solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Derive(ConfigSeeds(creator)...)
}

func (d *Deriver) TreasuryAddress(config solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Derive(TreasurySeeds(config)...)
}

func (d *Deriver) ProposalAddress(config solana.PublicKey, id uint64) (solana.PublicKey, uint8, error) {
	return d.Derive(ProposalSeeds(config, id)...)
}

func (d *Deriver) ReceiptAddress(voter solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.Derive(ReceiptSeeds(voter)...)
}

// Verify checks a stored bump with the single-hash form.
func (d *Deriver) Verify(addr solana.PublicKey, bump uint8, seeds ...[]byte) error {
	got, err := d.CreateWithBump(bump, seeds...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBumpMismatch, err)
	}
	if !got.Equals(addr) {
		return ErrBumpMismatch
	}
	return nil
}

// CreateWithBump appends bump to seeds and hashes once.
func (d *Deriver) CreateWithBump(bump uint8, seeds ...[]byte) (solana.PublicKey, error) {
	full := make([][]byte, 0, len(seeds)+1)
	full = append(full, seeds...)
	full = append(full, []byte{bump})
	return solana.CreateProgramAddress(full, d.programID)
}

func ConfigSeeds(creator solana.PublicKey) [][]byte {
	return [][]byte{SeedMultisig, creator.Bytes()}
}

func TreasurySeeds(config solana.PublicKey) [][]byte {
	return [][]byte{SeedTreasury, config.Bytes()}
}

func ProposalSeeds(config solana.PublicKey, id uint64) [][]byte {
	return [][]byte{SeedProposal, config.Bytes(), uint64ToBytes(id)}
}

func ReceiptSeeds(voter solana.PublicKey) [][]byte {
	return [][]byte{SeedVoteState, voter.Bytes()}
}

func uint64ToBytes(value uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, value)
	return b
}

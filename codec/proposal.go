package codec

import (
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/mezonai/multisig/types"
)

func EncodeProposal(p *types.Proposal) ([]byte, error) {
	out := make([]byte, ProposalLen)
	if err := WriteProposal(out, p); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteProposal overwrites the first ProposalLen bytes of dst.
func WriteProposal(dst []byte, p *types.Proposal) error {
	return writeInto("proposal", dst, ProposalLen, func(enc *bin.Encoder) error {
		if err := writeKey(enc, p.Creator); err != nil {
			return err
		}
		if err := enc.WriteUint64(p.ID, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteUint8(uint8(p.Status)); err != nil {
			return err
		}
		if err := enc.WriteUint64(p.CreatedAt, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteUint64(p.ExpirationTime, bin.LE); err != nil {
			return err
		}
		for _, k := range p.VoterKeys {
			if err := writeKey(enc, k); err != nil {
				return err
			}
		}
		for _, b := range p.Votes {
			if err := enc.WriteByte(b.Byte()); err != nil {
				return err
			}
		}
		return nil
	})
}

func DecodeProposal(data []byte) (*types.Proposal, error) {
	if err := checkLen("proposal", data, ProposalLen); err != nil {
		return nil, err
	}
	dec := bin.NewBinDecoder(data[:ProposalLen])
	p := &types.Proposal{}
	var err error

	if p.Creator, err = readKey(dec); err != nil {
		return nil, err
	}
	if p.ID, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	status, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	p.Status = types.ProposalStatus(status)
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("%w: proposal status %d", ErrInvalidRecord, status)
	}
	if p.CreatedAt, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if p.ExpirationTime, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	for i := range p.VoterKeys {
		if p.VoterKeys[i], err = readKey(dec); err != nil {
			return nil, err
		}
	}
	for i := range p.Votes {
		raw, err := dec.ReadByte()
		if err != nil {
			return nil, err
		}
		b, ok := types.BallotFromByte(raw)
		if !ok {
			return nil, fmt.Errorf("%w: vote slot %d holds %d", ErrInvalidRecord, i, raw)
		}
		p.Votes[i] = b
	}
	return p, nil
}

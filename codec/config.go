package codec

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/types"
)

func EncodeConfig(cfg *types.MultisigConfig) ([]byte, error) {
	out := make([]byte, ConfigLen)
	if err := WriteConfig(out, cfg); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteConfig overwrites the first ConfigLen bytes of dst.
func WriteConfig(dst []byte, cfg *types.MultisigConfig) error {
	return writeInto("config", dst, ConfigLen, func(enc *bin.Encoder) error {
		if err := writeKey(enc, cfg.Creator); err != nil {
			return err
		}
		if err := enc.WriteUint8(uint8(cfg.Members.Len())); err != nil {
			return err
		}
		for _, k := range cfg.Members.Raw() {
			if err := writeKey(enc, k); err != nil {
				return err
			}
		}
		for _, v := range []uint64{cfg.Threshold, cfg.ProposalExpiry, cfg.TotalProposals} {
			if err := enc.WriteUint64(v, bin.LE); err != nil {
				return err
			}
		}
		if err := writeKey(enc, cfg.TreasuryAddress); err != nil {
			return err
		}
		if err := enc.WriteUint8(cfg.TreasuryBump); err != nil {
			return err
		}
		return enc.WriteUint8(cfg.ConfigBump)
	})
}

func DecodeConfig(data []byte) (*types.MultisigConfig, error) {
	if err := checkLen("config", data, ConfigLen); err != nil {
		return nil, err
	}
	dec := bin.NewBinDecoder(data[:ConfigLen])
	cfg := &types.MultisigConfig{}
	var err error

	if cfg.Creator, err = readKey(dec); err != nil {
		return nil, err
	}
	count, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	var raw [types.MaxMembers]solana.PublicKey
	for i := range raw {
		if raw[i], err = readKey(dec); err != nil {
			return nil, err
		}
	}
	if cfg.Members, err = types.MemberSetFromRaw(raw, count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if cfg.Threshold, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if cfg.ProposalExpiry, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if cfg.TotalProposals, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if cfg.TreasuryAddress, err = readKey(dec); err != nil {
		return nil, err
	}
	if cfg.TreasuryBump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if cfg.ConfigBump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	return cfg, nil
}

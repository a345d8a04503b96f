package multisig

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

// Opcodes lead every instruction payload.
const (
	OpCreateMultisig uint8 = 0
	OpCreateProposal uint8 = 1
	OpUpdateMultisig uint8 = 2
	OpVote           uint8 = 3
	OpFinalize       uint8 = 4
)

// Finalize actions.
const (
	ActionTally  uint8 = 0
	ActionCancel uint8 = 1
)

var opNames = map[uint8]string{
	OpCreateMultisig: "create_multisig",
	OpCreateProposal: "create_proposal",
	OpUpdateMultisig: "update_multisig",
	OpVote:           "vote",
	OpFinalize:       "finalize",
}

// OpName labels an opcode for logs and metrics.
func OpName(op uint8) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// CreateMultisigArgs is the payload of OpCreateMultisig:
// threshold u8 · memberCount u8 · memberCount×32 keys · proposalExpiry u64 (optional).
type CreateMultisigArgs struct {
	Threshold      uint8
	Members        []solana.PublicKey
	ProposalExpiry uint64
}

// UpdateMultisigArgs is the payload of OpUpdateMultisig: threshold u64 · proposalExpiry u64.
type UpdateMultisigArgs struct {
	Threshold      uint64
	ProposalExpiry uint64
}

func malformed(format string, args ...interface{}) error {
	return merrors.NewError(merrors.ErrCodeMalformedCall, fmt.Sprintf(format, args...))
}

func invalidValue(format string, args ...interface{}) error {
	return merrors.NewError(merrors.ErrCodeInvalidValue, fmt.Sprintf(format, args...))
}

func parseCreateMultisig(data []byte) (*CreateMultisigArgs, error) {
	if len(data) < 2 {
		return nil, malformed("create payload needs 2 header bytes, got %d", len(data))
	}
	dec := bin.NewBinDecoder(data)
	args := &CreateMultisigArgs{}
	var err error
	if args.Threshold, err = dec.ReadUint8(); err != nil {
		return nil, malformed("read threshold: %v", err)
	}
	count, err := dec.ReadUint8()
	if err != nil {
		return nil, malformed("read member count: %v", err)
	}
	if int(count) > types.MaxMembers {
		return nil, invalidValue("member count %d exceeds %d", count, types.MaxMembers)
	}
	if dec.Remaining() < int(count)*solana.PublicKeyLength {
		return nil, malformed("payload holds %d bytes of keys, %d members declared", dec.Remaining(), count)
	}
	args.Members = make([]solana.PublicKey, count)
	for i := range args.Members {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, malformed("read member %d: %v", i, err)
		}
		args.Members[i] = solana.PublicKeyFromBytes(raw)
	}
	if dec.Remaining() >= 8 {
		if args.ProposalExpiry, err = dec.ReadUint64(bin.LE); err != nil {
			return nil, malformed("read proposal expiry: %v", err)
		}
	}
	return args, nil
}

func parseUpdateMultisig(data []byte) (*UpdateMultisigArgs, error) {
	if len(data) < 16 {
		return nil, malformed("update payload needs 16 bytes, got %d", len(data))
	}
	dec := bin.NewBinDecoder(data)
	args := &UpdateMultisigArgs{}
	var err error
	if args.Threshold, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, malformed("read threshold: %v", err)
	}
	if args.ProposalExpiry, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, malformed("read proposal expiry: %v", err)
	}
	return args, nil
}

func encodeCreateMultisig(args *CreateMultisigArgs) ([]byte, error) {
	if len(args.Members) > 255 {
		return nil, fmt.Errorf("too many members: %d", len(args.Members))
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(OpCreateMultisig); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(args.Threshold); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(len(args.Members))); err != nil {
		return nil, err
	}
	for _, m := range args.Members {
		if err := enc.WriteBytes(m[:], false); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint64(args.ProposalExpiry, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeUpdateMultisig(args *UpdateMultisigArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(OpUpdateMultisig); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(args.Threshold, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(args.ProposalExpiry, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewCreateMultisigInstruction builds a group creation call paid by creator.
func NewCreateMultisigInstruction(programID, creator solana.PublicKey, members []solana.PublicKey, threshold uint8, proposalExpiry uint64) (transaction.Instruction, error) {
	d := pda.NewDeriver(programID)
	config, _, err := d.ConfigAddress(creator)
	if err != nil {
		return transaction.Instruction{}, err
	}
	treasury, _, err := d.TreasuryAddress(config)
	if err != nil {
		return transaction.Instruction{}, err
	}
	data, err := encodeCreateMultisig(&CreateMultisigArgs{
		Threshold:      threshold,
		Members:        members,
		ProposalExpiry: proposalExpiry,
	})
	if err != nil {
		return transaction.Instruction{}, err
	}
	return transaction.Instruction{
		ProgramID: programID,
		Accounts: []*transaction.AccountMeta{
			transaction.Meta(creator, true, true),
			transaction.Meta(config, false, true),
			transaction.Meta(treasury, false, true),
			transaction.Meta(solana.SystemProgramID, false, false),
		},
		Data: data,
	}, nil
}

func NewUpdateMultisigInstruction(programID, creator solana.PublicKey, threshold, proposalExpiry uint64) (transaction.Instruction, error) {
	config, _, err := pda.NewDeriver(programID).ConfigAddress(creator)
	if err != nil {
		return transaction.Instruction{}, err
	}
	data, err := encodeUpdateMultisig(&UpdateMultisigArgs{Threshold: threshold, ProposalExpiry: proposalExpiry})
	if err != nil {
		return transaction.Instruction{}, err
	}
	return transaction.Instruction{
		ProgramID: programID,
		Accounts: []*transaction.AccountMeta{
			transaction.Meta(creator, true, false),
			transaction.Meta(config, false, true),
		},
		Data: data,
	}, nil
}

// NewCreateProposalInstruction builds a proposal creation call. id must be the
// config's current proposal counter.
func NewCreateProposalInstruction(programID, creator, config solana.PublicKey, id uint64) (transaction.Instruction, error) {
	proposal, _, err := pda.NewDeriver(programID).ProposalAddress(config, id)
	if err != nil {
		return transaction.Instruction{}, err
	}
	return transaction.Instruction{
		ProgramID: programID,
		Accounts: []*transaction.AccountMeta{
			transaction.Meta(creator, true, true),
			transaction.Meta(config, false, true),
			transaction.Meta(proposal, false, true),
			transaction.Meta(solana.SystemProgramID, false, false),
		},
		Data: []byte{OpCreateProposal},
	}, nil
}

func NewVoteInstruction(programID, voter, config solana.PublicKey, proposalID uint64, vote uint8) (transaction.Instruction, error) {
	d := pda.NewDeriver(programID)
	proposal, _, err := d.ProposalAddress(config, proposalID)
	if err != nil {
		return transaction.Instruction{}, err
	}
	receipt, _, err := d.ReceiptAddress(voter)
	if err != nil {
		return transaction.Instruction{}, err
	}
	return transaction.Instruction{
		ProgramID: programID,
		Accounts: []*transaction.AccountMeta{
			transaction.Meta(voter, true, true),
			transaction.Meta(proposal, false, true),
			transaction.Meta(receipt, false, true),
			transaction.Meta(solana.SystemProgramID, false, false),
			transaction.Meta(config, false, false),
		},
		Data: []byte{OpVote, vote},
	}, nil
}

func NewTallyInstruction(programID, caller, config solana.PublicKey, proposalID uint64) (transaction.Instruction, error) {
	return newFinalizeInstruction(programID, caller, config, proposalID, ActionTally)
}

func NewCancelInstruction(programID, caller, config solana.PublicKey, proposalID uint64) (transaction.Instruction, error) {
	return newFinalizeInstruction(programID, caller, config, proposalID, ActionCancel)
}

func newFinalizeInstruction(programID, caller, config solana.PublicKey, proposalID uint64, action uint8) (transaction.Instruction, error) {
	proposal, _, err := pda.NewDeriver(programID).ProposalAddress(config, proposalID)
	if err != nil {
		return transaction.Instruction{}, err
	}
	return transaction.Instruction{
		ProgramID: programID,
		Accounts: []*transaction.AccountMeta{
			transaction.Meta(caller, true, false),
			transaction.Meta(proposal, false, true),
			transaction.Meta(config, false, false),
		},
		Data: []byte{OpFinalize, action},
	}, nil
}

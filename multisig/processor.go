// Package multisig implements the multisig treasury program: groups of up to
// ten members, time-bounded proposals, threshold voting and per-voter
// receipts.
package multisig

import (
	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/pda"
	"github.com/mezonai/multisig/types"
)

// ProgramID is the address the program is deployed at by default.
var ProgramID = solana.MustPublicKeyFromBase58("H8bpqAoUgRfHh9ViPqH3wjkAVrgGBeg3sA7q5tECz9HC")

type handler func(p *Program, rt interfaces.Runtime, accounts []*types.AccountInfo, payload []byte) error

var handlers = map[uint8]handler{
	OpCreateMultisig: (*Program).createMultisig,
	OpCreateProposal: (*Program).createProposal,
	OpUpdateMultisig: (*Program).updateMultisig,
	OpVote:           (*Program).vote,
	OpFinalize:       (*Program).finalize,
}

// Program dispatches opcode-prefixed calls. It holds no state between calls.
type Program struct {
	deriver *pda.Deriver
}

func NewProgram(programID solana.PublicKey) *Program {
	return &Program{deriver: pda.NewDeriver(programID)}
}

func (p *Program) ID() solana.PublicKey {
	return p.deriver.ProgramID()
}

// Deriver exposes the program's address derivation to clients.
func (p *Program) Deriver() *pda.Deriver {
	return p.deriver
}

func (p *Program) Process(rt interfaces.Runtime, accounts []*types.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return malformed("empty instruction data")
	}
	h, ok := handlers[data[0]]
	if !ok {
		return malformed("unknown opcode %d", data[0])
	}
	return h(p, rt, accounts, data[1:])
}

// InstructionName labels a call by its opcode.
func (p *Program) InstructionName(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	return OpName(data[0])
}

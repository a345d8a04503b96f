package jsonrpc

import (
	"encoding/base64"
	"encoding/hex"
	stderrors "errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/common"
	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/multisig"
	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

// Backend is the ledger surface the API serves from.
type Backend interface {
	interfaces.Ledger
	GetTxByID(id string) (*transaction.Transaction, *types.TransactionMeta, error)
	Sequence() (uint64, [32]byte)
}

var (
	errInvalidParams = stderrors.New("invalid params")
	errNotFound      = stderrors.New("not found")
)

type accountInfo struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
	Space   int    `json:"space"`
	Data    string `json:"data,omitempty"`
}

type txInfo struct {
	TxID        string                   `json:"tx_id"`
	Status      string                   `json:"status"`
	Sequence    uint64                   `json:"sequence"`
	ProcessedAt uint64                   `json:"processed_at"`
	ErrorCode   string                   `json:"error_code,omitempty"`
	Error       string                   `json:"error,omitempty"`
	BankHash    string                   `json:"bank_hash,omitempty"`
	Transaction *transaction.Transaction `json:"transaction,omitempty"`
}

type sendTxResult struct {
	TxID     string `json:"tx_id"`
	Sequence uint64 `json:"sequence"`
	BankHash string `json:"bank_hash"`
}

type sequenceInfo struct {
	Sequence uint64 `json:"sequence"`
	BankHash string `json:"bank_hash"`
}

// service holds the handlers shared by the JSON-RPC and REST routes.
type service struct {
	backend Backend
	client  *multisig.Client
}

func parseAddress(field, raw string) (solana.PublicKey, error) {
	addr, err := common.ParseAddress(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s: %v", errInvalidParams, field, err)
	}
	return addr, nil
}

func (s *service) sendTransaction(tx *transaction.Transaction) (*sendTxResult, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction is required", errInvalidParams)
	}
	if err := s.backend.Execute(tx); err != nil {
		return nil, err
	}
	seq, hash := s.backend.Sequence()
	return &sendTxResult{TxID: tx.ID(), Sequence: seq, BankHash: hex.EncodeToString(hash[:])}, nil
}

func (s *service) getTransaction(id string) (*txInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: tx_id is required", errInvalidParams)
	}
	tx, meta, err := s.backend.GetTxByID(id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: transaction %s", errNotFound, id)
	}
	status := "failed"
	if meta.Succeeded() {
		status = "success"
	}
	return &txInfo{
		TxID:        meta.TxID,
		Status:      status,
		Sequence:    meta.Sequence,
		ProcessedAt: meta.ProcessedAt,
		ErrorCode:   meta.ErrorCode,
		Error:       meta.Error,
		BankHash:    meta.BankHash,
		Transaction: tx,
	}, nil
}

func (s *service) getAccount(raw string) (*accountInfo, error) {
	addr, err := parseAddress("address", raw)
	if err != nil {
		return nil, err
	}
	acc, err := s.backend.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return &accountInfo{
		Address: acc.Address.String(),
		Owner:   acc.Owner.String(),
		Balance: acc.Balance.Dec(),
		Space:   len(acc.Data),
		Data:    base64.StdEncoding.EncodeToString(acc.Data),
	}, nil
}

func (s *service) getConfig(rawCreator string) (*multisig.ConfigView, error) {
	creator, err := parseAddress("creator", rawCreator)
	if err != nil {
		return nil, err
	}
	addr, cfg, err := s.client.ConfigOf(creator)
	if err != nil {
		return nil, err
	}
	return multisig.NewConfigView(addr, cfg), nil
}

func (s *service) getProposal(rawCreator string, id uint64) (*multisig.ProposalView, error) {
	creator, err := parseAddress("creator", rawCreator)
	if err != nil {
		return nil, err
	}
	config, _, err := s.client.ConfigOf(creator)
	if err != nil {
		return nil, err
	}
	addr, p, err := s.client.Proposal(config, id)
	if err != nil {
		return nil, err
	}
	return multisig.NewProposalView(addr, p), nil
}

func (s *service) getReceipt(rawVoter string) (*multisig.ReceiptView, error) {
	voter, err := parseAddress("voter", rawVoter)
	if err != nil {
		return nil, err
	}
	addr, r, err := s.client.Receipt(voter)
	if err != nil {
		return nil, err
	}
	return multisig.NewReceiptView(addr, voter, r), nil
}

func (s *service) sequence() *sequenceInfo {
	seq, hash := s.backend.Sequence()
	return &sequenceInfo{Sequence: seq, BankHash: hex.EncodeToString(hash[:])}
}

func isNotFound(err error) bool {
	return stderrors.Is(err, errNotFound) || stderrors.Is(err, multisig.ErrNotFound)
}

func isProgramError(err error) bool {
	return merrors.CodeOf(err) != ""
}

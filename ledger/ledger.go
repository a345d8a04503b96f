package ledger

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/multisig/db"
	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/events"
	"github.com/mezonai/multisig/interfaces"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/monitoring"
	"github.com/mezonai/multisig/store"
	"github.com/mezonai/multisig/transaction"
	"github.com/mezonai/multisig/types"
)

// GenesisAccount is an address funded when a fresh ledger is initialised.
type GenesisAccount struct {
	Address solana.PublicKey
	Amount  *uint256.Int
}

// instructionNamer is implemented by programs that can label their opcodes
// for metrics.
type instructionNamer interface {
	InstructionName(data []byte) string
}

// Ledger executes signed transactions against persisted accounts. Calls are
// applied one at a time and each commits in a single database batch.
type Ledger struct {
	mu        sync.Mutex
	stores    *store.Stores
	txManager *db.DBTxManager
	clock     interfaces.Clock
	rent      Rent
	bus       *events.EventBus
	programs  map[solana.PublicKey]interfaces.Program

	seq      uint64
	prevHash [32]byte
}

func NewLedger(stores *store.Stores, clock interfaces.Clock, rent Rent, bus *events.EventBus) (*Ledger, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Ledger{
		stores:    stores,
		txManager: db.NewDBTxManager(stores.Provider),
		clock:     clock,
		rent:      rent,
		bus:       bus,
		programs:  make(map[solana.PublicKey]interfaces.Program),
	}

	seq, ok, err := stores.StateMeta.LatestSequence()
	if err != nil {
		return nil, fmt.Errorf("load latest sequence: %w", err)
	}
	if ok {
		hash, found, err := stores.StateMeta.GetBankHash(seq)
		if err != nil {
			return nil, fmt.Errorf("load bank hash: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("bank hash for sequence %d missing", seq)
		}
		l.seq = seq
		l.prevHash = hash
		logx.Info("LEDGER", fmt.Sprintf("Resumed at sequence %d, bank hash %s", seq, hex.EncodeToString(hash[:])))
	}
	return l, nil
}

func (l *Ledger) RegisterProgram(p interfaces.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[p.ID()] = p
	logx.Info("LEDGER", fmt.Sprintf("Registered program %s", p.ID()))
}

// AccountExists reports whether anything has been stored at addr.
func (l *Ledger) AccountExists(addr solana.PublicKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, err := l.stores.Accounts.ExistsByAddr(addr)
	if err != nil {
		logx.Error("LEDGER", "Could not check account", addr.String(), err)
		return false
	}
	return ok
}

// GetAccount returns the account at addr, or an unallocated system account.
func (l *Ledger) GetAccount(addr solana.PublicKey) (*types.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAccount(addr)
}

func (l *Ledger) loadAccount(addr solana.PublicKey) (*types.Account, error) {
	acc, err := l.stores.Accounts.GetByAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("could not load account %s: %w", addr, err)
	}
	if acc == nil {
		return types.NewSystemAccount(addr), nil
	}
	return acc, nil
}

// Fund credits addr outside of any program call.
func (l *Ledger) Fund(addr solana.PublicKey, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("fund amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = new(uint256.Int).Add(acc.Balance, amount)
	if err := l.stores.Accounts.Store(acc); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	logx.Info("LEDGER", fmt.Sprintf("Funded %s with %s, balance %s", addr, amount.Dec(), acc.Balance.Dec()))
	return nil
}

// CreateAccountsFromGenesis funds each genesis address that does not exist yet.
func (l *Ledger) CreateAccountsFromGenesis(accounts []GenesisAccount) error {
	for _, g := range accounts {
		if l.AccountExists(g.Address) {
			logx.Info("LEDGER", fmt.Sprintf("Genesis account %s already present", g.Address))
			continue
		}
		if err := l.Fund(g.Address, g.Amount); err != nil {
			return fmt.Errorf("could not create genesis account %s: %w", g.Address, err)
		}
	}
	return nil
}

func (l *Ledger) GetTxByID(id string) (*transaction.Transaction, *types.TransactionMeta, error) {
	tx, err := l.stores.Txs.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	meta, err := l.stores.TxMetas.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return tx, meta, nil
}

// Sequence returns the number of committed transactions and the running bank hash.
func (l *Ledger) Sequence() (uint64, [32]byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq, l.prevHash
}

// Execute runs every instruction of tx against one shared view of its
// accounts. Either all writes commit or none do.
func (l *Ledger) Execute(tx *transaction.Transaction) error {
	start := time.Now()
	defer func() { monitoring.RecordExecuteTime(time.Since(start)) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	signed, err := tx.Verify()
	if err != nil {
		monitoring.RecordRejectedTx(monitoring.TxInvalidSignature)
		logx.Warn("LEDGER", "Rejected transaction:", err)
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	dedup := tx.DedupHash()
	seen, err := l.stores.Txs.HasDedupHash(dedup)
	if err != nil {
		return fmt.Errorf("could not check duplicate: %w", err)
	}
	if seen {
		monitoring.RecordRejectedTx(monitoring.TxDuplicated)
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, dedup)
	}

	now := l.clock.Now()
	unixNow := uint64(now.Unix())

	loaded, views, err := l.buildViews(tx, signed)
	if err != nil {
		monitoring.RecordRejectedTx(monitoring.TxHostError)
		return err
	}

	opcodes := make([]uint8, 0, len(tx.Instructions))
	for i, ix := range tx.Instructions {
		if len(ix.Data) > 0 {
			opcodes = append(opcodes, ix.Data[0])
		}
		if err := l.runInstruction(ix, views, unixNow); err != nil {
			wrapped := fmt.Errorf("instruction %d: %w", i, err)
			l.recordFailure(tx, unixNow, now, wrapped)
			return wrapped
		}
	}

	var updated []*types.Account
	for key, ai := range views {
		if ai.IsWritable && ai.Differs(loaded[key]) {
			updated = append(updated, ai.ToAccount())
		}
	}

	seq := l.seq + 1
	bankHash := CombineBankHash(l.prevHash, ComputeAccountsDeltaHash(updated))
	meta := types.NewTxMeta(tx, seq, unixNow, types.TxStatusSuccess, "", "")
	meta.BankHash = hex.EncodeToString(bankHash[:])

	err = l.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		if err := l.stores.Accounts.StoreBatch(batch, updated); err != nil {
			return err
		}
		if err := l.stores.Txs.StoreBatch(batch, []*transaction.Transaction{tx}); err != nil {
			return err
		}
		if err := l.stores.TxMetas.StoreBatch(batch, []*types.TransactionMeta{meta}); err != nil {
			return err
		}
		l.stores.StateMeta.SetBankHash(batch, seq, bankHash)
		return nil
	})
	if err != nil {
		monitoring.RecordRejectedTx(monitoring.TxHostError)
		logx.Error("LEDGER", "Commit failed for", tx.ID(), err)
		return err
	}

	l.seq = seq
	l.prevHash = bankHash
	monitoring.SetCommittedSequence(seq)
	logx.Info("LEDGER", fmt.Sprintf("Applied tx %s at sequence %d, %d accounts updated", tx.ID(), seq, len(updated)))
	if l.bus != nil {
		l.bus.Publish(events.NewTransactionProcessed(tx.ID(), seq, opcodes, now))
	}
	return nil
}

// buildViews loads each distinct account once. Signer bits come from verified
// signatures, writable bits from the union of all metas naming the key.
func (l *Ledger) buildViews(tx *transaction.Transaction, signed map[solana.PublicKey]bool) (map[solana.PublicKey]*types.Account, map[solana.PublicKey]*types.AccountInfo, error) {
	writable := make(map[solana.PublicKey]bool)
	var keys solana.PublicKeySlice
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			keys.UniqueAppend(m.PublicKey)
			if m.IsWritable {
				writable[m.PublicKey] = true
			}
		}
	}

	stored, err := l.stores.Accounts.GetBatch(keys)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load accounts: %w", err)
	}
	loaded := make(map[solana.PublicKey]*types.Account, len(keys))
	views := make(map[solana.PublicKey]*types.AccountInfo, len(keys))
	for _, k := range keys {
		acc, ok := stored[k]
		if !ok || acc == nil {
			acc = types.NewSystemAccount(k)
		}
		loaded[k] = acc
		views[k] = types.NewAccountInfo(acc, signed[k], writable[k])
	}
	return loaded, views, nil
}

func (l *Ledger) runInstruction(ix transaction.Instruction, views map[solana.PublicKey]*types.AccountInfo, now uint64) (err error) {
	program, ok := l.programs[ix.ProgramID]
	if !ok {
		monitoring.RecordRejectedTx(monitoring.TxHostError)
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}
	opcode := instructionLabel(program, ix.Data)

	accounts := make([]*types.AccountInfo, len(ix.Accounts))
	pre := make(map[solana.PublicKey]*types.Account, len(ix.Accounts))
	for i, m := range ix.Accounts {
		accounts[i] = views[m.PublicKey]
		if _, seen := pre[m.PublicKey]; !seen {
			pre[m.PublicKey] = accounts[i].ToAccount()
		}
	}

	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			logx.Error("LEDGER", "Program panicked:", r)
			err = fmt.Errorf("program %s panicked: %v", ix.ProgramID, r)
		}
		if err != nil {
			monitoring.RecordInstruction(opcode, monitoring.ResultError)
		} else {
			monitoring.RecordInstruction(opcode, monitoring.ResultOK)
		}
	}()

	rt := newCallRuntime(program.ID(), now, l.rent)
	if err := program.Process(rt, accounts, ix.Data); err != nil {
		if merrors.CodeOf(err) != "" {
			monitoring.RecordRejectedTx(monitoring.TxProgramError)
		} else {
			monitoring.RecordRejectedTx(monitoring.TxHostError)
		}
		return err
	}
	for key, before := range pre {
		if err := rt.verify(before, views[key]); err != nil {
			monitoring.RecordRejectedTx(monitoring.TxHostError)
			return err
		}
	}
	return nil
}

func instructionLabel(p interfaces.Program, data []byte) string {
	if n, ok := p.(instructionNamer); ok {
		return n.InstructionName(data)
	}
	if len(data) == 0 {
		return "empty"
	}
	return fmt.Sprintf("op_%d", data[0])
}

// recordFailure keeps the outcome of a verified transaction that did not
// commit. No account state and no dedup marker is written, so the same
// message may be retried.
func (l *Ledger) recordFailure(tx *transaction.Transaction, unixNow uint64, at time.Time, cause error) {
	code := string(merrors.CodeOf(cause))
	meta := types.NewTxMeta(tx, l.seq, unixNow, types.TxStatusFailed, code, cause.Error())
	if err := l.stores.TxMetas.Store(meta); err != nil {
		logx.Error("LEDGER", "Could not store failed tx meta", tx.ID(), err)
	}
	logx.Warn("LEDGER", fmt.Sprintf("Apply fail %s: %v", tx.ID(), cause))
	if l.bus != nil {
		l.bus.Publish(events.NewTransactionFailed(tx.ID(), code, cause.Error(), at))
	}
}

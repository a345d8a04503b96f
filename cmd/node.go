package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/multisig/config"
	"github.com/mezonai/multisig/events"
	"github.com/mezonai/multisig/exception"
	"github.com/mezonai/multisig/ledger"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/monitoring"
	"github.com/mezonai/multisig/multisig"
	"github.com/mezonai/multisig/store"
	"github.com/mezonai/multisig/transaction"
)

const hostSampleInterval = 15 * time.Second

// node is one opened ledger with the multisig program registered.
type node struct {
	cfg       *config.NodeConfig
	programID solana.PublicKey
	stores    *store.Stores
	ledger    *ledger.Ledger
	client    *multisig.Client
	bus       *events.EventBus
	subID     events.SubscriberID
	metrics   *http.Server
	stopHost  context.CancelFunc
}

func openNode() (*node, error) {
	cfg, err := config.LoadNodeConfig(filepath.Join(rootFlags.Home, config.NodeConfigFile))
	if err != nil {
		return nil, err
	}
	rentCfg, err := config.LoadRentConfig(filepath.Join(rootFlags.Home, config.RuntimeConfigFile))
	if err != nil {
		return nil, err
	}

	stores, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	bus := events.NewEventBus()
	l, err := ledger.NewLedger(stores, ledger.SystemClock{}, rentCfg.Rent(), bus)
	if err != nil {
		stores.Close()
		return nil, err
	}
	programID := cfg.Program()
	l.RegisterProgram(multisig.NewProgram(programID))

	n := &node{
		cfg:       cfg,
		programID: programID,
		stores:    stores,
		ledger:    l,
		client:    multisig.NewClient(programID, l),
		bus:       bus,
	}
	n.watchEvents()
	if rootFlags.Metrics {
		n.metrics = monitoring.NewMetricsServer(cfg.MetricsAddr)
		exception.SafeGo("MetricsServer", func() {
			logx.Info("METRICS", "Serving metrics on", cfg.MetricsAddr)
			if err := n.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Error("METRICS", "Metrics server stopped:", err)
			}
		})
		ctx, cancel := context.WithCancel(context.Background())
		n.stopHost = cancel
		exception.SafeGo("HostSampler", func() {
			monitoring.RunHostSampler(ctx, cfg.Store.Directory, hostSampleInterval)
		})
	}
	return n, nil
}

func (n *node) watchEvents() {
	id, ch := n.bus.Subscribe()
	n.subID = id
	exception.SafeGo("EventLogger", func() {
		for ev := range ch {
			switch e := ev.(type) {
			case *events.TransactionProcessed:
				logx.Info("EVENT", fmt.Sprintf("tx %s processed at sequence %d", e.TxID(), e.Sequence()))
			case *events.TransactionFailed:
				logx.Warn("EVENT", fmt.Sprintf("tx %s failed [%s]: %s", e.TxID(), e.ErrorCode(), e.ErrorMessage()))
			}
		}
	})
}

func (n *node) Close() {
	n.bus.Unsubscribe(n.subID)
	if n.stopHost != nil {
		n.stopHost()
	}
	if n.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := n.metrics.Shutdown(ctx); err != nil {
			logx.Warn("METRICS", "Metrics shutdown:", err)
		}
	}
	n.stores.Close()
}

// submit signs one instruction with signer and executes it.
func (n *node) submit(ix transaction.Instruction, signer solana.PrivateKey) (string, error) {
	tx := transaction.NewTransaction(uint64(time.Now().UnixNano()), ix)
	if err := tx.Sign(signer); err != nil {
		return "", err
	}
	if err := n.ledger.Execute(tx); err != nil {
		return tx.ID(), err
	}
	return tx.ID(), nil
}

// withNode opens the node, runs fn and closes it.
func withNode(fn func(n *node) error) error {
	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/multisig/jsonrpc"
	"github.com/mezonai/multisig/logx"
)

var serveFlags struct {
	Addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over JSON-RPC and REST until interrupted",
	Long: `Serve the ledger over HTTP:
- POST /rpc accepts JSON-RPC 2.0 calls (tx.send, tx.get, account.get, multisig.*, ledger.sequence, health.check)
- GET /v1/... returns accounts, group configs, proposals, receipts and transactions
CORS is configured from CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS, CORS_ALLOWED_HEADERS and CORS_MAX_AGE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			addr := serveFlags.Addr
			if addr == "" {
				addr = n.cfg.RPCAddr
			}
			srv := jsonrpc.NewServer(addr, n.ledger, n.client)
			if cors, ok := jsonrpc.CORSFromEnv(); ok {
				srv.SetCORSConfig(cors)
			}
			srv.Start()
			fmt.Printf("serving %s on %s\n", n.programID, addr)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logx.Info("RPC", "Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	nodeCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", "", "Listen address (default rpc_addr from node.yml)")
}

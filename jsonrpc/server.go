package jsonrpc

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/gorilla/mux"

	merrors "github.com/mezonai/multisig/errors"
	"github.com/mezonai/multisig/exception"
	"github.com/mezonai/multisig/jsonx"
	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/monitoring"
	"github.com/mezonai/multisig/multisig"
	"github.com/mezonai/multisig/transaction"
)

// JSON-RPC method names
const (
	MethodTxSend = "tx.send"
	MethodTxGet  = "tx.get"

	MethodAccountGet = "account.get"

	MethodMultisigGetConfig   = "multisig.getconfig"
	MethodMultisigGetProposal = "multisig.getproposal"
	MethodMultisigGetReceipt  = "multisig.getreceipt"

	MethodLedgerSequence = "ledger.sequence"
	MethodHealthCheck    = "health.check"
)

// Application error codes, outside the range reserved by JSON-RPC.
const (
	CodeProgramError jrpc2.Code = -32010
	CodeLedgerError  jrpc2.Code = -32011
	CodeNotFound     jrpc2.Code = -32004
)

type sendTxParams struct {
	Transaction *transaction.Transaction `json:"transaction"`
}

type txIDParams struct {
	TxID string `json:"tx_id"`
}

type addressParams struct {
	Address string `json:"address"`
}

type creatorParams struct {
	Creator string `json:"creator"`
}

type proposalParams struct {
	Creator string `json:"creator"`
	ID      uint64 `json:"id"`
}

type voterParams struct {
	Voter string `json:"voter"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Sequence uint64 `json:"sequence"`
}

// Server exposes the ledger over JSON-RPC at /rpc and read-only REST routes under /v1.
type Server struct {
	addr        string
	svc         *service
	corsConfig  CORSConfig
	httpSrv     *http.Server
	closeBridge func() error
}

func NewServer(addr string, backend Backend, client *multisig.Client) *Server {
	return &Server{
		addr: addr,
		svc:  &service{backend: backend, client: client},
	}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Handler builds the router. Call it once per server.
func (s *Server) Handler() http.Handler {
	jh := jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})
	s.closeBridge = jh.Close

	router := mux.NewRouter()
	router.Use(s.corsMiddleware)
	router.Handle("/rpc", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jh.ServeHTTP(w, r)
	})).Methods(http.MethodPost, http.MethodOptions)

	router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet, http.MethodOptions)
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/accounts/{address}", s.getAccount).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/multisig/{creator}", s.getConfig).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/multisig/{creator}/proposals/{id}", s.getProposal).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/receipts/{voter}", s.getReceipt).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/tx/{id}", s.getTransaction).Methods(http.MethodGet, http.MethodOptions)
	return router
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	exception.SafeGo("RPCServer", func() {
		logx.Info("RPC", "Serving JSON-RPC and REST on", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logx.Error("RPC", "Server stopped:", err)
		}
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	if s.closeBridge != nil {
		if cerr := s.closeBridge(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodTxSend: handler.New(func(ctx context.Context, p sendTxParams) (*sendTxResult, error) {
			res, err := s.svc.sendTransaction(p.Transaction)
			return observe(MethodTxSend, res, err)
		}),
		MethodTxGet: handler.New(func(ctx context.Context, p txIDParams) (*txInfo, error) {
			res, err := s.svc.getTransaction(p.TxID)
			return observe(MethodTxGet, res, err)
		}),
		MethodAccountGet: handler.New(func(ctx context.Context, p addressParams) (*accountInfo, error) {
			res, err := s.svc.getAccount(p.Address)
			return observe(MethodAccountGet, res, err)
		}),
		MethodMultisigGetConfig: handler.New(func(ctx context.Context, p creatorParams) (*multisig.ConfigView, error) {
			res, err := s.svc.getConfig(p.Creator)
			return observe(MethodMultisigGetConfig, res, err)
		}),
		MethodMultisigGetProposal: handler.New(func(ctx context.Context, p proposalParams) (*multisig.ProposalView, error) {
			res, err := s.svc.getProposal(p.Creator, p.ID)
			return observe(MethodMultisigGetProposal, res, err)
		}),
		MethodMultisigGetReceipt: handler.New(func(ctx context.Context, p voterParams) (*multisig.ReceiptView, error) {
			res, err := s.svc.getReceipt(p.Voter)
			return observe(MethodMultisigGetReceipt, res, err)
		}),
		MethodLedgerSequence: handler.New(func(ctx context.Context) (*sequenceInfo, error) {
			return observe(MethodLedgerSequence, s.svc.sequence(), nil)
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*healthResponse, error) {
			return observe(MethodHealthCheck, s.health(), nil)
		}),
	}
}

func (s *Server) health() *healthResponse {
	seq, _ := s.svc.backend.Sequence()
	return &healthResponse{Status: "ok", Sequence: seq}
}

func observe[T any](method string, v T, err error) (T, error) {
	if err != nil {
		monitoring.RecordRPCRequest(method, monitoring.ResultError)
		logx.Debug("RPC", method, "failed:", err)
		var zero T
		return zero, toJRPC2Error(err)
	}
	monitoring.RecordRPCRequest(method, monitoring.ResultOK)
	return v, nil
}

func toJRPC2Error(err error) error {
	var pe *merrors.ProgramError
	switch {
	case stderrors.As(err, &pe):
		return jrpc2.Errorf(CodeProgramError, "%s", pe.Message).WithData(pe)
	case stderrors.Is(err, errInvalidParams):
		return jrpc2.Errorf(jrpc2.InvalidParams, "%s", err.Error())
	case isNotFound(err):
		return jrpc2.Errorf(CodeNotFound, "%s", err.Error())
	default:
		return jrpc2.Errorf(CodeLedgerError, "%s", err.Error())
	}
}

// --- REST ---

type restError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "health", s.health(), nil)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.getAccount(mux.Vars(r)["address"])
	s.writeJSON(w, "rest.account", res, err)
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.getConfig(mux.Vars(r)["creator"])
	s.writeJSON(w, "rest.multisig", res, err)
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		s.writeJSON(w, "rest.proposal", nil, errInvalidParams)
		return
	}
	res, err := s.svc.getProposal(vars["creator"], id)
	s.writeJSON(w, "rest.proposal", res, err)
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.getReceipt(mux.Vars(r)["voter"])
	s.writeJSON(w, "rest.receipt", res, err)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.getTransaction(mux.Vars(r)["id"])
	s.writeJSON(w, "rest.tx", res, err)
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, v interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		monitoring.RecordRPCRequest(route, monitoring.ResultError)
		status := http.StatusInternalServerError
		switch {
		case stderrors.Is(err, errInvalidParams):
			status = http.StatusBadRequest
		case isNotFound(err):
			status = http.StatusNotFound
		case isProgramError(err):
			status = http.StatusUnprocessableEntity
		}
		w.WriteHeader(status)
		v = restError{Error: err.Error(), Code: string(merrors.CodeOf(err))}
	} else {
		monitoring.RecordRPCRequest(route, monitoring.ResultOK)
	}
	if encErr := jsonx.NewEncoder(w).Encode(v); encErr != nil {
		logx.Error("RPC", "Failed to write response:", encErr)
	}
}

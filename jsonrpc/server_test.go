package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/multisig/db"
	"github.com/mezonai/multisig/ledger"
	"github.com/mezonai/multisig/multisig"
	"github.com/mezonai/multisig/store"
	"github.com/mezonai/multisig/transaction"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"error"`
}

type fixture struct {
	t       *testing.T
	srv     *httptest.Server
	ledger  *ledger.Ledger
	creator solana.PrivateKey
	members []solana.PublicKey
	nonce   uint64
	nextID  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores, err := store.NewStores(db.NewMemoryProvider())
	require.NoError(t, err)
	l, err := ledger.NewLedger(stores, ledger.NewFixedClock(100), ledger.DefaultRent(), nil)
	require.NoError(t, err)
	l.RegisterProgram(multisig.NewProgram(multisig.ProgramID))

	creator, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	require.NoError(t, l.Fund(creator.PublicKey(), uint256.NewInt(1_000_000_000)))

	s := NewServer("", l, multisig.NewClient(multisig.ProgramID, l))
	s.SetCORSConfig(CORSConfig{AllowedOrigins: []string{"https://app.example"}, AllowedMethods: []string{"POST", "GET"}})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Shutdown(context.Background())
	})

	return &fixture{
		t:       t,
		srv:     srv,
		ledger:  l,
		creator: creator,
		members: []solana.PublicKey{creator.PublicKey(), solana.NewWallet().PublicKey()},
	}
}

func (f *fixture) call(method string, params interface{}) rpcResponse {
	f.t.Helper()
	f.nextID++
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      f.nextID,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	require.NoError(f.t, err)
	resp, err := http.Post(f.srv.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(f.t, err)
	defer resp.Body.Close()
	require.Equal(f.t, http.StatusOK, resp.StatusCode)

	var out rpcResponse
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *fixture) signedCreate() *transaction.Transaction {
	f.t.Helper()
	ix, err := multisig.NewCreateMultisigInstruction(multisig.ProgramID, f.creator.PublicKey(), f.members, 2, 3600)
	require.NoError(f.t, err)
	f.nonce++
	tx := transaction.NewTransaction(f.nonce, ix)
	require.NoError(f.t, tx.Sign(f.creator))
	return tx
}

func (f *fixture) get(path string) (*http.Response, []byte) {
	f.t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(f.t, err)
	return resp, buf.Bytes()
}

func TestSendTransactionAndQuery(t *testing.T) {
	f := newFixture(t)

	tx := f.signedCreate()
	out := f.call(MethodTxSend, map[string]interface{}{"transaction": tx})
	require.Nil(t, out.Error)
	var sent sendTxResult
	require.NoError(t, json.Unmarshal(out.Result, &sent))
	assert.Equal(t, tx.ID(), sent.TxID)
	assert.Equal(t, uint64(1), sent.Sequence)

	out = f.call(MethodMultisigGetConfig, map[string]string{"creator": f.creator.PublicKey().String()})
	require.Nil(t, out.Error)
	var cfg multisig.ConfigView
	require.NoError(t, json.Unmarshal(out.Result, &cfg))
	assert.Equal(t, uint64(2), cfg.Threshold)
	assert.Equal(t, uint64(3600), cfg.ProposalExpiry)
	assert.Len(t, cfg.Members, 2)

	out = f.call(MethodAccountGet, map[string]string{"address": cfg.Address})
	require.Nil(t, out.Error)
	var acc accountInfo
	require.NoError(t, json.Unmarshal(out.Result, &acc))
	assert.Equal(t, multisig.ProgramID.String(), acc.Owner)
	assert.Equal(t, 411, acc.Space)

	out = f.call(MethodTxGet, map[string]string{"tx_id": tx.ID()})
	require.Nil(t, out.Error)
	var info txInfo
	require.NoError(t, json.Unmarshal(out.Result, &info))
	assert.Equal(t, "success", info.Status)
	assert.Equal(t, uint64(1), info.Sequence)
	assert.NotEmpty(t, info.BankHash)

	out = f.call(MethodLedgerSequence, nil)
	require.Nil(t, out.Error)
	var seq sequenceInfo
	require.NoError(t, json.Unmarshal(out.Result, &seq))
	assert.Equal(t, uint64(1), seq.Sequence)
	assert.Equal(t, sent.BankHash, seq.BankHash)
}

func TestProgramErrorCarriesCode(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, f.call(MethodTxSend, map[string]interface{}{"transaction": f.signedCreate()}).Error)

	again := f.signedCreate()
	out := f.call(MethodTxSend, map[string]interface{}{"transaction": again})
	require.NotNil(t, out.Error)
	assert.Equal(t, int(CodeProgramError), out.Error.Code)
	var data struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(out.Error.Data, &data))
	assert.Equal(t, "already_initialized", data.Code)

	out = f.call(MethodTxGet, map[string]string{"tx_id": again.ID()})
	require.Nil(t, out.Error)
	var info txInfo
	require.NoError(t, json.Unmarshal(out.Result, &info))
	assert.Equal(t, "failed", info.Status)
	assert.Equal(t, "already_initialized", info.ErrorCode)
	assert.Nil(t, info.Transaction)
}

func TestReplayIsLedgerError(t *testing.T) {
	f := newFixture(t)
	tx := f.signedCreate()
	require.Nil(t, f.call(MethodTxSend, map[string]interface{}{"transaction": tx}).Error)

	out := f.call(MethodTxSend, map[string]interface{}{"transaction": tx})
	require.NotNil(t, out.Error)
	assert.Equal(t, int(CodeLedgerError), out.Error.Code)
	assert.Contains(t, out.Error.Message, "already processed")
}

func TestQueryErrors(t *testing.T) {
	f := newFixture(t)

	out := f.call(MethodMultisigGetConfig, map[string]string{"creator": "not-an-address"})
	require.NotNil(t, out.Error)
	assert.Equal(t, -32602, out.Error.Code)

	out = f.call(MethodMultisigGetConfig, map[string]string{"creator": f.creator.PublicKey().String()})
	require.NotNil(t, out.Error)
	assert.Equal(t, int(CodeNotFound), out.Error.Code)

	out = f.call(MethodTxGet, map[string]string{"tx_id": "missing"})
	require.NotNil(t, out.Error)
	assert.Equal(t, int(CodeNotFound), out.Error.Code)
}

func TestRESTRoutes(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, f.call(MethodTxSend, map[string]interface{}{"transaction": f.signedCreate()}).Error)
	creator := f.creator.PublicKey().String()

	resp, body := f.get("/v1/multisig/" + creator)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg multisig.ConfigView
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, creator, cfg.Creator)

	resp, _ = f.get("/v1/multisig/" + creator + "/proposals/0")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.get("/v1/multisig/" + creator + "/proposals/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.get("/v1/accounts/zzz")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.get("/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h healthResponse
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, uint64(1), h.Sequence)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/rpc", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, GET", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestCORSFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CORS_MAX_AGE", "600")
	cfg, ok := CORSFromEnv()
	require.True(t, ok)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 600, cfg.MaxAge)
}

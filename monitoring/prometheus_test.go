package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInstruction(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(metrics().instructionsTotal.WithLabelValues("vote", ResultOK))
	RecordInstruction("vote", ResultOK)
	RecordInstruction("vote", ResultOK)
	after := testutil.ToFloat64(metrics().instructionsTotal.WithLabelValues("vote", ResultOK))
	assert.Equal(t, before+2, after)
}

func TestMetricsServerExposesCollectors(t *testing.T) {
	RecordExecuteTime(3 * time.Millisecond)
	SetCommittedSequence(9)

	srv := NewMetricsServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "multisig_execute_seconds")
	assert.Contains(t, body, "multisig_committed_sequence 9")
}

func TestRecordRPCRequest(t *testing.T) {
	before := testutil.ToFloat64(metrics().rpcRequestsTotal.WithLabelValues("account.get", ResultError))
	RecordRPCRequest("account.get", ResultError)
	after := testutil.ToFloat64(metrics().rpcRequestsTotal.WithLabelValues("account.get", ResultError))
	assert.Equal(t, before+1, after)
}

func TestHostSamplerSetsGauges(t *testing.T) {
	SetHostSample(HostSample{CPUPercent: 12.5, MemPercent: 40, DiskPercent: 75})
	assert.Equal(t, 12.5, testutil.ToFloat64(metrics().hostCPUPercent))
	assert.Equal(t, 40.0, testutil.ToFloat64(metrics().hostMemPercent))
	assert.Equal(t, 75.0, testutil.ToFloat64(metrics().hostDiskPercent))

	s := SampleHost(t.TempDir())
	assert.GreaterOrEqual(t, s.MemPercent, 0.0)
	assert.GreaterOrEqual(t, s.DiskPercent, 0.0)
}

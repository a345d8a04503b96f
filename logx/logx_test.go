package logx

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestOperandsAreSpaceSeparated(t *testing.T) {
	buf := captureOutput(t)

	Info("LEDGER", "Registered program", "H8bp")
	assert.Contains(t, buf.String(), "[INFO][LEDGER]"+ColorReset+": Registered program H8bp\n")

	buf.Reset()
	Warn("STORE", "Failed to close:", errors.New("closed"), 3)
	assert.Contains(t, buf.String(), ": Failed to close: closed 3\n")
}

func TestSingleMessageIsUnchanged(t *testing.T) {
	buf := captureOutput(t)

	Error("RPC", "Server stopped")
	assert.Contains(t, buf.String(), "[ERROR][RPC]"+ColorReset+": Server stopped\n")
}

func TestErrorfLogsAndReturns(t *testing.T) {
	buf := captureOutput(t)

	err := Errorf("node crashed: %d", 7)
	assert.EqualError(t, err, "node crashed: 7")
	assert.Contains(t, buf.String(), ": node crashed: 7\n")
}

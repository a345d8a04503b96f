package exception

import (
	"runtime/debug"

	"github.com/mezonai/multisig/logx"
	"github.com/mezonai/multisig/monitoring"
)

// SafeGo runs fn in a goroutine and logs instead of crashing on panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", "Panic in:", name, r, string(debug.Stack()))
			}
		}()
		fn()
	}()
}

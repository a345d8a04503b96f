package monitoring

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mezonai/multisig/logx"
)

// HostSample is one reading of the machine the ledger runs on.
type HostSample struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
}

// SampleHost reads CPU, memory and the usage of the filesystem holding dir.
// A failed probe leaves its field at zero.
func SampleHost(dir string) HostSample {
	var s HostSample
	if pct, err := cpu.Percent(0, false); err != nil {
		logx.Debug("MONITORING", "cpu sample failed:", err)
	} else if len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err != nil {
		logx.Debug("MONITORING", "memory sample failed:", err)
	} else {
		s.MemPercent = vm.UsedPercent
	}
	if dir != "" {
		if du, err := disk.Usage(dir); err != nil {
			logx.Debug("MONITORING", "disk sample failed:", err)
		} else {
			s.DiskPercent = du.UsedPercent
		}
	}
	return s
}

func SetHostSample(s HostSample) {
	m := metrics()
	m.hostCPUPercent.Set(s.CPUPercent)
	m.hostMemPercent.Set(s.MemPercent)
	m.hostDiskPercent.Set(s.DiskPercent)
}

// RunHostSampler updates the host gauges every interval until ctx is done.
func RunHostSampler(ctx context.Context, dir string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	SetHostSample(SampleHost(dir))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SetHostSample(SampleHost(dir))
		}
	}
}

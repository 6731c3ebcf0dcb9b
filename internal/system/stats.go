package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostStats is a snapshot of the machine the render ran on.
type HostStats struct {
	CPUModel    string
	LogicalCPUs int
	CPUPercent  float64
	MemTotalMB  uint64
	MemUsedPct  float64
	ProcessRSS  uint64
}

// CollectHostStats samples host and process usage. Individual probes that
// fail are left at zero.
func CollectHostStats() HostStats {
	st := HostStats{LogicalCPUs: runtime.NumCPU()}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		st.CPUModel = infos[0].ModelName
	}
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemTotalMB = vm.Total / 1024 / 1024
		st.MemUsedPct = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			st.ProcessRSS = mi.RSS
		}
	}
	return st
}

// RenderReport summarises one render for the --stats output.
type RenderReport struct {
	BuildVersion string
	Mode         string
	Frames       int
	Priming      time.Duration
	Rendering    time.Duration
	Finalizing   time.Duration
	OutputBytes  int
	Host         HostStats
}

// Total is the wall time of the whole render.
func (r RenderReport) Total() time.Duration {
	return r.Priming + r.Rendering + r.Finalizing
}

// EffectiveFPS is frames divided by rendering wall time.
func (r RenderReport) EffectiveFPS() float64 {
	if r.Rendering <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Rendering.Seconds()
}

func (r RenderReport) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Mode: %s\n"+
			"Total Time: %.2fs\n"+
			"Priming: %.2fs\n"+
			"Rendering: %.2fs (%d frames)\n"+
			"Finalizing: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Output: %.1f KiB\n"+
			"Host: %s x%d | CPU %.1f%% | RAM %d MiB (%.1f%% used) | RSS %.1f MiB\n"+
			"----------------------------\n",
		r.BuildVersion, r.Mode, r.Total().Seconds(), r.Priming.Seconds(), r.Rendering.Seconds(), r.Frames,
		r.Finalizing.Seconds(), r.EffectiveFPS(), float64(r.OutputBytes)/1024,
		r.Host.CPUModel, r.Host.LogicalCPUs, r.Host.CPUPercent, r.Host.MemTotalMB, r.Host.MemUsedPct,
		float64(r.Host.ProcessRSS)/1024/1024,
	)
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench

import (
	"runtime"
	"unsafe"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	xcpu "golang.org/x/sys/cpu"
)

// SystemInfo describes the machine a report was produced on.
type SystemInfo struct {
	NumCPU        int     `json:"num_cpu"`
	PhysicalCPU   int     `json:"physical_cpu,omitempty"`
	GOMAXPROCS    int     `json:"gomaxprocs"`
	CPUModel      string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz   float64 `json:"cpu_speed_mhz,omitempty"`
	TotalMemory   uint64  `json:"total_memory_bytes,omitempty"`
	CacheLineSize int     `json:"cache_line_size"`
	GOOS          string  `json:"go_os"`
	GOARCH        string  `json:"go_arch"`
	GoVersion     string  `json:"go_version"`
}

// GatherSystemInfo collects CPU and memory details. Fields the platform
// cannot report are left zero.
func GatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		CacheLineSize: int(unsafe.Sizeof(xcpu.CacheLinePad{})),
		GOOS:          runtime.GOOS,
		GOARCH:        runtime.GOARCH,
		GoVersion:     runtime.Version(),
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCPU = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

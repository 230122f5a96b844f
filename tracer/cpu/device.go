package cpu

import (
	"fmt"
	"runtime"

	pscpu "github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Fallback clock speed (MHz) when the host does not report one.
const defaultMhz = 1000

// Information about the host CPU.
type DeviceInfo struct {
	Model        string
	Vendor       string
	PhysicalCore int
	LogicalCores int
	Mhz          float64

	TotalMemory     uint64
	AvailableMemory uint64
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%d cores @ %.0f MHz)", d.Model, d.LogicalCores, d.Mhz)
}

// Get information about the host CPU and memory. Fields that cannot be
// detected keep their zero value except for the logical core count and
// clock speed which fall back to runtime.NumCPU() and a nominal value.
func GetDeviceInfo() (DeviceInfo, error) {
	info := DeviceInfo{
		Model:        "unknown cpu",
		LogicalCores: runtime.NumCPU(),
		Mhz:          defaultMhz,
	}

	cpuInfo, err := pscpu.Info()
	if err != nil {
		return info, fmt.Errorf("cpu tracer: could not query cpu info: %w", err)
	}
	if len(cpuInfo) > 0 {
		info.Model = cpuInfo[0].ModelName
		info.Vendor = cpuInfo[0].VendorID
		if cpuInfo[0].Mhz > 0 {
			info.Mhz = cpuInfo[0].Mhz
		}
	}

	if physical, err := pscpu.Counts(false); err == nil {
		info.PhysicalCore = physical
	}
	if logical, err := pscpu.Counts(true); err == nil && logical > 0 {
		info.LogicalCores = logical
	}

	vmem, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("cpu tracer: could not query memory info: %w", err)
	}
	info.TotalMemory = vmem.Total
	info.AvailableMemory = vmem.Available

	return info, nil
}

// Estimate the tracing speed for the given number of workers.
func (d DeviceInfo) SpeedEstimate(workers int) uint32 {
	if workers <= 0 {
		workers = d.LogicalCores
	}
	if workers > d.LogicalCores && d.LogicalCores > 0 {
		workers = d.LogicalCores
	}
	mhz := d.Mhz
	if mhz <= 0 {
		mhz = defaultMhz
	}
	speed := uint32(mhz) * uint32(workers)
	if speed == 0 {
		speed = 1
	}
	return speed
}

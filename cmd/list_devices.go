package cmd

import (
	"bytes"
	"fmt"

	"github.com/arjpeg/raytracer/tracer/cpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the host cpu that is used for tracing.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	info, err := cpu.GetDeviceInfo()
	if err != nil {
		logger.Warningf("incomplete device information: %v", err)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Model", "Vendor", "Cores", "Threads", "MHz", "Memory", "Speed"})
	table.Append([]string{
		info.Model,
		info.Vendor,
		fmt.Sprintf("%d", info.PhysicalCore),
		fmt.Sprintf("%d", info.LogicalCores),
		fmt.Sprintf("%.0f", info.Mhz),
		fmt.Sprintf("%s / %s", fmtBytes(info.AvailableMemory), fmtBytes(info.TotalMemory)),
		fmt.Sprintf("%d", info.SpeedEstimate(0)),
	})
	table.Render()

	logger.Noticef("available devices\n%s", buf.String())
	return nil
}

func fmtBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

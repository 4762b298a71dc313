package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/domain/vo"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// printTargets renders the registry listing in its stored order
func printTargets(w io.Writer, targets []domain.EnrichedTarget) {
	table := newTable(w, "ID", "Path", "Enabled", "Priority", "Used", "Avail", "Cap", "Usage")
	for _, t := range targets {
		capacity := "unlimited"
		if !t.IsUnbounded() {
			capacity = gbString(t.MaxGB)
		}
		avail := gbString(t.AvailGB)
		if !t.ProbeAvailable && t.IsUnbounded() {
			avail = "unknown"
		}
		table.Append([]string{
			t.ID,
			t.ResolvedPath,
			strconv.FormatBool(t.Enabled),
			strconv.Itoa(t.Priority),
			gbString(t.UsedGB),
			avail,
			capacity,
			fmt.Sprintf("%.1f%%", t.UsagePercent),
		})
	}
	table.Render()
}

// printPartitions renders partitions sorted by mount point
func printPartitions(w io.Writer, partitions []domain.PartitionInfo) {
	sorted := make([]domain.PartitionInfo, len(partitions))
	copy(sorted, partitions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Mountpoint < sorted[j].Mountpoint
	})

	table := newTable(w, "Mountpoint", "Device", "FS", "Size", "Used", "Avail")
	for _, p := range sorted {
		table.Append([]string{
			p.Mountpoint,
			p.Device,
			p.FSType,
			gbString(p.SizeGB),
			gbString(p.UsedGB),
			gbString(p.AvailGB),
		})
	}
	table.Render()
}

func gbString(gb float64) string {
	return humanize.IBytes(uint64(vo.SizeFromGB(gb).Bytes()))
}

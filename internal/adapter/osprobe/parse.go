package osprobe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// parseDF parses `df -k -P <path>` output. The mount point is everything
// after the capacity column so mount points containing spaces survive.
func parseDF(out []byte) (*domain.DiskUsage, error) {
	lines := nonEmptyLines(string(out))
	if len(lines) < 2 {
		return nil, fmt.Errorf("df: expected header and data row, got %d lines", len(lines))
	}

	fields := strings.Fields(lines[len(lines)-1])
	capIdx := -1
	for i := 4; i < len(fields); i++ {
		if strings.HasSuffix(fields[i], "%") {
			capIdx = i
			break
		}
	}
	if capIdx < 0 || capIdx+1 >= len(fields) {
		return nil, fmt.Errorf("df: unrecognized row %q", lines[len(lines)-1])
	}

	var blocks [3]uint64
	for i := range blocks {
		n, err := strconv.ParseUint(fields[capIdx-3+i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("df: invalid block count %q: %w", fields[capIdx-3+i], err)
		}
		blocks[i] = n * 1024
	}

	return &domain.DiskUsage{
		Total: blocks[0],
		Used:  blocks[1],
		Avail: blocks[2],
		Mount: strings.Join(fields[capIdx+1:], " "),
	}, nil
}

// parseWMIValues parses `/format:value` output (Key=Value per line)
func parseWMIValues(out []byte) map[string]string {
	values := make(map[string]string)
	for _, line := range nonEmptyLines(string(out)) {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return values
}

// parseWMIDisk parses the FreeSpace/Size pair of one logical disk
func parseWMIDisk(out []byte, mount string) (*domain.DiskUsage, error) {
	values := parseWMIValues(out)

	size, err := strconv.ParseUint(values["Size"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wmic: invalid Size %q: %w", values["Size"], err)
	}
	free, err := strconv.ParseUint(values["FreeSpace"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wmic: invalid FreeSpace %q: %w", values["FreeSpace"], err)
	}
	if free > size {
		return nil, fmt.Errorf("wmic: free space %d exceeds size %d", free, size)
	}

	return &domain.DiskUsage{
		Total: size,
		Used:  size - free,
		Avail: free,
		Mount: mount,
	}, nil
}

var lsblkPair = regexp.MustCompile(`([A-Z:-]+)="((?:[^"\\]|\\.)*)"`)

// parseLsblk parses `lsblk -P -o NAME,MOUNTPOINT,FSTYPE` output. Rows
// without a mount point are skipped.
func parseLsblk(out []byte) []domain.Mount {
	var mounts []domain.Mount
	for _, line := range nonEmptyLines(string(out)) {
		row := make(map[string]string)
		for _, m := range lsblkPair.FindAllStringSubmatch(line, -1) {
			row[m[1]] = unescapeLsblk(m[2])
		}

		mountpoint := row["MOUNTPOINT"]
		if mountpoint == "" {
			continue
		}

		device := row["NAME"]
		if device != "" && !strings.HasPrefix(device, "/") {
			device = "/dev/" + device
		}

		mounts = append(mounts, domain.Mount{
			Device:     device,
			Mountpoint: mountpoint,
			FSType:     row["FSTYPE"],
		})
	}
	return mounts
}

// unescapeLsblk decodes the \xHH escapes lsblk uses for unsafe characters
func unescapeLsblk(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// windowsFixedDrive is the Win32_LogicalDisk DriveType of local disks
const windowsFixedDrive = "3"

// parseLogicalDisks parses `wmic logicaldisk get ... /format:csv`. Only
// fixed drives are returned; removable, network, and optical drives are
// treated like pseudo mounts.
func parseLogicalDisks(out []byte) ([]domain.Mount, error) {
	lines := nonEmptyLines(string(out))
	if len(lines) == 0 {
		return nil, fmt.Errorf("wmic: empty logicaldisk output")
	}

	header := strings.Split(lines[0], ",")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"Caption", "DriveType", "FileSystem", "FreeSpace", "Size"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("wmic: missing column %s", name)
		}
	}

	var mounts []domain.Mount
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		if len(fields) != len(header) {
			continue
		}
		get := func(name string) string { return strings.TrimSpace(fields[col[name]]) }

		if get("DriveType") != windowsFixedDrive {
			continue
		}

		caption := get("Caption")
		mount := domain.Mount{
			Device:     caption,
			Mountpoint: caption + `\`,
			FSType:     get("FileSystem"),
		}

		size, errSize := strconv.ParseUint(get("Size"), 10, 64)
		free, errFree := strconv.ParseUint(get("FreeSpace"), 10, 64)
		if errSize == nil && errFree == nil && free <= size {
			mount.Usage = &domain.DiskUsage{
				Total: size,
				Used:  size - free,
				Avail: free,
				Mount: mount.Mountpoint,
			}
		}

		mounts = append(mounts, mount)
	}
	return mounts, nil
}

var driveLetterPattern = regexp.MustCompile(`^([A-Za-z]):`)

// driveLetter extracts "C" from "C:\uploads" or "c:/uploads"
func driveLetter(path string) string {
	m := driveLetterPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

package domain

// DiskUsage is the normalized result of probing one path, in bytes.
type DiskUsage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Avail uint64 `json:"avail"`
	Mount string `json:"mount"`
}

// PartitionInfo is a point-in-time snapshot of a mounted filesystem.
type PartitionInfo struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	FSType     string  `json:"fstype"`
	SizeGB     float64 `json:"sizeGB"`
	UsedGB     float64 `json:"usedGB"`
	AvailGB    float64 `json:"availGB"`
}

// Mount is a mounted filesystem before its usage has been probed.
type Mount struct {
	Device     string
	Mountpoint string
	FSType     string
	Usage      *DiskUsage
}

package usecase

import "context"

// HostUsage is a point-in-time snapshot of host disk and memory usage for
// the /system-info/ endpoint. All sizes are bytes.
type HostUsage struct {
	DiskTotal       int64   `json:"diskTotal"`
	DiskUsed        int64   `json:"diskUsed"`
	DiskFree        int64   `json:"diskFree"`
	DiskUsedPercent float64 `json:"diskUsedPercent"`
	MemTotal        int64   `json:"memTotal"`
	MemAvailable    int64   `json:"memAvailable"`
	MemUsed         int64   `json:"memUsed"`
	MemUsedPercent  float64 `json:"memUsedPercent"`
}

// SystemInfo reports usage of the filesystem holding the download directory
// plus host memory. Thin OS wrapper; platform specifics live in the
// host_usage_* files.
type SystemInfo struct {
	Path string
}

func (uc SystemInfo) Execute(ctx context.Context) (HostUsage, error) {
	path := uc.Path
	if path == "" {
		path = "/"
	}

	usage, err := hostUsage(path)
	if err != nil {
		return HostUsage{}, err
	}

	if usage.DiskTotal > 0 {
		usage.DiskUsedPercent = 100 * float64(usage.DiskUsed) / float64(usage.DiskTotal)
	}
	if usage.MemTotal > 0 {
		usage.MemUsedPercent = 100 * float64(usage.MemUsed) / float64(usage.MemTotal)
	}
	return usage, nil
}

//go:build linux

package usecase

import "syscall"

// hostUsage reads disk usage via statfs and memory via sysinfo. "Available"
// memory is approximated as free + buffers, which is what sysinfo exposes
// without parsing /proc/meminfo.
func hostUsage(path string) (HostUsage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return HostUsage{}, err
	}

	bsize := int64(stat.Bsize)
	total := int64(stat.Blocks) * bsize
	free := int64(stat.Bavail) * bsize

	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return HostUsage{}, err
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	memTotal := int64(info.Totalram) * unit
	memAvailable := (int64(info.Freeram) + int64(info.Bufferram)) * unit

	return HostUsage{
		DiskTotal:    total,
		DiskUsed:     total - free,
		DiskFree:     free,
		MemTotal:     memTotal,
		MemAvailable: memAvailable,
		MemUsed:      memTotal - memAvailable,
	}, nil
}

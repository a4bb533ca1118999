//go:build !linux

package usecase

import "errors"

// hostUsage is a stub for non-Linux platforms. The production Docker image
// runs on Linux where the real implementation (host_usage_linux.go) is used.
func hostUsage(path string) (HostUsage, error) {
	return HostUsage{}, errors.New("system info not supported on this platform")
}

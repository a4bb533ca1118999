package usecase

import (
	"context"
	"testing"
)

func TestSystemInfoReportsSaneUsage(t *testing.T) {
	uc := SystemInfo{Path: t.TempDir()}

	usage, err := uc.Execute(context.Background())
	if err != nil {
		t.Skipf("host usage unavailable on this platform: %v", err)
	}

	if usage.DiskTotal <= 0 {
		t.Fatalf("DiskTotal = %d, want > 0", usage.DiskTotal)
	}
	if usage.DiskUsed < 0 || usage.DiskUsed > usage.DiskTotal {
		t.Errorf("DiskUsed = %d out of range [0, %d]", usage.DiskUsed, usage.DiskTotal)
	}
	if usage.DiskUsedPercent < 0 || usage.DiskUsedPercent > 100 {
		t.Errorf("DiskUsedPercent = %v, want within [0, 100]", usage.DiskUsedPercent)
	}
	if usage.MemTotal <= 0 {
		t.Fatalf("MemTotal = %d, want > 0", usage.MemTotal)
	}
	if usage.MemUsed < 0 || usage.MemUsed > usage.MemTotal {
		t.Errorf("MemUsed = %d out of range [0, %d]", usage.MemUsed, usage.MemTotal)
	}
	if usage.MemUsedPercent < 0 || usage.MemUsedPercent > 100 {
		t.Errorf("MemUsedPercent = %v, want within [0, 100]", usage.MemUsedPercent)
	}
}

func TestSystemInfoDefaultsPathToRoot(t *testing.T) {
	usage, err := (SystemInfo{}).Execute(context.Background())
	if err != nil {
		t.Skipf("host usage unavailable on this platform: %v", err)
	}
	if usage.DiskTotal <= 0 {
		t.Fatalf("DiskTotal = %d, want > 0", usage.DiskTotal)
	}
}
